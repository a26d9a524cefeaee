// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/open-edge-platform/messaging-console-tests/internal/model"
)

// Cell is the rendered state of one table cell at snapshot time
type Cell struct {
	Label     string   `json:"label"`
	Key       string   `json:"key"`
	Text      string   `json:"text"`
	Link      string   `json:"link"`
	Href      string   `json:"href"`
	Paragraph string   `json:"paragraph"`
	Lines     []string `json:"lines"`
	Checked   bool     `json:"checked"`
}

// Row is a snapshot of one table row
type Row []Cell

// cell returns the cell with the data-label label
func (r Row) cell(label string) (Cell, bool) {
	for _, c := range r {
		if c.Label == label {
			return c, true
		}
	}
	return Cell{}, false
}

func (r Row) text(label string) string {
	c, _ := r.cell(label)
	return c.Text
}

func (r Row) checked() bool {
	for _, c := range r {
		if c.Key == "0" {
			return c.Checked
		}
	}
	return false
}

// name is the link text of the cell, or its first paragraph when it is not a link
func (c Cell) name() string {
	if c.Link != "" {
		return c.Link
	}
	return c.Paragraph
}

func atoi(label string, value string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", label, err)
	}
	return i, nil
}

// atoiOrZero treats an empty cell as zero
func atoiOrZero(label string, value string) (int, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	return atoi(label, value)
}

// AddressSpaceWebItem is a row of the address space list
type AddressSpaceWebItem struct {
	Row int

	Name      string
	Namespace string
	Type      model.AddressSpaceType
	Status    string
	// link to the address list of the space
	ConsoleRoute string
	Selected     bool
}

func ParseAddressSpaceRow(index int, r Row) (AddressSpaceWebItem, error) {
	nameCell, ok := r.cell(ColumnNameNamespace)
	if !ok {
		return AddressSpaceWebItem{}, fmt.Errorf("row %d has no %s column", index, ColumnNameNamespace)
	}
	item := AddressSpaceWebItem{
		Row:          index,
		Name:         nameCell.name(),
		ConsoleRoute: nameCell.Href,
		Type:         model.AddressSpaceType(strings.ToLower(strings.TrimSpace(r.text(ColumnType)))),
		Status:       strings.TrimSpace(r.text(ColumnStatus)),
		Selected:     r.checked(),
	}
	// name on the first line, namespace below it
	if len(nameCell.Lines) > 1 {
		item.Namespace = nameCell.Lines[1]
	}
	return item, nil
}

// IsActive reports whether the console shows the space as active
func (i AddressSpaceWebItem) IsActive() bool {
	return strings.Contains(i.Status, "Active")
}

func (i AddressSpaceWebItem) String() string {
	return fmt.Sprintf("name: %s, namespace: %s, type: %s, status: %s", i.Name, i.Namespace, i.Type, i.Status)
}

// AddressWebItem is a row of the address list
type AddressWebItem struct {
	Row int

	Address string
	// raw badge letter, see Type
	TypeBadge      string
	Plan           string
	MessagesIn     int
	MessagesOut    int
	MessagesStored int
	Senders        int
	Receivers      int
	Partitions     int
	StatusString   string
	ClientsRoute   string
	Selected       bool
}

func ParseAddressRow(index int, r Row) (AddressWebItem, error) {
	addressCell, ok := r.cell(ColumnAddress)
	if !ok {
		return AddressWebItem{}, fmt.Errorf("row %d has no %s column", index, ColumnAddress)
	}
	item := AddressWebItem{
		Row:          index,
		Address:      addressCell.name(),
		ClientsRoute: addressCell.Href,
		Selected:     r.checked(),
	}
	typePlan := strings.TrimSpace(r.text(ColumnTypePlan))
	if typePlan != "" {
		item.TypeBadge = typePlan[:1]
	}
	if len(typePlan) > 2 {
		item.Plan = strings.ToLower(typePlan)[2:]
	}
	if err := item.parseCounters(r); err != nil {
		item.StatusString = strings.TrimSpace(r.text(ColumnMessagesIn))
	} else {
		item.StatusString = "Ready"
	}
	return item, nil
}

func (i *AddressWebItem) parseCounters(r Row) error {
	var err error
	if i.MessagesIn, err = atoi(ColumnMessagesIn, r.text(ColumnMessagesIn)); err != nil {
		return err
	}
	if i.MessagesOut, err = atoi(ColumnMessagesOut, r.text(ColumnMessagesOut)); err != nil {
		return err
	}
	if i.MessagesStored, err = atoiOrZero(ColumnStoredMessages, r.text(ColumnStoredMessages)); err != nil {
		return err
	}
	if i.Senders, err = atoi(ColumnSenders, r.text(ColumnSenders)); err != nil {
		return err
	}
	if i.Receivers, err = atoi(ColumnReceivers, r.text(ColumnReceivers)); err != nil {
		return err
	}
	if i.Partitions, err = atoiOrZero(ColumnPartitions, r.text(ColumnPartitions)); err != nil {
		return err
	}
	return nil
}

// Type decodes the badge; unknown badges give an empty type
func (i AddressWebItem) Type() model.AddressType {
	t, err := model.ParseAddressTypeBadge(i.TypeBadge)
	if err != nil {
		return ""
	}
	return t
}

func (i AddressWebItem) Status() model.AddressStatus {
	switch {
	case i.StatusString == "Ready":
		return model.StatusReady
	case i.StatusString == "",
		strings.Contains(i.StatusString, "Address "+i.Address+" is missing active autoLink"),
		strings.Contains(i.StatusString, "Address "+i.Address+" not found on"):
		return model.StatusPending
	}
	return model.StatusError
}

func (i AddressWebItem) String() string {
	return fmt.Sprintf("name: %s, type: %s, plan: %s, messagesIn: %d, messagesOut: %d, stored: %d, senders: %d, receivers: %d, partitions: %d, statusMessage: %s",
		i.Address, i.Type(), i.Plan, i.MessagesIn, i.MessagesOut, i.MessagesStored, i.Senders, i.Receivers, i.Partitions, i.StatusString)
}

// ConnectionWebItem is a row of the connection list
type ConnectionWebItem struct {
	Row int

	Host        string
	HostRoute   string
	ContainerID string
	Protocol    string
	MessagesIn  int
	MessagesOut int
	Senders     int
	Receivers   int
}

func ParseConnectionRow(index int, r Row) (ConnectionWebItem, error) {
	hostCell, ok := r.cell(ColumnHost)
	if !ok {
		return ConnectionWebItem{}, fmt.Errorf("row %d has no %s column", index, ColumnHost)
	}
	item := ConnectionWebItem{
		Row:         index,
		Host:        hostCell.name(),
		HostRoute:   hostCell.Href,
		ContainerID: strings.TrimSpace(r.text(ColumnContainerID)),
	}
	if fields := strings.Fields(r.text(ColumnProtocol)); len(fields) > 0 {
		item.Protocol = fields[0]
	}
	var err error
	if item.MessagesIn, err = atoi(ColumnMessagesIn, r.text(ColumnMessagesIn)); err != nil {
		return item, err
	}
	if item.MessagesOut, err = atoi(ColumnMessagesOut, r.text(ColumnMessagesOut)); err != nil {
		return item, err
	}
	if item.Senders, err = atoi(ColumnSenders, r.text(ColumnSenders)); err != nil {
		return item, err
	}
	if item.Receivers, err = atoi(ColumnReceivers, r.text(ColumnReceivers)); err != nil {
		return item, err
	}
	return item, nil
}

func (i ConnectionWebItem) String() string {
	return fmt.Sprintf("host: %s, containerId: %s, protocol: %s, messagesIn: %d, messagesOut: %d, senders: %d, receivers: %d",
		i.Host, i.ContainerID, i.Protocol, i.MessagesIn, i.MessagesOut, i.Senders, i.Receivers)
}

// ClientWebItem is a row of the client (link) list of an address
type ClientWebItem struct {
	Row int

	Role        string
	ContainerID string
	Name        string
	Deliveries  int
	Accepted    int
	Rejected    int
	Released    int
	Modified    int
	Presettled  int
	Undelivered int
}

func ParseClientRow(index int, r Row) (ClientWebItem, error) {
	item := ClientWebItem{
		Row:         index,
		Role:        strings.ToLower(strings.TrimSpace(r.text(ColumnRole))),
		ContainerID: strings.TrimSpace(r.text(ColumnContainerID)),
		Name:        strings.TrimSpace(r.text(ColumnName)),
	}
	counters := []struct {
		label string
		field *int
	}{
		{ColumnDeliveries, &item.Deliveries},
		{ColumnAccepted, &item.Accepted},
		{ColumnRejected, &item.Rejected},
		{ColumnReleased, &item.Released},
		{ColumnModified, &item.Modified},
		{ColumnPresettled, &item.Presettled},
		{ColumnUndelivered, &item.Undelivered},
	}
	for _, c := range counters {
		v, err := atoiOrZero(c.label, r.text(c.label))
		if err != nil {
			return item, err
		}
		*c.field = v
	}
	return item, nil
}

func (i ClientWebItem) String() string {
	return fmt.Sprintf("role: %s, containerId: %s, name: %s, deliveries: %d", i.Role, i.ContainerID, i.Name, i.Deliveries)
}

// SortAddressItems orders items by address name
func SortAddressItems(items []AddressWebItem) {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Address < items[b].Address
	})
}

// SortConnectionItems orders items by host
func SortConnectionItems(items []ConnectionWebItem) {
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].Host < items[b].Host
	})
}

// IsSorted reports whether items are ordered by key, descending when reverse is set. Equal keys may appear in any order.
func IsSorted[T any, K int | string](items []T, key func(T) K, reverse bool) bool {
	for i := 1; i < len(items); i++ {
		prev, cur := key(items[i-1]), key(items[i])
		if !reverse && prev > cur {
			return false
		}
		if reverse && prev < cur {
			return false
		}
	}
	return true
}
