// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

// Package model holds the messaging resources driven through the console and their console projections.
package model

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type AddressSpaceType string

const (
	AddressSpaceStandard AddressSpaceType = "standard"
	AddressSpaceBrokered AddressSpaceType = "brokered"
)

type AddressType string

const (
	AddressQueue        AddressType = "queue"
	AddressTopic        AddressType = "topic"
	AddressAnycast      AddressType = "anycast"
	AddressMulticast    AddressType = "multicast"
	AddressSubscription AddressType = "subscription"
)

var badgeTypes = map[byte]AddressType{
	'Q': AddressQueue,
	'T': AddressTopic,
	'A': AddressAnycast,
	'M': AddressMulticast,
	'S': AddressSubscription,
}

// ParseAddressTypeBadge maps the one letter badge the console renders in the Type/Plan column.
func ParseAddressTypeBadge(badge string) (AddressType, error) {
	badge = strings.TrimSpace(badge)
	if badge == "" {
		return "", fmt.Errorf("empty address type badge")
	}
	t, ok := badgeTypes[strings.ToUpper(badge)[0]]
	if !ok {
		return "", fmt.Errorf("unknown address type badge %q", badge)
	}
	return t, nil
}

// Capitalized is the form the console uses in element ids, e.g. "Queue".
func (t AddressType) Capitalized() string {
	return Capitalize(string(t))
}

type AddressStatus string

const (
	StatusReady   AddressStatus = "READY"
	StatusPending AddressStatus = "PENDING"
	StatusError   AddressStatus = "ERROR"
)

// FilterType is the toolbar filter category; the value is the lowercased chip heading.
type FilterType string

const (
	FilterByAddress   FilterType = "address"
	FilterByStatus    FilterType = "status"
	FilterByType      FilterType = "type"
	FilterByName      FilterType = "name"
	FilterByNamespace FilterType = "namespace"
	FilterByContainer FilterType = "container"
	FilterByHostname  FilterType = "hostname"
)

// SortType selects the table column a list is ordered by.
type SortType string

const (
	SortByAddress        SortType = "address"
	SortBySenders        SortType = "senders"
	SortByReceivers      SortType = "receivers"
	SortByMessagesIn     SortType = "messagesIn"
	SortByMessagesOut    SortType = "messagesOut"
	SortByStoredMessages SortType = "storedMessages"
	SortByHostname       SortType = "hostname"
	SortByContainerID    SortType = "containerId"
	SortByProtocol       SortType = "protocol"
	SortByName           SortType = "name"
	SortByNamespace      SortType = "namespace"
	SortByType           SortType = "type"
)

// UserCredentials are a console or messaging login
type UserCredentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func (c UserCredentials) String() string {
	return fmt.Sprintf("%s/********", c.Username)
}

// Capitalize upper-cases the first letter of s
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// ObjectRef identifies a created resource by kind, namespace and name
type ObjectRef struct {
	Kind      string
	Namespace string
	Name      string
}

func (r ObjectRef) String() string {
	return r.Kind + "/" + r.Namespace + "/" + r.Name
}
