// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

// Package console drives the messaging web console through page objects.
package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/open-edge-platform/messaging-console-tests/internal/browser"
	"github.com/open-edge-platform/messaging-console-tests/internal/model"
	"github.com/open-edge-platform/orch-library/go/dazl"
	"github.com/playwright-community/playwright-go"
)

var log = dazl.GetPackageLogger()

var (
	// ErrNotPresent is returned when a row the operation needs is not listed
	ErrNotPresent = errors.New("item not present in console")
	// ErrLoginFailed is returned when the identity provider rejects the credentials
	ErrLoginFailed = errors.New("login failed")
	// ErrNotLoaded is returned when the console application never renders
	ErrNotLoaded = errors.New("console not loaded")
)

const (
	itemTimeout      = 30 * time.Second
	loginPageTimeout = 3 * time.Second
	reachableTimeout = 60 * time.Second
)

// ResourceWaiter follows the cluster side of what the console creates and deletes
type ResourceWaiter interface {
	WaitForAddressSpaceReady(ctx context.Context, as model.AddressSpace) (model.AddressSpace, error)
	WaitForDestinationsReady(ctx context.Context, addresses ...model.Address) error
	WaitForAddressDeleted(ctx context.Context, address model.Address) error
}

// ConsoleWebPage is the console application behind route
type ConsoleWebPage struct {
	provider    *browser.Provider
	route       string
	credentials model.UserCredentials
	loginPage   *LoginWebPage
	resources   ResourceWaiter
}

// NewConsoleWebPage creates the page object; resources may be nil when cluster side waits are not wanted
func NewConsoleWebPage(provider *browser.Provider, route string, credentials model.UserCredentials, resources ResourceWaiter) *ConsoleWebPage {
	return &ConsoleWebPage{
		provider:    provider,
		route:       route,
		credentials: credentials,
		loginPage:   NewLoginWebPage(provider),
		resources:   resources,
	}
}

func (c *ConsoleWebPage) page() playwright.Page {
	return c.provider.Page()
}

func (c *ConsoleWebPage) locator(selector string) playwright.Locator {
	return c.page().Locator(selector)
}

func (c *ConsoleWebPage) click(selector string, description string) error {
	return c.provider.ClickOnItem(c.locator(selector), description)
}

func (c *ConsoleWebPage) rowLocator(table string, row int) playwright.Locator {
	return c.locator(table).Locator(selTableRows).Nth(row)
}

// ================================================================
// Login
// ================================================================

// OpenConsolePage opens the console, logging in when the identity provider asks for it
func (c *ConsoleWebPage) OpenConsolePage() error {
	log.Infof("Opening global console on route %s", c.route)
	if err := c.provider.Open(c.route); err != nil {
		return err
	}
	if c.waitUntilLoginPage() {
		_, _ = c.provider.TakeScreenShot("login")
		if err := c.Logout(); err != nil {
			log.Info("User is not logged")
		}
		ok, err := c.loginPage.Login(c.credentials)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrLoginFailed, c.loginPage.AlertMessage())
		}
	}
	if _, err := c.provider.GetWebElement(c.locator(selRoot)); err != nil {
		return fmt.Errorf("%w: %v", ErrNotLoaded, err)
	}
	return nil
}

// waitUntilLoginPage waits briefly for a login title and picks the first identity provider
func (c *ConsoleWebPage) waitUntilLoginPage() bool {
	err := browser.WaitUntilCondition(c.provider.Context(), loginPageTimeout, 250*time.Millisecond, func() (bool, error) {
		return c.loginPage.IsLoginPage(), nil
	})
	if err != nil {
		return false
	}
	if c.provider.IsVisible(c.locator(selLoginUsername)) {
		return true
	}
	return c.click("button", "identity provider") == nil
}

func (c *ConsoleWebPage) Logout() error {
	if !c.provider.IsVisible(c.locator(selUserDropDown)) {
		log.Info("Unable to logout, user is not logged in")
		return fmt.Errorf("user dropdown: %w", ErrNotPresent)
	}
	if err := c.provider.ClickOnItem(c.locator(selUserDropDown), "User dropdown navigation"); err != nil {
		log.Info("Unable to logout, user is not logged in")
		return err
	}
	if err := c.click(selLogoutItem, "Log out"); err != nil {
		log.Info("Unable to logout, user is not logged in")
		return err
	}
	return nil
}

// CheckReachableWebPage waits until the console application or its address space list is shown
func (c *ConsoleWebPage) CheckReachableWebPage() error {
	return browser.WaitUntilCondition(c.provider.Context(), reachableTimeout, time.Second, func() (bool, error) {
		if c.provider.IsPresent(c.locator(selRoot)) {
			return true, nil
		}
		title, err := c.provider.Title()
		return strings.Contains(title, "Address Space List"), err
	})
}

// ================================================================
// Tables
// ================================================================

func (c *ConsoleWebPage) GetAddressSpaceItems() ([]AddressSpaceWebItem, error) {
	rows, err := snapshotRows(c.locator(selAddressSpaceTable).Locator(selTableRows))
	if err != nil {
		return nil, err
	}
	items := make([]AddressSpaceWebItem, 0, len(rows))
	for i, r := range rows {
		if r.isPlaceholder() {
			continue
		}
		item, err := ParseAddressSpaceRow(i, r)
		if err != nil {
			return nil, err
		}
		log.Debugf("Got addressSpace: %s", item)
		items = append(items, item)
	}
	return items, nil
}

// GetAddressSpaceItem returns nil when the space is not listed
func (c *ConsoleWebPage) GetAddressSpaceItem(as model.AddressSpace) (*AddressSpaceWebItem, error) {
	items, err := c.GetAddressSpaceItems()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Name == as.Name && items[i].Namespace == as.Namespace {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (c *ConsoleWebPage) GetAddressItems() ([]AddressWebItem, error) {
	rows, err := snapshotRows(c.locator(selAddressTable).Locator(selTableRows))
	if err != nil {
		return nil, err
	}
	items := make([]AddressWebItem, 0, len(rows))
	for i, r := range rows {
		if r.isPlaceholder() {
			continue
		}
		item, err := ParseAddressRow(i, r)
		if err != nil {
			return nil, err
		}
		log.Debugf("Got address: %s", item)
		items = append(items, item)
	}
	return items, nil
}

// GetAddressItem returns nil when the address is not listed
func (c *ConsoleWebPage) GetAddressItem(address model.Address) (*AddressWebItem, error) {
	items, err := c.GetAddressItems()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Address == address.Address {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (c *ConsoleWebPage) GetConnectionItems() ([]ConnectionWebItem, error) {
	rows, err := snapshotRows(c.locator(selConnectionTable).Locator(selTableRows))
	if err != nil {
		return nil, err
	}
	items := make([]ConnectionWebItem, 0, len(rows))
	for i, r := range rows {
		if r.isPlaceholder() {
			continue
		}
		item, err := ParseConnectionRow(i, r)
		if err != nil {
			return nil, err
		}
		log.Debugf("Got connection: %s", item)
		items = append(items, item)
	}
	return items, nil
}

func (c *ConsoleWebPage) GetConnectionItem(host string) (*ConnectionWebItem, error) {
	items, err := c.GetConnectionItems()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Host == host {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (c *ConsoleWebPage) GetClientItems() ([]ClientWebItem, error) {
	rows, err := snapshotRows(c.locator(selClientTable).Locator(selTableRows))
	if err != nil {
		return nil, err
	}
	items := make([]ClientWebItem, 0, len(rows))
	for i, r := range rows {
		if r.isPlaceholder() {
			continue
		}
		item, err := ParseClientRow(i, r)
		if err != nil {
			return nil, err
		}
		log.Debugf("Got client: %s", item)
		items = append(items, item)
	}
	return items, nil
}

func (c *ConsoleWebPage) GetClientItem(containerID string) (*ClientWebItem, error) {
	items, err := c.GetClientItems()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ContainerID == containerID {
			return &items[i], nil
		}
	}
	return nil, nil
}

func (c *ConsoleWebPage) IsClientListEmpty() (bool, error) {
	items, err := c.GetClientItems()
	return len(items) == 0, err
}

// ================================================================
// Navigation
// ================================================================

func (c *ConsoleWebPage) waitForAddressSpaceItem(as model.AddressSpace) (*AddressSpaceWebItem, error) {
	item, err := browser.WaitUntilItemPresent(c.provider.Context(), itemTimeout, func() (*AddressSpaceWebItem, error) {
		return c.GetAddressSpaceItem(as)
	})
	if err != nil {
		return nil, fmt.Errorf("address space %s: %w: %w", as.Name, ErrNotPresent, err)
	}
	return item, nil
}

func (c *ConsoleWebPage) waitForAddressItem(address model.Address) (*AddressWebItem, error) {
	item, err := browser.WaitUntilItemPresent(c.provider.Context(), itemTimeout, func() (*AddressWebItem, error) {
		return c.GetAddressItem(address)
	})
	if err != nil {
		return nil, fmt.Errorf("address %s: %w: %w", address.Address, ErrNotPresent, err)
	}
	return item, nil
}

func (c *ConsoleWebPage) clickAddressSpaceLink(as model.AddressSpace) error {
	item, err := c.waitForAddressSpaceItem(as)
	if err != nil {
		return err
	}
	link := c.rowLocator(selAddressSpaceTable, item.Row).Locator("td[data-label='" + ColumnNameNamespace + "'] a")
	return c.provider.ClickOnItem(link, as.Name)
}

func (c *ConsoleWebPage) OpenAddressList(as model.AddressSpace) error {
	if err := c.clickAddressSpaceLink(as); err != nil {
		return err
	}
	_, err := c.provider.GetWebElement(c.locator(selAddressTable))
	return err
}

func (c *ConsoleWebPage) OpenConnectionList(as model.AddressSpace) error {
	if err := c.clickAddressSpaceLink(as); err != nil {
		return err
	}
	if err := c.SwitchToConnectionTab(); err != nil {
		return err
	}
	_, err := c.provider.GetWebElement(c.locator(selConnectionTable))
	return err
}

func (c *ConsoleWebPage) OpenClientsList(address model.Address) error {
	item, err := c.waitForAddressItem(address)
	if err != nil {
		return err
	}
	link := c.rowLocator(selAddressTable, item.Row).Locator("td[data-label='" + ColumnAddress + "'] a")
	if err := c.provider.ClickOnItem(link, "Clients route"); err != nil {
		return err
	}
	_, err = c.provider.GetWebElement(c.locator(selClientTable))
	return err
}

// OpenConnection shows the detail page of the connection from host
func (c *ConsoleWebPage) OpenConnection(host string) error {
	item, err := browser.WaitUntilItemPresent(c.provider.Context(), itemTimeout, func() (*ConnectionWebItem, error) {
		return c.GetConnectionItem(host)
	})
	if err != nil {
		return fmt.Errorf("connection %s: %w: %w", host, ErrNotPresent, err)
	}
	link := c.rowLocator(selConnectionTable, item.Row).Locator("td[data-label='" + ColumnHost + "'] a")
	if err := c.provider.ClickOnItem(link, host); err != nil {
		return err
	}
	_, err = c.provider.GetWebElement(c.locator(selLinkContainerID))
	return err
}

// WaitForConnectionClosed waits until the connection detail page drops its container id
func (c *ConsoleWebPage) WaitForConnectionClosed(timeout time.Duration) error {
	return c.locator(selLinkContainerID).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
}

func (c *ConsoleWebPage) IsConnectionNotFound() bool {
	return c.provider.IsVisible(c.locator(selConnectionNotFound))
}

func (c *ConsoleWebPage) SwitchToAddressTab() error {
	return c.provider.ClickOnItem(c.locator(selMainContainer).Locator(selAddressTab), "Addresses")
}

func (c *ConsoleWebPage) SwitchToConnectionTab() error {
	return c.provider.ClickOnItem(c.locator(selMainContainer).Locator(selConnectionTab), "Connections")
}

func (c *ConsoleWebPage) IsEmptyAddressSpaceListShown() bool {
	_, err := c.provider.GetWebElement(c.locator(selEmptySpaces))
	return err == nil
}

// ================================================================
// Address spaces
// ================================================================

func (c *ConsoleWebPage) selectValue(dropDown string, value string, description string) error {
	if err := c.click(dropDown, description); err != nil {
		return err
	}
	return c.click(valueButton(value), value)
}

// PrepareAddressSpaceInstall fills the address space wizard up to the review step
func (c *ConsoleWebPage) PrepareAddressSpaceInstall(as model.AddressSpace) error {
	if err := c.click(selCreateButton, "Create"); err != nil {
		return err
	}
	if err := c.selectValue(selNamespaceDropDown, as.Namespace, "namespace dropdown"); err != nil {
		return err
	}
	if err := c.provider.FillInputItem(c.locator(selAddressSpaceName), as.Name); err != nil {
		return err
	}
	radio := selStandardRadio
	if as.Type == model.AddressSpaceBrokered {
		radio = selBrokeredRadio
	}
	if err := c.click(radio, string(as.Type)); err != nil {
		return err
	}
	if err := c.selectValue(selSpacePlanDropDown, as.Plan, "address space plan dropdown"); err != nil {
		return err
	}
	if err := c.selectValue(selAuthServiceDropDown, as.AuthenticationService, "authentication service dropdown"); err != nil {
		return err
	}
	return c.click(button("Next"), "Next")
}

// CreateAddressSpace creates the space through the wizard and waits for it to become ready
func (c *ConsoleWebPage) CreateAddressSpace(ctx context.Context, as model.AddressSpace) error {
	log.Infof("Address space %s will be created using web console", as)
	if err := c.PrepareAddressSpaceInstall(as); err != nil {
		return err
	}
	if err := c.click(button("Finish"), "Finish"); err != nil {
		return err
	}
	if _, err := c.waitForAddressSpaceItem(as); err != nil {
		return err
	}
	_, _ = c.provider.TakeScreenShot("address-space-" + as.Name)
	if c.resources != nil {
		if _, err := c.resources.WaitForAddressSpaceReady(ctx, as); err != nil {
			return err
		}
	}
	return c.provider.RefreshPage()
}

func (c *ConsoleWebPage) openAddressSpaceAction(as model.AddressSpace, action string) error {
	item, err := c.waitForAddressSpaceItem(as)
	if err != nil {
		return err
	}
	toggle := c.rowLocator(selAddressSpaceTable, item.Row).Locator(selRowActionToggle)
	if err := c.provider.ClickOnItem(toggle, "Address space dropdown"); err != nil {
		return err
	}
	return c.click(menuItem(action), action)
}

func (c *ConsoleWebPage) DeleteAddressSpace(as model.AddressSpace) error {
	if err := c.openAddressSpaceAction(as, "Delete"); err != nil {
		return err
	}
	if err := c.click(button("Confirm"), "Confirm"); err != nil {
		return err
	}
	return browser.WaitUntilItemNotPresent(c.provider.Context(), itemTimeout, func() (*AddressSpaceWebItem, error) {
		return c.GetAddressSpaceItem(as)
	})
}

// SwitchAddressSpacePlan changes the plan in the edit dialog and returns the space with the new plan
func (c *ConsoleWebPage) SwitchAddressSpacePlan(as model.AddressSpace, plan string) (model.AddressSpace, error) {
	if err := c.editAddressSpace(as, selEditSpacePlan, plan); err != nil {
		return as, err
	}
	as.Plan = plan
	return as, nil
}

// SwitchAuthService changes the authentication service in the edit dialog
func (c *ConsoleWebPage) SwitchAuthService(as model.AddressSpace, authService string) (model.AddressSpace, error) {
	if err := c.editAddressSpace(as, selEditSpaceAuth, authService); err != nil {
		return as, err
	}
	as.AuthenticationService = authService
	return as, nil
}

func (c *ConsoleWebPage) editAddressSpace(as model.AddressSpace, field string, value string) error {
	log.Infof("Setting %s of address space %s to %s", field, as.Name, value)
	if err := c.openAddressSpaceAction(as, "Edit"); err != nil {
		return err
	}
	if err := c.selectOption(field, value); err != nil {
		return err
	}
	if err := c.click(selEditSpaceSubmit, "Confirm"); err != nil {
		return err
	}
	return c.provider.RefreshPage()
}

func (c *ConsoleWebPage) selectOption(selectSelector string, value string) error {
	el, err := c.provider.GetWebElement(c.locator(selectSelector))
	if err != nil {
		return err
	}
	if _, err := el.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}}); err != nil {
		return fmt.Errorf("selecting %s: %w", value, err)
	}
	return nil
}

// DeleteSelectedAddressSpaces checks the rows of spaces and deletes them with the bulk action
func (c *ConsoleWebPage) DeleteSelectedAddressSpaces(spaces ...model.AddressSpace) error {
	for _, as := range spaces {
		item, err := c.waitForAddressSpaceItem(as)
		if err != nil {
			return err
		}
		if err := c.checkRow(selAddressSpaceTable, item.Row, item.Selected); err != nil {
			return err
		}
	}
	if err := c.bulkAction(selOverflowDelete, "Delete selected"); err != nil {
		return err
	}
	for _, as := range spaces {
		if err := browser.WaitUntilItemNotPresent(c.provider.Context(), itemTimeout, func() (*AddressSpaceWebItem, error) {
			return c.GetAddressSpaceItem(as)
		}); err != nil {
			return fmt.Errorf("address space %s not deleted: %w", as.Name, err)
		}
	}
	return nil
}

func (c *ConsoleWebPage) checkRow(table string, row int, selected bool) error {
	if selected {
		return nil
	}
	box, err := c.provider.GetWebElement(c.rowLocator(table, row).Locator(selRowCheckbox))
	if err != nil {
		return err
	}
	return box.Check()
}

func (c *ConsoleWebPage) bulkAction(item string, description string) error {
	if err := c.click(selOverflowKebab, "Bulk actions"); err != nil {
		return err
	}
	if err := c.click(item, description); err != nil {
		return err
	}
	return c.click(button("Confirm"), "Confirm")
}

// ================================================================
// Addresses
// ================================================================

func (c *ConsoleWebPage) OpenAddressCreationDialog() error {
	if err := c.click(selCreateButton, "Create"); err != nil {
		return err
	}
	_, err := c.provider.GetWebElement(c.locator(selAddressName))
	return err
}

func (c *ConsoleWebPage) FillAddressName(name string) error {
	return c.provider.FillInputItem(c.locator(selAddressName), name)
}

// IsAddressNameInvalid reports whether the wizard marks the typed name as invalid
func (c *ConsoleWebPage) IsAddressNameInvalid() (bool, error) {
	el, err := c.provider.GetWebElement(c.locator(selAddressName))
	if err != nil {
		return false, err
	}
	invalid, err := el.GetAttribute("aria-invalid")
	if err != nil {
		return false, err
	}
	return invalid == "true", nil
}

// PrepareAddressCreation fills the address wizard up to the review step
func (c *ConsoleWebPage) PrepareAddressCreation(address model.Address) error {
	if err := c.OpenAddressCreationDialog(); err != nil {
		return err
	}
	if err := c.FillAddressName(address.Address); err != nil {
		return err
	}
	if err := c.click(selAddressTypeDropDown, "Address Type dropdown"); err != nil {
		return err
	}
	if err := c.click(byID("address-definition-type-dropdown-item"+string(address.Type)), string(address.Type)); err != nil {
		return err
	}
	if err := c.click(selAddressPlanDropDown, "address plan dropdown"); err != nil {
		return err
	}
	if err := c.click(byID("address-definition-plan-dropdown-item"+address.Plan), address.Plan); err != nil {
		return err
	}
	if address.Type == model.AddressSubscription {
		if err := c.click(selAddressTopicDropDown, "topic dropdown"); err != nil {
			return err
		}
		topic := "address-definition-topic-dropdown-item" + address.SpaceName() + "." + address.Topic
		if err := c.click(byID(topic), address.Topic); err != nil {
			return err
		}
	}
	return c.click(button("Next"), "Next")
}

// GetDeploymentSnippet returns the resource preview of the wizard review step
func (c *ConsoleWebPage) GetDeploymentSnippet() (string, error) {
	el, err := c.provider.GetWebElement(c.locator(selDeploymentSnippet))
	if err != nil {
		return "", err
	}
	return el.InnerText()
}

// CreateAddress creates the address through the wizard, waiting for it to become ready when asked
func (c *ConsoleWebPage) CreateAddress(ctx context.Context, address model.Address, waitForReady bool) error {
	log.Infof("Address %s will be created using web console", address)
	if err := c.PrepareAddressCreation(address); err != nil {
		return err
	}
	if err := c.click(button("Finish"), "Finish"); err != nil {
		return err
	}
	if _, err := c.waitForAddressItem(address); err != nil {
		return err
	}
	if waitForReady && c.resources != nil {
		return c.resources.WaitForDestinationsReady(ctx, address)
	}
	return nil
}

func (c *ConsoleWebPage) CreateAddresses(ctx context.Context, addresses ...model.Address) error {
	for _, a := range addresses {
		if err := c.CreateAddress(ctx, a, false); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConsoleWebPage) CreateAddressesAndWait(ctx context.Context, addresses ...model.Address) error {
	if err := c.CreateAddresses(ctx, addresses...); err != nil {
		return err
	}
	if c.resources == nil {
		return nil
	}
	return c.resources.WaitForDestinationsReady(ctx, addresses...)
}

func (c *ConsoleWebPage) openAddressAction(address model.Address, action string) error {
	item, err := c.GetAddressItem(address)
	if err != nil {
		return err
	}
	if item == nil {
		return fmt.Errorf("address %s: %w", address.Address, ErrNotPresent)
	}
	toggle := c.rowLocator(selAddressTable, item.Row).Locator(selRowActionToggle)
	if err := c.provider.ClickOnItem(toggle, "Address item menu"); err != nil {
		return err
	}
	return c.click(menuItem(action), action)
}

// DeleteAddress deletes through the row menu and waits until the cluster removed it
func (c *ConsoleWebPage) DeleteAddress(ctx context.Context, address model.Address) error {
	log.Infof("Address %s will be deleted using web console", address)
	if err := c.openAddressAction(address, "Delete"); err != nil {
		return err
	}
	if err := c.click(button("Confirm"), "Confirm"); err != nil {
		return err
	}
	if err := browser.WaitUntilItemNotPresent(c.provider.Context(), itemTimeout, func() (*AddressWebItem, error) {
		return c.GetAddressItem(address)
	}); err != nil {
		return err
	}
	if c.resources == nil {
		return nil
	}
	return c.resources.WaitForAddressDeleted(ctx, address)
}

func (c *ConsoleWebPage) selectAddresses(addresses []model.Address) error {
	for _, a := range addresses {
		item, err := c.waitForAddressItem(a)
		if err != nil {
			return err
		}
		if err := c.checkRow(selAddressTable, item.Row, item.Selected); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConsoleWebPage) DeleteSelectedAddresses(addresses ...model.Address) error {
	if err := c.selectAddresses(addresses); err != nil {
		return err
	}
	if err := c.bulkAction(selOverflowDelete, "Delete selected"); err != nil {
		return err
	}
	for _, a := range addresses {
		if err := browser.WaitUntilItemNotPresent(c.provider.Context(), itemTimeout, func() (*AddressWebItem, error) {
			return c.GetAddressItem(a)
		}); err != nil {
			return fmt.Errorf("address %s not deleted: %w", a.Address, err)
		}
	}
	return nil
}

// PurgeSelectedAddresses drops the stored messages of the addresses
func (c *ConsoleWebPage) PurgeSelectedAddresses(addresses ...model.Address) error {
	if err := c.selectAddresses(addresses); err != nil {
		return err
	}
	return c.bulkAction(selOverflowPurge, "Purge selected")
}

func (c *ConsoleWebPage) ChangeAddressPlan(address model.Address, plan string) error {
	log.Infof("Changing plan of address %s to %s", address.Address, plan)
	if err := c.openAddressAction(address, "Edit"); err != nil {
		return err
	}
	if err := c.selectOption(selEditAddressPlan, plan); err != nil {
		return err
	}
	return c.click(selEditAddressOK, "Confirm")
}

// ================================================================
// Filters
// ================================================================

// FilterItem is a chip of the applied filter bar
type FilterItem struct {
	Type  model.FilterType `json:"type"`
	Value string           `json:"value"`
}

const filterChipScript = `groups => groups.map(g => {
	const h = g.querySelector('h4');
	const s = g.querySelector('span');
	return {
		type: h ? (h.innerText || '').trim().toLowerCase() : '',
		value: s ? (s.innerText || '').trim() : '',
	};
})`

func (c *ConsoleWebPage) toolbar() (playwright.Locator, error) {
	return c.provider.GetWebElement(c.locator(selMainContainer).Locator(selToolbar))
}

func (c *ConsoleWebPage) typeAhead(value string, search string) error {
	if err := c.provider.FillInputItem(c.locator(selToolbar).Locator(selSelectTypeahead), value); err != nil {
		return err
	}
	return c.click(search, "Search")
}

func (c *ConsoleWebPage) pickFromDropDown(dropDown string, itemPrefix string, value string, description string) error {
	if err := c.click(dropDown, description); err != nil {
		return err
	}
	return c.click(byID(itemPrefix+model.Capitalize(value)), value)
}

// AddAddressesFilter applies a filter on the address list
func (c *ConsoleWebPage) AddAddressesFilter(filterType model.FilterType, value string) error {
	log.Infof("Apply filter %s type %s", value, filterType)
	if _, err := c.toolbar(); err != nil {
		return err
	}
	if err := c.click(selAddressFilterDropDown, "Address filter dropdown"); err != nil {
		return err
	}
	switch filterType {
	case model.FilterByAddress:
		if err := c.click(selFilterAddressItem, "Address"); err != nil {
			return err
		}
		return c.typeAhead(value, selSearchButton)
	case model.FilterByStatus:
		if err := c.click(selFilterStatusItem, "Status"); err != nil {
			return err
		}
		return c.pickFromDropDown(selStatusSelectDropDown, "al-filter-select-status-dropdown-itemstatus", value, "Status phase dropdown")
	case model.FilterByType:
		if err := c.click(selFilterTypeItem, "Type"); err != nil {
			return err
		}
		return c.pickFromDropDown(selTypeSelectDropDown, "al-filter-select-type-dropdown-itemtype", value, "Type filter dropdown")
	}
	return fmt.Errorf("address list cannot be filtered by %s", filterType)
}

// AddAddressSpacesFilter applies a filter on the address space list
func (c *ConsoleWebPage) AddAddressSpacesFilter(filterType model.FilterType, value string) error {
	log.Infof("Apply filter %s type %s", value, filterType)
	if _, err := c.toolbar(); err != nil {
		return err
	}
	if err := c.click(selAddressFilterDropDown, "Address space filter dropdown"); err != nil {
		return err
	}
	switch filterType {
	case model.FilterByName:
		if err := c.click(selFilterNameItem, "Name"); err != nil {
			return err
		}
		return c.typeAhead(value, selSearchButton)
	case model.FilterByNamespace:
		if err := c.click(selFilterNamespaceItem, "Namespace"); err != nil {
			return err
		}
		return c.typeAhead(value, selSearchButton)
	case model.FilterByType:
		if err := c.click(selFilterTypeItem, "Type"); err != nil {
			return err
		}
		return c.pickFromDropDown(selTypeSelectDropDown, "al-filter-select-type-dropdown-itemtype", value, "Type filter dropdown")
	}
	return fmt.Errorf("address space list cannot be filtered by %s", filterType)
}

// AddConnectionsFilter applies a filter on the connection list
func (c *ConsoleWebPage) AddConnectionsFilter(filterType model.FilterType, value string) error {
	log.Infof("Apply filter %s type %s", value, filterType)
	if _, err := c.toolbar(); err != nil {
		return err
	}
	if err := c.click(selConnFilterDropDown, "Connection filter dropdown"); err != nil {
		return err
	}
	switch filterType {
	case model.FilterByContainer:
		if err := c.click(selConnFilterContainer, "Container"); err != nil {
			return err
		}
	case model.FilterByHostname:
		if err := c.click(selConnFilterHostname, "Hostname"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("connection list cannot be filtered by %s", filterType)
	}
	return c.typeAhead(value, selConnSearchButton)
}

// AddFilter applies the filter on whichever list the filter type belongs to
func (c *ConsoleWebPage) AddFilter(filterType model.FilterType, value string) error {
	switch filterType {
	case model.FilterByAddress, model.FilterByStatus:
		return c.AddAddressesFilter(filterType, value)
	case model.FilterByName, model.FilterByNamespace:
		return c.AddAddressSpacesFilter(filterType, value)
	case model.FilterByContainer, model.FilterByHostname:
		return c.AddConnectionsFilter(filterType, value)
	}
	if c.provider.IsVisible(c.locator(selAddressTable)) {
		return c.AddAddressesFilter(filterType, value)
	}
	return c.AddAddressSpacesFilter(filterType, value)
}

func (c *ConsoleWebPage) appliedFilters() playwright.Locator {
	return c.locator(selToolbar).Locator(selToolbarContent).Nth(1).Locator(selAppliedFilter)
}

// GetFilterItems lists the applied filter chips
func (c *ConsoleWebPage) GetFilterItems() ([]FilterItem, error) {
	raw, err := c.appliedFilters().EvaluateAll(filterChipScript)
	if err != nil {
		return nil, fmt.Errorf("reading applied filters: %w", err)
	}
	return decodeFilterItems(raw)
}

// RemoveFilter deletes the chip of the applied filter
func (c *ConsoleWebPage) RemoveFilter(filterType model.FilterType, value string) error {
	log.Infof("Removing filter %s type %s", value, filterType)
	items, err := c.GetFilterItems()
	if err != nil {
		return err
	}
	for i, item := range items {
		if item.Type == filterType && strings.EqualFold(item.Value, value) {
			return c.provider.ClickOnItem(c.appliedFilters().Nth(i).Locator("button"), "delete filter")
		}
	}
	return fmt.Errorf("filter %s=%s: %w", filterType, value, ErrNotPresent)
}

func (c *ConsoleWebPage) RemoveAddressFilter(filterType model.FilterType, value string) error {
	return c.RemoveFilter(filterType, value)
}

func (c *ConsoleWebPage) RemoveAllFilters() error {
	log.Info("Clear all filters")
	return c.provider.ClickOnItem(c.locator(selToolbar).Locator(button("Clear all filters")), "Clear all filters")
}

// ================================================================
// Sorting
// ================================================================

var addressSortColumns = map[model.SortType]string{
	model.SortByAddress:        ColumnAddress,
	model.SortByMessagesIn:     "Messages In",
	model.SortByMessagesOut:    "Messages Out",
	model.SortByStoredMessages: ColumnStoredMessages,
	model.SortBySenders:        ColumnSenders,
	model.SortByReceivers:      ColumnReceivers,
}

var connectionSortColumns = map[model.SortType]string{
	model.SortByHostname:    "Hostname",
	model.SortByContainerID: ColumnContainerID,
	model.SortByProtocol:    ColumnProtocol,
	model.SortByMessagesIn:  "Messages In",
	model.SortByMessagesOut: "Messages Out",
	model.SortBySenders:     ColumnSenders,
	model.SortByReceivers:   ColumnReceivers,
}

var addressSpaceSortColumns = map[model.SortType]string{
	model.SortByName: ColumnNameNamespace,
	model.SortByType: ColumnType,
}

func (c *ConsoleWebPage) SortAddresses(sortType model.SortType, ascending bool) error {
	return c.sortTable(selAddressTable, addressSortColumns, sortType, ascending)
}

func (c *ConsoleWebPage) SortConnections(sortType model.SortType, ascending bool) error {
	return c.sortTable(selConnectionTable, connectionSortColumns, sortType, ascending)
}

func (c *ConsoleWebPage) SortAddressSpaces(sortType model.SortType, ascending bool) error {
	return c.sortTable(selAddressSpaceTable, addressSpaceSortColumns, sortType, ascending)
}

// sortTable clicks the column header until the table reports the wanted direction
func (c *ConsoleWebPage) sortTable(table string, columns map[model.SortType]string, sortType model.SortType, ascending bool) error {
	column, ok := columns[sortType]
	if !ok {
		return fmt.Errorf("table cannot be sorted by %s", sortType)
	}
	want := "descending"
	if ascending {
		want = "ascending"
	}
	log.Infof("Sorting by %s %s", column, want)
	header := c.locator(table).Locator(fmt.Sprintf(selSortedHeaderTemplate, column))
	sortButton := c.locator(table).Locator(fmt.Sprintf(selSortableHeaderTemplate, column))
	for attempt := 0; attempt < 2; attempt++ {
		if err := c.provider.ClickOnItem(sortButton, column); err != nil {
			return err
		}
		state, err := header.First().GetAttribute("aria-sort")
		if err != nil {
			return err
		}
		if state == want {
			return nil
		}
	}
	return fmt.Errorf("column %s not sorted %s", column, want)
}

// ================================================================
// Help
// ================================================================

func (c *ConsoleWebPage) GetHelpLink() (string, error) {
	if err := c.click(selHelpDropDown, "Help dropdown"); err != nil {
		return "", err
	}
	el, err := c.provider.GetWebElement(c.locator(selHelpItem))
	if err != nil {
		return "", err
	}
	href, err := el.GetAttribute("href")
	if err != nil {
		return "", err
	}
	// close the menu again
	if err := c.click(selHelpDropDown, "Help dropdown"); err != nil {
		return "", err
	}
	return href, nil
}

// OpenHelpLink follows the help link and waits for a page on expectedURL
func (c *ConsoleWebPage) OpenHelpLink(expectedURL string) error {
	if err := c.click(selHelpDropDown, "Help dropdown"); err != nil {
		return err
	}
	if err := c.click(selHelpItem, "Help"); err != nil {
		return err
	}
	return browser.WaitUntilCondition(c.provider.Context(), itemTimeout, 500*time.Millisecond, func() (bool, error) {
		for _, p := range c.page().Context().Pages() {
			if strings.HasPrefix(p.URL(), expectedURL) {
				return true, nil
			}
		}
		return false, nil
	})
}
