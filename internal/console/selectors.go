// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package console

// data-label values of the console table cells
const (
	ColumnNameNamespace  = "Name/Namespace"
	ColumnType           = "Type"
	ColumnStatus         = "Status"
	ColumnAddress        = "Address"
	ColumnTypePlan       = "Type/Plan"
	ColumnMessagesIn     = "column-3"
	ColumnMessagesOut    = "column-4"
	ColumnStoredMessages = "Stored Messages"
	ColumnSenders        = "Senders"
	ColumnReceivers      = "Receivers"
	ColumnPartitions     = "Partitions"
	ColumnHost           = "host"
	ColumnContainerID    = "Container ID"
	ColumnProtocol       = "Protocol"
	ColumnRole           = "Role"
	ColumnName           = "Name"
	ColumnDeliveries     = "Deliveries"
	ColumnAccepted       = "Accepted"
	ColumnRejected       = "Rejected"
	ColumnReleased       = "Released"
	ColumnModified       = "Modified"
	ColumnPresettled     = "Presettled"
	ColumnUndelivered    = "Undelivered"
)

const (
	selMainContainer = "#main-container"
	selRoot          = "#root"
	selAddressTab    = "#ad-space-nav-addresses"
	selConnectionTab = "#ad-space-nav-connections"
	selCreateButton  = "#al-filter-overflow-button"
	selEmptySpaces   = "#empty-ad-space"

	selAddressSpaceTable = "table[aria-label='address space list']"
	selAddressTable      = "table[aria-label='Address List']"
	selConnectionTable   = "table[aria-label='connection list']"
	selClientTable       = "table[aria-label='client list']"
	selTableRows         = "tbody tr"
	selRowCheckbox       = "td[data-key='0'] input"
	selRowActionToggle   = ".pf-c-dropdown button"

	// address space wizard
	selNamespaceDropDown   = "#cas-dropdown-namespace"
	selAuthServiceDropDown = "#cas-dropdown-auth-service"
	selAddressSpaceName    = "#address-space"
	selBrokeredRadio       = "#cas-brokered-radio"
	selStandardRadio       = "#cas-standard-radio"
	selSpacePlanDropDown   = "#cas-dropdown-plan"

	// address wizard
	selAddressName          = "#address-name"
	selAddressPlanDropDown  = "#address-definition-plan-dropdown"
	selAddressTypeDropDown  = "#address-definition-type-dropdown"
	selAddressTopicDropDown = "#address-definition-topic-dropdown"
	selDeploymentSnippet    = "#preview-yaml pre"

	// edit dialogs
	selEditSpacePlan   = "#edit-addr-plan"
	selEditSpaceAuth   = "#edit-addr-auth"
	selEditSpaceSubmit = "#as-list-edit-confirm"
	selEditAddressPlan = "#edit-addr-plan"
	selEditAddressOK   = "#al-edit-confirm"

	// toolbar
	selToolbar                = "#data-toolbar-with-filter"
	selAddressFilterDropDown  = "#al-filter-dropdown"
	selConnFilterDropDown     = "#cl-filter-dropdown"
	selFilterTypeItem         = "#al-filter-dropdownfilterType"
	selFilterStatusItem       = "#al-filter-dropdownfilterStatus"
	selFilterAddressItem      = "#al-filter-dropdownfilterAddress"
	selFilterNameItem         = "#al-filter-dropdownfilterName"
	selFilterNamespaceItem    = "#al-filter-dropdownfilterNamespace"
	selConnFilterContainer    = "#cl-filter-dropdownfilterContainer"
	selConnFilterHostname     = "#cl-filter-dropdownfilterHostname"
	selSelectTypeahead        = "#select-typeahead"
	selSearchButton           = "#al-filter-select-name-search"
	selConnSearchButton       = "#cl-filter-search"
	selTypeSelectDropDown     = "#al-filter-select-type-dropdown"
	selStatusSelectDropDown   = "#al-filter-select-status-dropdown"
	selToolbarContent         = ".pf-c-data-toolbar__content"
	selAppliedFilter          = ".pf-m-toolbar"
	selOverflowKebab          = "#al-filter-overflow-kebab"
	selOverflowDelete         = "#al-filter-overflow-delete"
	selOverflowPurge          = "#al-filter-overflow-purge"
	selConnectionNotFound     = "#connection-not-found"
	selLinkContainerID        = "#cd-header-container-id"
	selUserDropDown           = "#dd-user"
	selLogoutItem             = "#dd-menuitem-logout"
	selHelpDropDown           = "#dd-help"
	selHelpItem               = "#dd-menuitem-help"
	selSortableHeaderTemplate = "th[data-label='%s'] button"
	selSortedHeaderTemplate   = "th[data-label='%s']"
)

// button matches a visible button whose text contains label
func button(label string) string {
	return "button:visible:has-text('" + label + "')"
}

// menuItem matches a visible link whose text contains label, row action menus render them
func menuItem(label string) string {
	return "a:visible:has-text('" + label + "')"
}

// byID matches ids that are not valid css identifiers, e.g. ones holding dots
func byID(id string) string {
	return "[id='" + id + "']"
}

// valueButton matches the dropdown entry whose value attribute is value
func valueButton(value string) string {
	return "xpath=//button[@value='" + value + "']"
}
