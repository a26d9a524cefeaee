// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"errors"
	"strings"
	"time"

	"github.com/open-edge-platform/messaging-console-tests/internal/browser"
	webconsole "github.com/open-edge-platform/messaging-console-tests/internal/console"
	"github.com/open-edge-platform/messaging-console-tests/internal/model"
	"github.com/open-edge-platform/messaging-console-tests/test/utils/types"
)

var spaceTypes = []model.AddressSpaceType{model.AddressSpaceStandard, model.AddressSpaceBrokered}

func (s *ConsoleTestSuite) TestOpenConsole() {
	s.openConsole()
	_, err := s.console.GetAddressSpaceItems()
	s.NoError(err)
}

func (s *ConsoleTestSuite) TestCreateDeleteAddressSpace() {
	s.openConsole()
	for _, t := range spaceTypes {
		s.Run(string(t), func() {
			as := model.NewAddressSpace(model.RandomName("test-addr-space-"+string(t)), s.cfg.InfraNamespace, t)
			s.resources.AddToAddressSpaces(as)

			s.Require().NoError(s.console.CreateAddressSpace(s.ctx, as))
			s.waitUntilAddressSpaceActive(as)

			s.Require().NoError(s.console.DeleteAddressSpace(as))
			err := browser.WaitUntilCondition(s.ctx, activeTimeout, time.Second, func() (bool, error) {
				exists, err := s.resources.AddressSpaceExists(s.ctx, as.Namespace, as.Name)
				return !exists, err
			})
			s.NoError(err, "address space %s still exists", as.Name)
		})
	}
}

func (s *ConsoleTestSuite) TestAddressSpaceSnippet() {
	s.openConsole()
	for _, t := range spaceTypes {
		s.Run(string(t), func() {
			as := model.NewAddressSpace("test-address-space-"+string(t), s.cfg.InfraNamespace, t)
			s.Require().NoError(s.console.PrepareAddressSpaceInstall(as))
			snippet, err := s.console.GetDeploymentSnippet()
			s.Require().NoError(err)
			s.Contains(snippet, as.Name)
			s.Contains(snippet, string(t))

			created, err := s.resources.ApplyManifest(s.ctx, s.cfg.InfraNamespace, snippet)
			s.Require().NoError(err)
			s.Contains(created, model.ObjectRef{Kind: "AddressSpace", Namespace: s.cfg.InfraNamespace, Name: as.Name})

			s.Require().NoError(s.provider.RefreshPage())
			s.waitUntilAddressSpaceActive(as)
		})
	}
}

func (s *ConsoleTestSuite) TestCreateAddressSpaceWithCustomAuthService() {
	authService := model.AuthenticationService{
		Name:      model.RandomName("test-standard-authservice"),
		Namespace: s.cfg.InfraNamespace,
		Type:      "standard",
	}
	s.Require().NoError(s.resources.CreateAuthService(s.ctx, authService, true))

	as := model.NewAddressSpace(model.RandomName("test-addr-space-auth"), s.cfg.InfraNamespace, model.AddressSpaceStandard)
	as.AuthenticationService = authService.Name
	s.resources.AddToAddressSpaces(as)

	s.openConsole()
	s.Require().NoError(s.console.CreateAddressSpace(s.ctx, as))
	s.waitUntilAddressSpaceActive(as)

	read, err := s.resources.GetAddressSpace(s.ctx, as.Namespace, as.Name)
	s.Require().NoError(err)
	s.Equal(authService.Name, read.AuthenticationService)
}

func (s *ConsoleTestSuite) TestViewAddressSpaceCreatedByAPI() {
	as := s.newSpace("test-addr-space-api", model.AddressSpaceBrokered)
	s.openConsole()
	s.waitUntilAddressSpaceActive(as)

	item, err := s.console.GetAddressSpaceItem(as)
	s.Require().NoError(err)
	s.Require().NotNil(item)
	s.Equal(as.Namespace, item.Namespace)
	s.Equal(model.AddressSpaceBrokered, item.Type)
}

func (s *ConsoleTestSuite) loginAsNonAdmin() {
	nonAdmin := model.UserCredentials{Username: types.NonAdminUsername, Password: types.NonAdminPassword}
	s.console = webconsole.NewConsoleWebPage(s.provider, s.cfg.ConsoleURL, nonAdmin, s.resources)
	err := s.console.OpenConsolePage()
	if errors.Is(err, webconsole.ErrLoginFailed) {
		s.T().Skipf("User %s is not provisioned in the identity provider", nonAdmin.Username)
	}
	s.Require().NoError(err)
}

func (s *ConsoleTestSuite) TestNonClusterAdmin() {
	s.Require().NoError(s.resources.CreateNamespace(s.ctx, types.TestNamespace))
	s.Require().NoError(s.resources.GrantNamespaceRole(s.ctx, types.TestNamespace, types.ClientsAdminBinding, types.ClusterRoleAdmin, types.NonAdminUsername))

	as := model.NewAddressSpace("test-addr-space-api", types.TestNamespace, model.AddressSpaceStandard)
	as.Plan = model.PlanStandardMedium
	s.Require().NoError(s.resources.CreateAddressSpace(s.ctx, true, as))

	s.loginAsNonAdmin()
	s.waitUntilAddressSpaceActive(as)
	s.Require().NoError(s.console.OpenAddressList(as))

	addresses := model.GenerateQueueTopicList(as, "via-web", 4)
	s.Require().NoError(s.console.CreateAddressesAndWait(s.ctx, addresses...))
	s.eventuallyAddressCount(len(addresses))

	if s.cfg.MessagingHost == "" {
		return
	}
	attacher := s.messaging(as)
	s.attachClients(attacher, addresses)

	s.Require().NoError(s.console.SwitchToConnectionTab())
	connections := s.eventuallyConnectionCount(len(addresses) * 3)
	for _, c := range connections {
		s.Greater(c.Senders+c.Receivers, 0, "connection %s", c.Host)
	}
	s.Require().NoError(s.console.SwitchToAddressTab())
	s.Require().NoError(s.console.OpenClientsList(addresses[1]))
	clients, err := s.console.GetClientItems()
	s.Require().NoError(err)
	s.NotEmpty(clients)
	for _, c := range clients {
		s.NotEmpty(c.ContainerID)
	}
}

func (s *ConsoleTestSuite) TestRestrictedView() {
	s.Require().NoError(s.resources.CreateNamespace(s.ctx, types.TestNamespace))
	s.Require().NoError(s.resources.GrantNamespaceRole(s.ctx, types.TestNamespace, types.ClientsAdminBinding, types.ClusterRoleAdmin, types.NonAdminUsername))
	hidden := s.newSpace("test-addr-space-hidden", model.AddressSpaceBrokered)

	s.loginAsNonAdmin()
	item, err := s.console.GetAddressSpaceItem(hidden)
	s.NoError(err)
	s.Nil(item, "space of %s visible to %s", hidden.Namespace, types.NonAdminUsername)
}

func (s *ConsoleTestSuite) TestEditAddressSpace() {
	as := s.newSpace("test-addr-space-edit", model.AddressSpaceStandard)
	read, err := s.resources.GetAddressSpace(s.ctx, as.Namespace, as.Name)
	s.Require().NoError(err)

	s.openConsole()
	s.waitUntilAddressSpaceActive(as)

	as, err = s.console.SwitchAddressSpacePlan(as, model.PlanStandardUnlimited)
	s.Require().NoError(err)
	s.Require().NoError(s.resources.WaitForAddressSpaceConfigurationApplied(s.ctx, as, read.AppliedPlan))
	s.waitUntilAddressSpaceActive(as)
	read, err = s.resources.GetAddressSpace(s.ctx, as.Namespace, as.Name)
	s.Require().NoError(err)
	s.Equal(model.PlanStandardUnlimited, read.Plan)

	as, err = s.console.SwitchAuthService(as, model.AuthServiceNone)
	s.Require().NoError(err)
	s.waitUntilAddressSpaceActive(as)
	read, err = s.resources.GetAddressSpace(s.ctx, as.Namespace, as.Name)
	s.Require().NoError(err)
	s.Equal(model.AuthServiceNone, read.AuthenticationService)
}

func (s *ConsoleTestSuite) TestFilterAddressSpaces() {
	brokered := model.NewAddressSpace("brokered-test-addr-space", s.cfg.InfraNamespace, model.AddressSpaceBrokered)
	standard := model.NewAddressSpace("standard-test-addr-space", s.cfg.InfraNamespace, model.AddressSpaceStandard)
	s.Require().NoError(s.resources.CreateAddressSpace(s.ctx, true, brokered, standard))

	s.openConsole()
	all, err := s.console.GetAddressSpaceItems()
	s.Require().NoError(err)
	if len(all) != 2 {
		s.T().Skipf("console lists %d address spaces, filters need a console with exactly the two test spaces", len(all))
	}

	s.Require().NoError(s.console.AddAddressSpacesFilter(model.FilterByNamespace, "blah"))
	s.eventuallySpaceCount(0)
	s.Require().NoError(s.console.RemoveAllFilters())

	s.Require().NoError(s.console.AddAddressSpacesFilter(model.FilterByType, string(model.AddressSpaceBrokered)))
	items := s.eventuallySpaceCount(1)
	s.Equal(brokered.Name, items[0].Name)
	s.Require().NoError(s.console.RemoveFilter(model.FilterByType, string(model.AddressSpaceBrokered)))
	s.Require().NoError(s.console.AddAddressSpacesFilter(model.FilterByType, string(model.AddressSpaceStandard)))
	items = s.eventuallySpaceCount(1)
	s.Equal(standard.Name, items[0].Name)
	s.Require().NoError(s.console.RemoveAllFilters())

	s.Require().NoError(s.console.AddAddressSpacesFilter(model.FilterByName, "brokered"))
	s.eventuallySpaceCount(1)
	s.Require().NoError(s.console.AddAddressSpacesFilter(model.FilterByName, "standard"))
	s.eventuallySpaceCount(2)

	filters, err := s.console.GetFilterItems()
	s.Require().NoError(err)
	s.Len(filters, 2)

	s.Require().NoError(s.console.DeleteSelectedAddressSpaces(brokered, standard))
	s.eventuallySpaceCount(0)
	s.True(s.console.IsEmptyAddressSpaceListShown())
}

func (s *ConsoleTestSuite) TestSortAddressSpaces() {
	s.newSpace("test-sort-a", model.AddressSpaceBrokered)
	s.newSpace("test-sort-b", model.AddressSpaceStandard)
	s.openConsole()

	byName := func(i webconsole.AddressSpaceWebItem) string { return i.Name }
	byType := func(i webconsole.AddressSpaceWebItem) string { return string(i.Type) }

	s.Require().NoError(s.console.SortAddressSpaces(model.SortByName, true))
	items, err := s.console.GetAddressSpaceItems()
	s.Require().NoError(err)
	s.True(webconsole.IsSorted(items, byName, false))

	s.Require().NoError(s.console.SortAddressSpaces(model.SortByName, false))
	items, err = s.console.GetAddressSpaceItems()
	s.Require().NoError(err)
	s.True(webconsole.IsSorted(items, byName, true))

	s.Require().NoError(s.console.SortAddressSpaces(model.SortByType, true))
	items, err = s.console.GetAddressSpaceItems()
	s.Require().NoError(err)
	s.True(webconsole.IsSorted(items, byType, false))
}

func (s *ConsoleTestSuite) TestHelpLink() {
	s.openConsole()
	link, err := s.console.GetHelpLink()
	s.Require().NoError(err)
	s.True(strings.HasPrefix(link, s.cfg.DocsURL), "help link %s", link)
	s.NoError(s.console.OpenHelpLink(s.cfg.DocsURL))
}
