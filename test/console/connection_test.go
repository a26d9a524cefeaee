// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"time"

	"github.com/open-edge-platform/messaging-console-tests/internal/browser"
	webconsole "github.com/open-edge-platform/messaging-console-tests/internal/console"
	"github.com/open-edge-platform/messaging-console-tests/internal/model"
	"github.com/open-edge-platform/messaging-console-tests/test/utils/auth"
)

const connectionClosedTimeout = 90 * time.Second

func (s *ConsoleTestSuite) openConnectionList(as model.AddressSpace) {
	s.openConsole()
	s.Require().NoError(s.console.OpenConnectionList(as))
}

func (s *ConsoleTestSuite) TestSortConnections() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	addresses := model.GenerateQueueTopicList(as, "connections", 2)
	s.Require().NoError(s.resources.SetAddresses(s.ctx, addresses...))
	s.attachClients(s.messaging(as), addresses)

	s.openConnectionList(as)
	s.eventuallyConnectionCount(len(addresses) * 3)

	for sortType, key := range map[model.SortType]func(webconsole.ConnectionWebItem) int{
		model.SortBySenders:   func(i webconsole.ConnectionWebItem) int { return i.Senders },
		model.SortByReceivers: func(i webconsole.ConnectionWebItem) int { return i.Receivers },
	} {
		s.Require().NoError(s.console.SortConnections(sortType, true))
		items, err := s.console.GetConnectionItems()
		s.Require().NoError(err)
		s.True(webconsole.IsSorted(items, key, false), "ascending %s", sortType)

		s.Require().NoError(s.console.SortConnections(sortType, false))
		items, err = s.console.GetConnectionItems()
		s.Require().NoError(err)
		s.True(webconsole.IsSorted(items, key, true), "descending %s", sortType)
	}

	byContainer := func(i webconsole.ConnectionWebItem) string { return i.ContainerID }
	s.Require().NoError(s.console.SortConnections(model.SortByContainerID, true))
	items, err := s.console.GetConnectionItems()
	s.Require().NoError(err)
	s.True(webconsole.IsSorted(items, byContainer, false))
}

func (s *ConsoleTestSuite) TestFilterConnectionsByContainerID() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	queue := model.NewAddress(as, model.AddressQueue, model.RandomName("queue-container"))
	s.Require().NoError(s.resources.AppendAddresses(s.ctx, true, queue))
	connector := s.attach(s.messaging(as), queue, 5, 1, 1)

	s.openConnectionList(as)
	s.eventuallyConnectionCount(connector.Connections())

	containerID := connector.ContainerIDs()[0]
	s.Require().NoError(s.console.AddConnectionsFilter(model.FilterByContainer, containerID))
	items := s.eventuallyConnectionCount(1)
	s.Equal(containerID, items[0].ContainerID)

	s.Require().NoError(s.console.RemoveFilter(model.FilterByContainer, containerID))
	s.eventuallyConnectionCount(connector.Connections())
}

func (s *ConsoleTestSuite) TestFilterConnectionsByHostname() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	queue := model.NewAddress(as, model.AddressQueue, model.RandomName("queue-hostname"))
	s.Require().NoError(s.resources.AppendAddresses(s.ctx, true, queue))
	s.attach(s.messaging(as), queue, 2, 1, 1)

	s.openConnectionList(as)
	items := s.eventuallyConnectionCount(2)

	s.Require().NoError(s.console.AddFilter(model.FilterByHostname, items[0].Host))
	filtered := s.eventuallyConnectionCount(1)
	s.Equal(items[0].Host, filtered[0].Host)
	s.Require().NoError(s.console.RemoveAllFilters())
}

func (s *ConsoleTestSuite) TestEmptyLinkPage() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	queue := model.NewAddress(as, model.AddressQueue, model.RandomName("queue-empty-link")).WithPlan(model.PlanStandardLargeQueue)
	s.Require().NoError(s.resources.AppendAddresses(s.ctx, true, queue))
	s.attach(s.messaging(as), queue, 3, 1, 1)

	s.openConnectionList(as)
	items := s.eventuallyConnectionCount(3)
	s.Require().NoError(s.console.OpenConnection(items[0].Host))

	s.closeConnectors()
	s.Require().NoError(s.console.WaitForConnectionClosed(connectionClosedTimeout))
	s.True(s.console.IsConnectionNotFound())
}

func (s *ConsoleTestSuite) TestClientsList() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	queue := model.NewAddress(as, model.AddressQueue, model.RandomName("queue-clients"))
	s.Require().NoError(s.resources.AppendAddresses(s.ctx, true, queue))

	s.openAddressList(as)
	s.eventuallyAddress(queue, activeTimeout, isReady)
	s.Require().NoError(s.console.OpenClientsList(queue))
	empty, err := s.console.IsClientListEmpty()
	s.Require().NoError(err)
	s.True(empty)

	connector := s.attach(s.messaging(as), queue, 1, 2, 2)
	err = browser.WaitUntilPropertyPresent(s.ctx, metricsTimeout, connector.Links(), func() (int, error) {
		clients, err := s.console.GetClientItems()
		return len(clients), err
	})
	s.Require().NoError(err)

	client, err := s.console.GetClientItem(connector.ContainerIDs()[0])
	s.Require().NoError(err)
	s.Require().NotNil(client)
	s.Contains([]string{"sender", "receiver"}, client.Role)
}

func (s *ConsoleTestSuite) TestLoginWithWrongCredentials() {
	page := webconsole.NewConsoleWebPage(s.provider, s.cfg.ConsoleURL, auth.WrongCredentials(s.credentials), nil)
	err := page.OpenConsolePage()
	s.Error(err)
	s.ErrorIs(err, webconsole.ErrLoginFailed)

	login := webconsole.NewLoginWebPage(s.provider)
	s.True(login.IsLoginPage())
	s.NotEmpty(login.AlertMessage())
}

func (s *ConsoleTestSuite) TestLogout() {
	s.openConsole()
	s.Require().NoError(s.console.Logout())

	login := webconsole.NewLoginWebPage(s.provider)
	err := browser.WaitUntilCondition(s.ctx, listTimeout, time.Second, func() (bool, error) {
		return login.IsLoginPage(), nil
	})
	s.NoError(err)
}

func (s *ConsoleTestSuite) TestConsoleReachable() {
	s.openConsole()
	s.Require().NoError(s.provider.RefreshPage())
	s.NoError(s.console.CheckReachableWebPage())
}
