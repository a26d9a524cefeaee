// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/open-edge-platform/messaging-console-tests/internal/browser"
	webconsole "github.com/open-edge-platform/messaging-console-tests/internal/console"
	"github.com/open-edge-platform/messaging-console-tests/internal/model"
	"github.com/open-edge-platform/messaging-console-tests/internal/southbound"
)

const (
	hyphenName = "10charhere-10charhere"
	purgeCount = 1000
)

var (
	invalidAddressNames = []string{"#address", "address*", "add ress", "*", "#"}
	validAddressNames   = []string{"$address", "address-name", "dummy/address", "address)", "123address", "address:x", "address.x"}
)

func isReady(i webconsole.AddressWebItem) bool {
	return i.Status() == model.StatusReady
}

func (s *ConsoleTestSuite) standardAddresses(as model.AddressSpace, name string) []model.Address {
	topic := model.NewAddress(as, model.AddressTopic, "topic-sub"+name)
	return []model.Address{
		model.NewAddress(as, model.AddressQueue, "queue-"+name),
		topic,
		model.NewAddress(as, model.AddressAnycast, "anycast-"+name),
		model.NewAddress(as, model.AddressMulticast, "multicast-"+name),
		model.NewSubscription(as, topic, "subscription-"+name),
	}
}

// createAndDelete creates every address through the console, checks it turns ready and deletes it again
func (s *ConsoleTestSuite) createAndDelete(as model.AddressSpace, addresses []model.Address) {
	s.openAddressList(as)
	for _, a := range addresses {
		s.Require().NoError(s.console.CreateAddress(s.ctx, a, true), a.Address)
		item := s.eventuallyAddress(a, activeTimeout, isReady)
		s.Equal(a.Type, item.Type())
	}
	for i := len(addresses) - 1; i >= 0; i-- {
		s.Require().NoError(s.console.DeleteAddress(s.ctx, addresses[i]), addresses[i].Address)
	}
}

func (s *ConsoleTestSuite) TestCreateDeleteStandardAddresses() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	s.createAndDelete(as, s.standardAddresses(as, "via-web"))
}

func (s *ConsoleTestSuite) TestCreateDeleteBrokeredAddresses() {
	as := s.sharedSpace(model.AddressSpaceBrokered)
	s.createAndDelete(as, []model.Address{
		model.NewAddress(as, model.AddressQueue, "queue-via-web"),
		model.NewAddress(as, model.AddressTopic, "topic-via-web"),
	})
}

func (s *ConsoleTestSuite) TestStrangeAddressNames() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	long := strings.Repeat("10charhere", 5)
	for _, name := range []string{hyphenName, long} {
		s.Run(name[:10], func() {
			addresses := s.standardAddresses(as, name)
			s.createAndDelete(as, addresses)
		})
	}
}

func (s *ConsoleTestSuite) TestAddressSnippet() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	a := model.NewAddress(as, model.AddressQueue, model.RandomName("queue-snippet"))

	s.openAddressList(as)
	s.Require().NoError(s.console.PrepareAddressCreation(a))
	snippet, err := s.console.GetDeploymentSnippet()
	s.Require().NoError(err)
	s.Contains(snippet, a.Address)

	created, err := s.resources.ApplyManifest(s.ctx, as.Namespace, snippet)
	s.Require().NoError(err)
	s.Require().Len(created, 1)
	s.Equal("Address", created[0].Kind)
	s.Equal(as.Namespace, created[0].Namespace)
	s.Require().NoError(s.resources.WaitForDestinationsReady(s.ctx, a))
}

func (s *ConsoleTestSuite) TestAddressNameValidation() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	s.openAddressList(as)
	s.Require().NoError(s.console.OpenAddressCreationDialog())

	for _, name := range invalidAddressNames {
		s.Require().NoError(s.console.FillAddressName(name))
		invalid, err := s.console.IsAddressNameInvalid()
		s.Require().NoError(err)
		s.True(invalid, "%q accepted", name)
	}
	for _, name := range validAddressNames {
		s.Require().NoError(s.console.FillAddressName(name))
		invalid, err := s.console.IsAddressNameInvalid()
		s.Require().NoError(err)
		s.False(invalid, "%q rejected", name)
	}
}

func (s *ConsoleTestSuite) TestAddressStatus() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	ready := model.NewAddress(as, model.AddressQueue, model.RandomName("queue-ready"))
	broken := model.NewAddress(as, model.AddressQueue, model.RandomName("queue-broken")).WithPlan("no-such-plan")
	s.Require().NoError(s.resources.AppendAddresses(s.ctx, true, ready))
	s.Require().NoError(s.resources.AppendAddresses(s.ctx, false, broken))

	s.openAddressList(as)
	s.eventuallyAddress(ready, activeTimeout, isReady)
	item := s.eventuallyAddress(broken, activeTimeout, func(i webconsole.AddressWebItem) bool {
		return i.Status() != model.StatusReady
	})
	s.NotEqual("Ready", item.StatusString)
}

func (s *ConsoleTestSuite) TestFilterAddresses() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	addresses := model.GenerateQueueTopicList(as, "filter", 4)
	s.Require().NoError(s.resources.SetAddresses(s.ctx, addresses...))

	s.openAddressList(as)
	s.eventuallyAddressCount(4)

	s.Require().NoError(s.console.AddAddressesFilter(model.FilterByType, string(model.AddressQueue)))
	items := s.eventuallyAddressCount(2)
	for _, i := range items {
		s.Equal(model.AddressQueue, i.Type())
	}
	s.Require().NoError(s.console.RemoveAddressFilter(model.FilterByType, string(model.AddressQueue)))
	s.eventuallyAddressCount(4)

	s.Require().NoError(s.console.AddFilter(model.FilterByType, string(model.AddressTopic)))
	items = s.eventuallyAddressCount(2)
	for _, i := range items {
		s.Equal(model.AddressTopic, i.Type())
	}
	s.Require().NoError(s.console.RemoveAllFilters())

	s.Require().NoError(s.console.AddAddressesFilter(model.FilterByAddress, "queue-filter"))
	items = s.eventuallyAddressCount(2)
	for _, i := range items {
		s.Contains(i.Address, "queue-filter")
	}
	s.Require().NoError(s.console.RemoveAllFilters())
}

// addresses are listed as Configuring while pending and as Active once ready
func (s *ConsoleTestSuite) TestFilterAddressesByStatus() {
	as := s.newSpace("filter-status", model.AddressSpaceStandard)
	addresses := model.GenerateQueueTopicList(as, "via-web", 4)

	s.openAddressList(as)
	s.Require().NoError(s.resources.AppendAddresses(s.ctx, false, addresses...))

	s.Require().NoError(s.console.AddAddressesFilter(model.FilterByStatus, "Configuring"))
	s.eventuallyAddressCount(4)

	s.Require().NoError(s.resources.WaitForDestinationsReady(s.ctx, addresses...))
	s.Require().NoError(s.console.RemoveAllFilters())
	s.Require().NoError(s.console.AddAddressesFilter(model.FilterByStatus, "Active"))
	s.eventuallyAddressCount(4)
	s.Require().NoError(s.console.RemoveAllFilters())
}

func (s *ConsoleTestSuite) TestDeleteFilteredAddresses() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	addresses := model.GenerateQueueTopicList(as, "delete", 4)
	s.Require().NoError(s.resources.SetAddresses(s.ctx, addresses...))

	s.openAddressList(as)
	s.eventuallyAddressCount(4)
	s.Require().NoError(s.console.AddAddressesFilter(model.FilterByType, string(model.AddressTopic)))
	s.eventuallyAddressCount(2)

	var topics []model.Address
	for _, a := range addresses {
		if a.Type == model.AddressTopic {
			topics = append(topics, a)
		}
	}
	s.Require().NoError(s.console.DeleteSelectedAddresses(topics...))
	s.eventuallyAddressCount(0)
	for _, a := range topics {
		s.NoError(s.resources.WaitForAddressDeleted(s.ctx, a))
	}

	s.Require().NoError(s.console.RemoveAllFilters())
	s.eventuallyAddressCount(2)
}

func (s *ConsoleTestSuite) TestPurgeMessages() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	queues := []model.Address{
		model.NewAddress(as, model.AddressQueue, "test-queue1"),
		model.NewAddress(as, model.AddressQueue, "test-queue2"),
		model.NewAddress(as, model.AddressQueue, "test-queue3").WithPlan(model.PlanStandardXLargeQueue),
	}
	s.Require().NoError(s.resources.SetAddresses(s.ctx, queues...))
	attacher := s.messaging(as)

	messages := make([]string, purgeCount)
	for i := range messages {
		messages[i] = fmt.Sprintf("msg no. %d", i)
	}
	for _, q := range queues {
		sent, err := attacher.SendMessages(s.ctx, q.Address, messages)
		s.Require().NoError(err)
		s.Equal(purgeCount, sent)
	}

	s.openAddressList(as)
	for _, q := range queues {
		s.eventuallyAddress(q, metricsTimeout, func(i webconsole.AddressWebItem) bool {
			return i.MessagesStored == purgeCount
		})
	}
	s.Require().NoError(s.console.PurgeSelectedAddresses(queues[0], queues[2]))

	received, err := attacher.ReceiveMessages(s.ctx, queues[1].Address, purgeCount)
	s.Require().NoError(err)
	s.Len(received, purgeCount)

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()
	received, _ = attacher.ReceiveMessages(ctx, queues[2].Address, purgeCount)
	s.Empty(received)
}

func (s *ConsoleTestSuite) TestEditAddress() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	queue := model.NewAddress(as, model.AddressQueue, model.RandomName("queue-edit"))
	s.Require().NoError(s.resources.AppendAddresses(s.ctx, true, queue))

	s.openAddressList(as)
	s.eventuallyAddress(queue, activeTimeout, isReady)
	s.Require().NoError(s.console.ChangeAddressPlan(queue, model.PlanStandardLargeQueue))
	time.Sleep(10 * time.Second)

	err := browser.WaitUntilCondition(s.ctx, activeTimeout, time.Second, func() (bool, error) {
		read, err := s.resources.GetAddress(s.ctx, queue)
		return read.Plan == model.PlanStandardLargeQueue, err
	})
	s.Require().NoError(err)
	s.eventuallyAddress(queue, activeTimeout, func(i webconsole.AddressWebItem) bool {
		return i.Plan == model.PlanStandardLargeQueue
	})
}

func (s *ConsoleTestSuite) TestSortAddresses() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	addresses := model.GenerateQueueTopicList(as, "sort", 4)
	s.Require().NoError(s.resources.SetAddresses(s.ctx, addresses...))

	s.openAddressList(as)
	s.eventuallyAddressCount(len(addresses))

	byAddress := func(i webconsole.AddressWebItem) string { return i.Address }
	s.Require().NoError(s.console.SortAddresses(model.SortByAddress, true))
	items, err := s.console.GetAddressItems()
	s.Require().NoError(err)
	s.True(webconsole.IsSorted(items, byAddress, false))

	s.Require().NoError(s.console.SortAddresses(model.SortByAddress, false))
	items, err = s.console.GetAddressItems()
	s.Require().NoError(err)
	s.True(webconsole.IsSorted(items, byAddress, true))

	if s.cfg.MessagingHost == "" {
		return
	}
	s.attachClients(s.messaging(as), addresses)
	for sortType, key := range map[model.SortType]func(webconsole.AddressWebItem) int{
		model.SortBySenders:   func(i webconsole.AddressWebItem) int { return i.Senders },
		model.SortByReceivers: func(i webconsole.AddressWebItem) int { return i.Receivers },
	} {
		s.Require().NoError(s.console.SortAddresses(sortType, true))
		items, err = s.console.GetAddressItems()
		s.Require().NoError(err)
		s.True(webconsole.IsSorted(items, key, false), "ascending %s", sortType)

		s.Require().NoError(s.console.SortAddresses(sortType, false))
		items, err = s.console.GetAddressItems()
		s.Require().NoError(err)
		s.True(webconsole.IsSorted(items, key, true), "descending %s", sortType)
	}
}

func (s *ConsoleTestSuite) TestAddressLinks() {
	for _, t := range spaceTypes {
		s.Run(string(t), func() {
			as := s.sharedSpace(t)
			queue := model.NewAddress(as, model.AddressQueue, model.RandomName("queue-links"))
			s.Require().NoError(s.resources.AppendAddresses(s.ctx, true, queue))
			attacher := s.messaging(as)
			var connectors []*southbound.Connector
			if t == model.AddressSpaceBrokered {
				connectors = append(connectors, s.attach(attacher, queue, 1, 6, 0), s.attach(attacher, queue, 1, 0, 4))
			} else {
				connectors = append(connectors, s.attach(attacher, queue, 1, 6, 4))
			}
			wantSenders, wantReceivers := 0, 0
			for _, c := range connectors {
				wantSenders += c.Senders()
				wantReceivers += c.Receivers()
			}

			s.openAddressList(as)
			item := s.eventuallyAddress(queue, metricsTimeout, func(i webconsole.AddressWebItem) bool {
				return i.Senders == wantSenders && i.Receivers == wantReceivers
			})
			s.Require().NoError(s.console.OpenClientsList(queue))
			var clients []webconsole.ClientWebItem
			err := browser.WaitUntilPropertyPresent(s.ctx, listTimeout, item.Senders+item.Receivers, func() (int, error) {
				var err error
				clients, err = s.console.GetClientItems()
				return len(clients), err
			})
			s.Require().NoError(err)
			senders := 0
			for _, c := range clients {
				if c.Role == "sender" {
					senders++
				}
			}
			s.Equal(wantSenders, senders)
			s.closeConnectors()
		})
	}
}

func (s *ConsoleTestSuite) TestClientsMetrics() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	queue := model.NewAddress(as, model.AddressQueue, model.RandomName("queue-metrics"))
	s.Require().NoError(s.resources.AppendAddresses(s.ctx, true, queue))
	connector := s.attach(s.messaging(as), queue, 1, 11, 11)

	s.openAddressList(as)
	s.eventuallyAddress(queue, metricsTimeout, func(i webconsole.AddressWebItem) bool {
		return i.Senders == 11 && i.Receivers == 11 && i.MessagesIn >= 5 && i.MessagesOut >= 5
	})
	s.Positive(connector.Sent())
	s.Positive(connector.Received())
}

func (s *ConsoleTestSuite) TestMessagesStoredMetrics() {
	as := s.sharedSpace(model.AddressSpaceStandard)
	queue := model.NewAddress(as, model.AddressQueue, model.RandomName("queue-stored"))
	s.Require().NoError(s.resources.AppendAddresses(s.ctx, true, queue))
	attacher := s.messaging(as)

	sent, err := attacher.SendMessages(s.ctx, queue.Address, southbound.GenerateMessages(50))
	s.Require().NoError(err)
	s.Equal(50, sent)

	s.openAddressList(as)
	s.eventuallyAddress(queue, metricsTimeout, func(i webconsole.AddressWebItem) bool {
		return i.MessagesStored == 50
	})
	received, err := attacher.ReceiveMessages(s.ctx, queue.Address, 50)
	s.Require().NoError(err)
	s.Len(received, 50)
	s.eventuallyAddress(queue, metricsTimeout, func(i webconsole.AddressWebItem) bool {
		return i.MessagesStored == 0
	})
}
