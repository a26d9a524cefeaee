// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package model

// address space plans
const (
	PlanStandardSmall     = "standard-small"
	PlanStandardMedium    = "standard-medium"
	PlanStandardUnlimited = "standard-unlimited"
	PlanBrokered          = "brokered-single-broker"
)

// address plans
const (
	PlanStandardSmallQueue        = "standard-small-queue"
	PlanStandardLargeQueue        = "standard-large-queue"
	PlanStandardXLargeQueue       = "standard-xlarge-queue"
	PlanStandardSmallTopic        = "standard-small-topic"
	PlanStandardLargeTopic        = "standard-large-topic"
	PlanStandardSmallAnycast      = "standard-small-anycast"
	PlanStandardSmallMulticast    = "standard-small-multicast"
	PlanStandardSmallSubscription = "standard-small-subscription"
	PlanBrokeredQueue             = "brokered-queue"
	PlanBrokeredTopic             = "brokered-topic"
)

// authentication services shipped with the messaging infrastructure
const (
	AuthServiceStandard = "standard-authservice"
	AuthServiceNone     = "none-authservice"
)

// DefaultPlan is the plan used for an address of type t in a space of type spaceType.
// Brokered spaces only know queues and topics; other types return an empty plan.
func DefaultPlan(spaceType AddressSpaceType, t AddressType) string {
	if spaceType == AddressSpaceBrokered {
		switch t {
		case AddressQueue:
			return PlanBrokeredQueue
		case AddressTopic:
			return PlanBrokeredTopic
		}
		return ""
	}
	switch t {
	case AddressQueue:
		return PlanStandardSmallQueue
	case AddressTopic:
		return PlanStandardSmallTopic
	case AddressAnycast:
		return PlanStandardSmallAnycast
	case AddressMulticast:
		return PlanStandardSmallMulticast
	case AddressSubscription:
		return PlanStandardSmallSubscription
	}
	return ""
}

// DefaultSpacePlan is the plan used when a test does not pick one
func DefaultSpacePlan(spaceType AddressSpaceType) string {
	if spaceType == AddressSpaceBrokered {
		return PlanBrokered
	}
	return PlanStandardMedium
}
