// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Address is a destination inside an address space
type Address struct {
	// metadata name, always <address space>.<sanitized address>
	Name         string
	Namespace    string
	AddressSpace string

	Address string
	Type    AddressType
	Plan    string
	// subscriptions only
	Topic string

	Ready    bool
	Phase    string
	Messages []string
}

var invalidNameChars = regexp.MustCompile(`[^a-z0-9.-]`)

// MetadataName builds the resource name of address inside space
func MetadataName(space string, address string) string {
	return space + "." + invalidNameChars.ReplaceAllString(strings.ToLower(address), "")
}

// NewAddress returns an address of type t in space using the default plan for the space
func NewAddress(space AddressSpace, t AddressType, address string) Address {
	return Address{
		Name:         MetadataName(space.Name, address),
		Namespace:    space.Namespace,
		AddressSpace: space.Name,
		Address:      address,
		Type:         t,
		Plan:         DefaultPlan(space.Type, t),
	}
}

// NewSubscription returns a subscription on topic
func NewSubscription(space AddressSpace, topic Address, address string) Address {
	a := NewAddress(space, AddressSubscription, address)
	a.Topic = topic.Address
	return a
}

// WithPlan returns a copy of a using plan
func (a Address) WithPlan(plan string) Address {
	a.Plan = plan
	return a
}

func (a Address) String() string {
	return fmt.Sprintf("%s/%s(%s,%s)", a.Namespace, a.Name, a.Type, a.Plan)
}

// SpaceName returns the address space the address belongs to, derived from the metadata name when unset
func (a Address) SpaceName() string {
	if a.AddressSpace != "" {
		return a.AddressSpace
	}
	if i := strings.Index(a.Name, "."); i > 0 {
		return a.Name[:i]
	}
	return ""
}

func (a Address) ToUnstructured() *unstructured.Unstructured {
	spec := map[string]interface{}{
		"address": a.Address,
		"type":    string(a.Type),
		"plan":    a.Plan,
	}
	if a.Topic != "" {
		spec["topic"] = a.Topic
	}
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": GroupEnmasse + "/" + Version,
		"kind":       "Address",
		"metadata": map[string]interface{}{
			"name":      a.Name,
			"namespace": a.Namespace,
		},
		"spec": spec,
	}}
}

func AddressFromUnstructured(u *unstructured.Unstructured) (Address, error) {
	a := Address{
		Name:      u.GetName(),
		Namespace: u.GetNamespace(),
	}
	a.AddressSpace = a.SpaceName()
	var err error
	if a.Address, _, err = unstructured.NestedString(u.Object, "spec", "address"); err != nil {
		return a, fmt.Errorf("address %s: %w", u.GetName(), err)
	}
	t, _, err := unstructured.NestedString(u.Object, "spec", "type")
	if err != nil {
		return a, fmt.Errorf("address %s: %w", u.GetName(), err)
	}
	a.Type = AddressType(t)
	if a.Plan, _, err = unstructured.NestedString(u.Object, "spec", "plan"); err != nil {
		return a, fmt.Errorf("address %s: %w", u.GetName(), err)
	}
	a.Topic, _, _ = unstructured.NestedString(u.Object, "spec", "topic")
	a.Ready, _, _ = unstructured.NestedBool(u.Object, "status", "isReady")
	a.Phase, _, _ = unstructured.NestedString(u.Object, "status", "phase")
	a.Messages, _, _ = unstructured.NestedStringSlice(u.Object, "status", "messages")
	return a, nil
}

// GenerateQueueTopicList returns count addresses alternating topic (even index) and queue (odd index)
func GenerateQueueTopicList(space AddressSpace, infix string, count int) []Address {
	addresses := make([]Address, 0, count)
	for i := 0; i < count; i++ {
		if i%2 == 0 {
			addresses = append(addresses, NewAddress(space, AddressTopic, fmt.Sprintf("topic-%s-%d", infix, i)))
		} else {
			addresses = append(addresses, NewAddress(space, AddressQueue, fmt.Sprintf("queue-%s-%d", infix, i)))
		}
	}
	return addresses
}

// MessagingUser is a user allowed to send and receive on every address of a space
type MessagingUser struct {
	AddressSpace string
	Namespace    string
	Credentials  UserCredentials
}

func (u MessagingUser) Name() string {
	return u.AddressSpace + "." + u.Credentials.Username
}

func (u MessagingUser) ToUnstructured() *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": GroupUser + "/" + Version,
		"kind":       "MessagingUser",
		"metadata": map[string]interface{}{
			"name":      u.Name(),
			"namespace": u.Namespace,
		},
		"spec": map[string]interface{}{
			"username": u.Credentials.Username,
			"authentication": map[string]interface{}{
				"type":     "password",
				"password": base64.StdEncoding.EncodeToString([]byte(u.Credentials.Password)),
			},
			"authorization": []interface{}{
				map[string]interface{}{
					"addresses":  []interface{}{"*"},
					"operations": []interface{}{"send", "recv", "view", "manage"},
				},
			},
		},
	}}
}
