// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"

	"github.com/labstack/gommon/random"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	GroupEnmasse = "enmasse.io"
	GroupUser    = "user.enmasse.io"
	GroupAdmin   = "admin.enmasse.io"
	Version      = "v1beta1"
)

var (
	AddressSpaceResource = schema.GroupVersionResource{Group: GroupEnmasse, Version: Version, Resource: "addressspaces"}
	AddressResource      = schema.GroupVersionResource{Group: GroupEnmasse, Version: Version, Resource: "addresses"}
	UserResource         = schema.GroupVersionResource{Group: GroupUser, Version: Version, Resource: "messagingusers"}
	AuthServiceResource  = schema.GroupVersionResource{Group: GroupAdmin, Version: Version, Resource: "authenticationservices"}
)

// AddressSpace is a tenant messaging namespace
type AddressSpace struct {
	Name                  string
	Namespace             string
	Type                  AddressSpaceType
	Plan                  string
	AuthenticationService string

	// observed state, only filled when read back from the cluster
	Ready    bool
	Phase    string
	Messages []string
	// plan the operator last applied
	AppliedPlan string
}

// AppliedPlanAnnotation records the plan the operator last rolled out
const AppliedPlanAnnotation = "enmasse.io/applied-plan"

// NewAddressSpace returns an address space with the default plan and authentication service for its type
func NewAddressSpace(name, namespace string, t AddressSpaceType) AddressSpace {
	return AddressSpace{
		Name:                  name,
		Namespace:             namespace,
		Type:                  t,
		Plan:                  DefaultSpacePlan(t),
		AuthenticationService: AuthServiceStandard,
	}
}

// RandomName returns prefix followed by a short random lowercase suffix, valid as a k8s name
func RandomName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, random.String(6, random.Lowercase, random.Numeric))
}

func (as AddressSpace) String() string {
	return fmt.Sprintf("%s/%s(%s,%s)", as.Namespace, as.Name, as.Type, as.Plan)
}

func (as AddressSpace) ToUnstructured() *unstructured.Unstructured {
	spec := map[string]interface{}{
		"type": string(as.Type),
		"plan": as.Plan,
	}
	if as.AuthenticationService != "" {
		spec["authenticationService"] = map[string]interface{}{
			"name": as.AuthenticationService,
		}
	}
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": GroupEnmasse + "/" + Version,
		"kind":       "AddressSpace",
		"metadata": map[string]interface{}{
			"name":      as.Name,
			"namespace": as.Namespace,
		},
		"spec": spec,
	}}
}

func AddressSpaceFromUnstructured(u *unstructured.Unstructured) (AddressSpace, error) {
	as := AddressSpace{
		Name:      u.GetName(),
		Namespace: u.GetNamespace(),
	}
	t, _, err := unstructured.NestedString(u.Object, "spec", "type")
	if err != nil {
		return as, fmt.Errorf("address space %s: %w", u.GetName(), err)
	}
	as.Type = AddressSpaceType(t)
	if as.Plan, _, err = unstructured.NestedString(u.Object, "spec", "plan"); err != nil {
		return as, fmt.Errorf("address space %s: %w", u.GetName(), err)
	}
	if as.AuthenticationService, _, err = unstructured.NestedString(u.Object, "spec", "authenticationService", "name"); err != nil {
		return as, fmt.Errorf("address space %s: %w", u.GetName(), err)
	}
	as.Ready, _, _ = unstructured.NestedBool(u.Object, "status", "isReady")
	as.Phase, _, _ = unstructured.NestedString(u.Object, "status", "phase")
	as.Messages, _, _ = unstructured.NestedStringSlice(u.Object, "status", "messages")
	as.AppliedPlan = u.GetAnnotations()[AppliedPlanAnnotation]
	return as, nil
}

// AuthenticationService is an authentication backend address spaces can refer to
type AuthenticationService struct {
	Name      string
	Namespace string
	// standard, none or external
	Type string

	Ready bool
}

func (a AuthenticationService) ToUnstructured() *unstructured.Unstructured {
	spec := map[string]interface{}{
		"type": a.Type,
	}
	if a.Type == "standard" {
		spec["standard"] = map[string]interface{}{
			"storage": map[string]interface{}{
				"type": "ephemeral",
			},
		}
	}
	return &unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": GroupAdmin + "/" + Version,
		"kind":       "AuthenticationService",
		"metadata": map[string]interface{}{
			"name":      a.Name,
			"namespace": a.Namespace,
		},
		"spec": spec,
	}}
}

func AuthenticationServiceFromUnstructured(u *unstructured.Unstructured) AuthenticationService {
	a := AuthenticationService{
		Name:      u.GetName(),
		Namespace: u.GetNamespace(),
	}
	a.Type, _, _ = unstructured.NestedString(u.Object, "spec", "type")
	phase, _, _ := unstructured.NestedString(u.Object, "status", "phase")
	a.Ready = phase == "Active"
	return a
}
