// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package resources

import (
	"context"
	"fmt"
	"sync"

	"github.com/open-edge-platform/messaging-console-tests/internal/model"
	"github.com/open-edge-platform/messaging-console-tests/internal/southbound"
)

// fakeK8s keeps resources in memory; they turn ready after readyAfter reads
type fakeK8s struct {
	mu         sync.Mutex
	readyAfter int
	reads      map[string]int

	spaces       map[string]model.AddressSpace
	addresses    map[string]model.Address
	users        map[string]model.MessagingUser
	authServices map[string]model.AuthenticationService
	namespaces   map[string]bool
	bindings     []string
	deleted      []string
	manifest     []model.ObjectRef
}

func newFakeK8s(readyAfter int) *fakeK8s {
	return &fakeK8s{
		readyAfter:   readyAfter,
		reads:        map[string]int{},
		spaces:       map[string]model.AddressSpace{},
		addresses:    map[string]model.Address{},
		users:        map[string]model.MessagingUser{},
		authServices: map[string]model.AuthenticationService{},
		namespaces:   map[string]bool{},
	}
}

func key(namespace, name string) string {
	return namespace + "/" + name
}

func (f *fakeK8s) ready(k string) bool {
	f.reads[k]++
	return f.reads[k] >= f.readyAfter
}

func (f *fakeK8s) ReadSecret(_ context.Context, namespace string, name string) (map[string][]byte, error) {
	return nil, fmt.Errorf("secret %s: %w", key(namespace, name), southbound.ErrNotFound)
}

func (f *fakeK8s) CreateAddressSpace(_ context.Context, as model.AddressSpace) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spaces[key(as.Namespace, as.Name)] = as
	return nil
}

func (f *fakeK8s) GetAddressSpace(_ context.Context, namespace string, name string) (model.AddressSpace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(namespace, name)
	as, ok := f.spaces[k]
	if !ok {
		return as, fmt.Errorf("address space %s: %w", k, southbound.ErrNotFound)
	}
	as.Ready = f.ready("space/" + k)
	if as.Ready {
		as.AppliedPlan = as.Plan
	}
	return as, nil
}

func (f *fakeK8s) ListAddressSpaces(_ context.Context, namespace string) ([]model.AddressSpace, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var spaces []model.AddressSpace
	for _, as := range f.spaces {
		if as.Namespace == namespace {
			spaces = append(spaces, as)
		}
	}
	return spaces, nil
}

func (f *fakeK8s) DeleteAddressSpace(_ context.Context, namespace string, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.spaces, key(namespace, name))
	f.deleted = append(f.deleted, "addressspace/"+key(namespace, name))
	return nil
}

func (f *fakeK8s) CreateAddress(_ context.Context, a model.Address) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addresses[key(a.Namespace, a.Name)] = a
	return nil
}

func (f *fakeK8s) GetAddress(_ context.Context, namespace string, name string) (model.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(namespace, name)
	a, ok := f.addresses[k]
	if !ok {
		return a, fmt.Errorf("address %s: %w", k, southbound.ErrNotFound)
	}
	a.Ready = f.ready("address/" + k)
	return a, nil
}

func (f *fakeK8s) ListAddresses(_ context.Context, namespace string, addressSpace string) ([]model.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var addresses []model.Address
	for _, a := range f.addresses {
		if a.Namespace == namespace && a.SpaceName() == addressSpace {
			addresses = append(addresses, a)
		}
	}
	return addresses, nil
}

func (f *fakeK8s) DeleteAddress(_ context.Context, namespace string, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.addresses, key(namespace, name))
	f.deleted = append(f.deleted, "address/"+key(namespace, name))
	return nil
}

func (f *fakeK8s) CreateOrUpdateUser(_ context.Context, user model.MessagingUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[key(user.Namespace, user.Name())] = user
	return nil
}

func (f *fakeK8s) DeleteUser(_ context.Context, namespace string, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, key(namespace, name))
	f.deleted = append(f.deleted, "user/"+key(namespace, name))
	return nil
}

func (f *fakeK8s) CreateAuthenticationService(_ context.Context, a model.AuthenticationService) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authServices[key(a.Namespace, a.Name)] = a
	return nil
}

func (f *fakeK8s) GetAuthenticationService(_ context.Context, namespace string, name string) (model.AuthenticationService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(namespace, name)
	a, ok := f.authServices[k]
	if !ok {
		return a, fmt.Errorf("authentication service %s: %w", k, southbound.ErrNotFound)
	}
	a.Ready = f.ready("authservice/" + k)
	return a, nil
}

func (f *fakeK8s) DeleteAuthenticationService(_ context.Context, namespace string, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.authServices, key(namespace, name))
	f.deleted = append(f.deleted, "authservice/"+key(namespace, name))
	return nil
}

func (f *fakeK8s) CreateNamespace(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.namespaces[name] = true
	return nil
}

func (f *fakeK8s) DeleteNamespace(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.namespaces, name)
	f.deleted = append(f.deleted, "namespace/"+name)
	return nil
}

func (f *fakeK8s) CreateRoleBinding(_ context.Context, namespace string, name string, clusterRole string, user string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bindings = append(f.bindings, fmt.Sprintf("%s/%s:%s:%s", namespace, name, clusterRole, user))
	return nil
}

func (f *fakeK8s) ApplyManifest(_ context.Context, _ string, _ string) ([]model.ObjectRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.manifest, nil
}
