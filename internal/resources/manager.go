// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

// Package resources creates the messaging resources a console test needs and removes them afterwards.
package resources

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/open-edge-platform/messaging-console-tests/internal/config"
	"github.com/open-edge-platform/messaging-console-tests/internal/model"
	"github.com/open-edge-platform/messaging-console-tests/internal/southbound"
	"github.com/open-edge-platform/orch-library/go/dazl"
	"k8s.io/apimachinery/pkg/util/wait"
)

var log = dazl.GetPackageLogger()

// ErrTimeout is returned when a resource does not reach the awaited state within MaxWaitTime
var ErrTimeout = errors.New("timed out waiting for resource")

// maxSleepInterval caps the doubling poll interval
const maxSleepInterval = time.Minute

type cleanup struct {
	key string
	fn  func(ctx context.Context) error
}

// Manager tracks what it creates so TearDown can remove it in reverse order
type Manager struct {
	k8s southbound.K8s
	cfg config.Configuration

	mu       sync.Mutex
	cleanups []cleanup
}

func NewManager(k8s southbound.K8s, cfg config.Configuration) *Manager {
	return &Manager{
		k8s: k8s,
		cfg: cfg,
	}
}

func (m *Manager) register(key string, fn func(ctx context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cleanups {
		if c.key == key {
			return
		}
	}
	m.cleanups = append(m.cleanups, cleanup{key: key, fn: fn})
}

func (m *Manager) forget(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.cleanups {
		if c.key == key {
			m.cleanups = append(m.cleanups[:i], m.cleanups[i+1:]...)
			return
		}
	}
}

// Tracked lists the keys of resources TearDown will remove, oldest first
func (m *Manager) Tracked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.cleanups))
	for _, c := range m.cleanups {
		keys = append(keys, c.key)
	}
	return keys
}

// waitFor polls cond, doubling the sleep from InitialSleepInterval, until it holds or MaxWaitTime passed
func (m *Manager) waitFor(ctx context.Context, description string, cond func(ctx context.Context) (bool, error)) error {
	sleepInterval := m.cfg.InitialSleepInterval
	if sleepInterval <= 0 {
		sleepInterval = time.Second
	}
	backoff := wait.Backoff{
		Duration: sleepInterval,
		Factor:   2,
		Cap:      maxSleepInterval,
		Steps:    math.MaxInt32,
	}

	waitCtx, cancel := context.WithTimeout(ctx, m.cfg.MaxWaitTime)
	defer cancel()

	var lastErr error
	err := backoff.DelayFunc().Until(waitCtx, true, true, func(ctx context.Context) (bool, error) {
		ok, err := cond(ctx)
		if err != nil {
			lastErr = err
			log.Debugf("Waiting for %s: %v", description, err)
			return false, nil
		}
		if !ok {
			log.Debugf("%s not yet", description)
		}
		return ok, nil
	})
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return fmt.Errorf("waiting for %s: %w", description, ctx.Err())
	case lastErr != nil:
		return fmt.Errorf("%s after %s: %w (last error: %v)", description, m.cfg.MaxWaitTime, ErrTimeout, lastErr)
	default:
		return fmt.Errorf("%s after %s: %w", description, m.cfg.MaxWaitTime, ErrTimeout)
	}
}

func spaceKey(as model.AddressSpace) string {
	return "addressspace/" + as.Namespace + "/" + as.Name
}

func addressKey(a model.Address) string {
	return "address/" + a.Namespace + "/" + a.Name
}

// ================================================================
// Address spaces
// ================================================================

// AddToAddressSpaces tracks spaces created by other means, e.g. through the console
func (m *Manager) AddToAddressSpaces(spaces ...model.AddressSpace) {
	for _, as := range spaces {
		as := as
		m.register(spaceKey(as), func(ctx context.Context) error {
			return m.k8s.DeleteAddressSpace(ctx, as.Namespace, as.Name)
		})
	}
}

// CreateAddressSpace creates the spaces and, when wait is set, waits for every one of them to become ready
func (m *Manager) CreateAddressSpace(ctx context.Context, wait bool, spaces ...model.AddressSpace) error {
	for _, as := range spaces {
		log.Infof("Creating address space %s", as)
		if err := m.k8s.CreateAddressSpace(ctx, as); err != nil {
			return err
		}
		m.AddToAddressSpaces(as)
	}
	if !wait {
		return nil
	}
	for _, as := range spaces {
		if _, err := m.WaitForAddressSpaceReady(ctx, as); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) GetAddressSpace(ctx context.Context, namespace string, name string) (model.AddressSpace, error) {
	return m.k8s.GetAddressSpace(ctx, namespace, name)
}

func (m *Manager) AddressSpaceExists(ctx context.Context, namespace string, name string) (bool, error) {
	_, err := m.k8s.GetAddressSpace(ctx, namespace, name)
	if errors.Is(err, southbound.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *Manager) WaitForAddressSpaceReady(ctx context.Context, as model.AddressSpace) (model.AddressSpace, error) {
	log.Infof("Waiting for address space %s to be ready", as.Name)
	var current model.AddressSpace
	err := m.waitFor(ctx, "address space "+as.Name+" ready", func(ctx context.Context) (bool, error) {
		var err error
		current, err = m.k8s.GetAddressSpace(ctx, as.Namespace, as.Name)
		if err != nil {
			return false, err
		}
		return current.Ready, nil
	})
	if err != nil {
		return current, err
	}
	log.Infof("Address space %s is ready", as.Name)
	return current, nil
}

// WaitForAddressSpaceConfigurationApplied waits until the operator rolled out a plan other than previousPlan
func (m *Manager) WaitForAddressSpaceConfigurationApplied(ctx context.Context, as model.AddressSpace, previousPlan string) error {
	return m.waitFor(ctx, "address space "+as.Name+" configuration applied", func(ctx context.Context) (bool, error) {
		current, err := m.k8s.GetAddressSpace(ctx, as.Namespace, as.Name)
		if err != nil {
			return false, err
		}
		return current.AppliedPlan != "" && current.AppliedPlan != previousPlan, nil
	})
}

// DeleteAddressSpace deletes the space and waits until it is gone
func (m *Manager) DeleteAddressSpace(ctx context.Context, as model.AddressSpace) error {
	log.Infof("Deleting address space %s", as.Name)
	if err := m.k8s.DeleteAddressSpace(ctx, as.Namespace, as.Name); err != nil {
		return err
	}
	m.forget(spaceKey(as))
	return m.waitFor(ctx, "address space "+as.Name+" deleted", func(ctx context.Context) (bool, error) {
		exists, err := m.AddressSpaceExists(ctx, as.Namespace, as.Name)
		return !exists, err
	})
}

// ================================================================
// Addresses
// ================================================================

// AppendAddresses creates the addresses next to the existing ones
func (m *Manager) AppendAddresses(ctx context.Context, wait bool, addresses ...model.Address) error {
	for _, a := range addresses {
		log.Infof("Creating address %s", a)
		if err := m.k8s.CreateAddress(ctx, a); err != nil {
			return err
		}
		a := a
		m.register(addressKey(a), func(ctx context.Context) error {
			return m.k8s.DeleteAddress(ctx, a.Namespace, a.Name)
		})
	}
	if !wait {
		return nil
	}
	return m.WaitForDestinationsReady(ctx, addresses...)
}

// SetAddresses makes addresses the only ones of their address spaces and waits for them
func (m *Manager) SetAddresses(ctx context.Context, addresses ...model.Address) error {
	wanted := make(map[string]bool, len(addresses))
	spaces := make(map[string]string)
	for _, a := range addresses {
		wanted[a.Namespace+"/"+a.Name] = true
		spaces[a.Namespace+"/"+a.SpaceName()] = a.Namespace
	}
	for key, namespace := range spaces {
		space := strings.TrimPrefix(key, namespace+"/")
		existing, err := m.k8s.ListAddresses(ctx, namespace, space)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if wanted[e.Namespace+"/"+e.Name] {
				continue
			}
			if err := m.DeleteAddress(ctx, e); err != nil {
				return err
			}
		}
	}
	var missing []model.Address
	for _, a := range addresses {
		if _, err := m.k8s.GetAddress(ctx, a.Namespace, a.Name); errors.Is(err, southbound.ErrNotFound) {
			missing = append(missing, a)
		} else if err != nil {
			return err
		}
	}
	return m.AppendAddresses(ctx, true, missing...)
}

func (m *Manager) GetAddress(ctx context.Context, a model.Address) (model.Address, error) {
	return m.k8s.GetAddress(ctx, a.Namespace, a.Name)
}

// WaitForDestinationsReady waits until every address reports ready
func (m *Manager) WaitForDestinationsReady(ctx context.Context, addresses ...model.Address) error {
	for _, a := range addresses {
		err := m.waitFor(ctx, "address "+a.Address+" ready", func(ctx context.Context) (bool, error) {
			current, err := m.k8s.GetAddress(ctx, a.Namespace, a.Name)
			if err != nil {
				return false, err
			}
			return current.Ready, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteAddress deletes the address and waits until it is gone
func (m *Manager) DeleteAddress(ctx context.Context, a model.Address) error {
	log.Infof("Deleting address %s", a)
	if err := m.k8s.DeleteAddress(ctx, a.Namespace, a.Name); err != nil && !errors.Is(err, southbound.ErrNotFound) {
		return err
	}
	return m.WaitForAddressDeleted(ctx, a)
}

func (m *Manager) WaitForAddressDeleted(ctx context.Context, a model.Address) error {
	err := m.waitFor(ctx, "address "+a.Address+" deleted", func(ctx context.Context) (bool, error) {
		_, err := m.k8s.GetAddress(ctx, a.Namespace, a.Name)
		if errors.Is(err, southbound.ErrNotFound) {
			return true, nil
		}
		return false, err
	})
	if err == nil {
		m.forget(addressKey(a))
	}
	return err
}

// ================================================================
// Users, authentication services and namespaces
// ================================================================

// CreateOrUpdateUser creates a messaging user of as with full access
func (m *Manager) CreateOrUpdateUser(ctx context.Context, as model.AddressSpace, creds model.UserCredentials) (model.MessagingUser, error) {
	user := model.MessagingUser{
		AddressSpace: as.Name,
		Namespace:    as.Namespace,
		Credentials:  creds,
	}
	log.Infof("Creating messaging user %s", user.Name())
	if err := m.k8s.CreateOrUpdateUser(ctx, user); err != nil {
		return user, err
	}
	m.register("user/"+user.Namespace+"/"+user.Name(), func(ctx context.Context) error {
		return m.k8s.DeleteUser(ctx, user.Namespace, user.Name())
	})
	return user, nil
}

// CreateAuthService creates the authentication service and, when wait is set, waits until it is active
func (m *Manager) CreateAuthService(ctx context.Context, a model.AuthenticationService, wait bool) error {
	log.Infof("Creating authentication service %s", a.Name)
	if err := m.k8s.CreateAuthenticationService(ctx, a); err != nil {
		return err
	}
	m.register("authservice/"+a.Namespace+"/"+a.Name, func(ctx context.Context) error {
		return m.k8s.DeleteAuthenticationService(ctx, a.Namespace, a.Name)
	})
	if !wait {
		return nil
	}
	return m.waitFor(ctx, "authentication service "+a.Name+" active", func(ctx context.Context) (bool, error) {
		current, err := m.k8s.GetAuthenticationService(ctx, a.Namespace, a.Name)
		if err != nil {
			return false, err
		}
		return current.Ready, nil
	})
}

func (m *Manager) CreateNamespace(ctx context.Context, name string) error {
	log.Infof("Creating namespace %s", name)
	if err := m.k8s.CreateNamespace(ctx, name); err != nil {
		return err
	}
	m.register("namespace/"+name, func(ctx context.Context) error {
		return m.k8s.DeleteNamespace(ctx, name)
	})
	return nil
}

// GrantNamespaceRole binds clusterRole to user inside namespace
func (m *Manager) GrantNamespaceRole(ctx context.Context, namespace string, name string, clusterRole string, user string) error {
	log.Infof("Granting %s in %s to %s", clusterRole, namespace, user)
	return m.k8s.CreateRoleBinding(ctx, namespace, name, clusterRole, user)
}

// ApplyManifest creates the resources of a console deployment snippet and tracks the messaging ones
func (m *Manager) ApplyManifest(ctx context.Context, namespace string, manifest string) ([]model.ObjectRef, error) {
	created, err := m.k8s.ApplyManifest(ctx, namespace, manifest)
	for _, ref := range created {
		switch ref.Kind {
		case "AddressSpace":
			m.AddToAddressSpaces(model.AddressSpace{Name: ref.Name, Namespace: ref.Namespace})
		case "Address":
			a := model.Address{Name: ref.Name, Namespace: ref.Namespace}
			m.register(addressKey(a), func(ctx context.Context) error {
				return m.k8s.DeleteAddress(ctx, a.Namespace, a.Name)
			})
		}
	}
	return created, err
}

// TearDown removes everything still tracked, newest first. Resources already gone are not errors.
func (m *Manager) TearDown(ctx context.Context) error {
	m.mu.Lock()
	cleanups := m.cleanups
	m.cleanups = nil
	m.mu.Unlock()

	var errs []error
	for i := len(cleanups) - 1; i >= 0; i-- {
		log.Infof("Removing %s", cleanups[i].key)
		if err := cleanups[i].fn(ctx); err != nil && !errors.Is(err, southbound.ErrNotFound) {
			log.Warnf("Failed to remove %s: %v", cleanups[i].key, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
