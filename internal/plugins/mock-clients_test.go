// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package plugins

import (
	"context"
	"fmt"
	"time"

	"github.com/open-edge-platform/messaging-console-tests/internal/config"
	"github.com/open-edge-platform/messaging-console-tests/internal/console"
	"github.com/open-edge-platform/messaging-console-tests/internal/model"
	"github.com/open-edge-platform/messaging-console-tests/internal/southbound"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// K8s client mock
type testK8s struct {
	southbound.K8s
	secrets map[string]map[string][]byte
	spaces  []model.AddressSpace
	listErr error
}

var mockK8s testK8s

func newTestK8s() (southbound.K8s, error) {
	return &mockK8s, nil
}

func (k *testK8s) ReadSecret(_ context.Context, namespace string, name string) (map[string][]byte, error) {
	secret, ok := k.secrets[namespace+"/"+name]
	if !ok {
		return nil, fmt.Errorf("secret %s/%s: %w", namespace, name, southbound.ErrNotFound)
	}
	return secret, nil
}

func (k *testK8s) ListAddressSpaces(_ context.Context, _ string) ([]model.AddressSpace, error) {
	return k.spaces, k.listErr
}

// Publisher mock
type testPublisher struct {
	files []string
	tag   string
	err   error
}

var mockPublisher testPublisher

func newTestPublisher(_ config.Configuration) (Publisher, error) {
	return &mockPublisher, nil
}

func (p *testPublisher) Publish(_ context.Context, files []string, tag string) (ocispec.Descriptor, error) {
	if p.err != nil {
		return ocispec.Descriptor{}, p.err
	}
	p.files = files
	p.tag = tag
	return ocispec.Descriptor{Digest: "sha256:0123"}, nil
}

// Console page mock
type testConsolePage struct {
	openErr  error
	items    []console.AddressSpaceWebItem
	loggedIn bool
	logouts  int
}

func (c *testConsolePage) OpenConsolePage() error {
	if c.openErr != nil {
		return c.openErr
	}
	c.loggedIn = true
	return nil
}

func (c *testConsolePage) GetAddressSpaceItems() ([]console.AddressSpaceWebItem, error) {
	if !c.loggedIn {
		return nil, console.ErrNotLoaded
	}
	return c.items, nil
}

func (c *testConsolePage) Logout() error {
	c.logouts++
	c.loggedIn = false
	return nil
}

// Plugin recording the plugin data it saw
type testPlugin struct {
	name     string
	checkErr error
	seen     map[string]string
	events   []Event
	screen   string
}

func (p *testPlugin) Name() string {
	return p.name
}

func (p *testPlugin) Initialize(_ context.Context, _ PluginData) error {
	return nil
}

func (p *testPlugin) Check(_ context.Context, event Event, data PluginData) error {
	p.events = append(p.events, event)
	if p.screen != "" {
		addScreenshot(data, p.screen)
	}
	p.seen = map[string]string{}
	for k, v := range *data {
		p.seen[k] = v
	}
	return p.checkErr
}

// Recorder mock
type testRecorder struct {
	results map[string]error
}

func (r *testRecorder) Record(plugin string, err error, _ time.Duration) {
	r.results[plugin] = err
}
