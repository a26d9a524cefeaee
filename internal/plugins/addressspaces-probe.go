// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package plugins

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/open-edge-platform/messaging-console-tests/internal/config"
	"github.com/open-edge-platform/messaging-console-tests/internal/southbound"
)

type AddressSpacesProbePlugin struct {
	config config.Configuration
	k8s    southbound.K8s
}

func NewAddressSpacesProbePlugin(cfg config.Configuration) *AddressSpacesProbePlugin {
	return &AddressSpacesProbePlugin{
		config: cfg,
	}
}

func (p *AddressSpacesProbePlugin) Name() string {
	return "addressspaces"
}

func (p *AddressSpacesProbePlugin) Initialize(_ context.Context, _ PluginData) error {
	k8s, err := southbound.K8sFactory()
	if err != nil {
		return err
	}
	p.k8s = k8s
	return nil
}

// Check fails when an address space in the infra namespace is not ready
func (p *AddressSpacesProbePlugin) Check(ctx context.Context, _ Event, _ PluginData) error {
	spaces, err := p.k8s.ListAddressSpaces(ctx, p.config.InfraNamespace)
	if err != nil {
		return err
	}
	var notReady []string
	for _, as := range spaces {
		if !as.Ready {
			notReady = append(notReady, fmt.Sprintf("%s (%s)", as.Name, as.Phase))
		}
	}
	log.Infof("%d address spaces in %s, %d not ready", len(spaces), p.config.InfraNamespace, len(notReady))
	if len(notReady) > 0 {
		sort.Strings(notReady)
		return fmt.Errorf("address spaces not ready: %s", strings.Join(notReady, ", "))
	}
	return nil
}
