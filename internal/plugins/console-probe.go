// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/open-edge-platform/messaging-console-tests/internal/browser"
	"github.com/open-edge-platform/messaging-console-tests/internal/config"
	"github.com/open-edge-platform/messaging-console-tests/internal/console"
	"github.com/open-edge-platform/messaging-console-tests/internal/model"
	"github.com/open-edge-platform/messaging-console-tests/internal/southbound"
)

func NewBrowser(cfg config.Configuration) *browser.Provider {
	return browser.NewProvider(browser.OptionsFromConfig(cfg))
}

var BrowserFactory = NewBrowser

// ConsolePage is what the console check does on the console
type ConsolePage interface {
	OpenConsolePage() error
	GetAddressSpaceItems() ([]console.AddressSpaceWebItem, error)
	Logout() error
}

func NewConsolePage(provider *browser.Provider, route string, creds model.UserCredentials) ConsolePage {
	return console.NewConsoleWebPage(provider, route, creds, nil)
}

var ConsolePageFactory = NewConsolePage

// ConsoleProbePlugin logs into the console and lists the address spaces
type ConsoleProbePlugin struct {
	config      config.Configuration
	credentials model.UserCredentials
}

func NewConsoleProbePlugin(cfg config.Configuration) *ConsoleProbePlugin {
	return &ConsoleProbePlugin{
		config: cfg,
		credentials: model.UserCredentials{
			Username: cfg.Username,
			Password: cfg.Password,
		},
	}
}

func (p *ConsoleProbePlugin) Name() string {
	return "console"
}

// Initialize reads the console login from the credentials secret unless one is configured
func (p *ConsoleProbePlugin) Initialize(ctx context.Context, _ PluginData) error {
	if p.config.ConsoleURL == "" {
		return fmt.Errorf("console URL is not configured")
	}
	if p.credentials.Password != "" {
		return nil
	}
	k8s, err := southbound.K8sFactory()
	if err != nil {
		return err
	}
	creds, err := southbound.ReadCredentials(ctx, k8s, p.config.InfraNamespace, p.config.CredentialsSecret)
	if err != nil {
		return fmt.Errorf("reading console credentials: %w", err)
	}
	p.credentials = creds
	log.Infof("Console credentials %s read from %s/%s", creds, p.config.InfraNamespace, p.config.CredentialsSecret)
	return nil
}

func (p *ConsoleProbePlugin) Check(ctx context.Context, event Event, data PluginData) error {
	provider := BrowserFactory(p.config)
	if err := provider.Setup(ctx); err != nil {
		return err
	}
	defer func() {
		if err := provider.TearDown(); err != nil {
			log.Warnf("Closing browser: %v", err)
		}
	}()

	page := ConsolePageFactory(provider, p.config.ConsoleURL, p.credentials)
	err := p.check(page)
	if err != nil {
		path, shotErr := provider.TakeScreenShot(fmt.Sprintf("probe-%d", event.Round))
		if shotErr != nil {
			log.Warnf("No screenshot of failed probe: %v", shotErr)
		} else {
			addScreenshot(data, path)
		}
	}
	return err
}

func (p *ConsoleProbePlugin) check(page ConsolePage) error {
	if err := page.OpenConsolePage(); err != nil {
		return err
	}
	items, err := page.GetAddressSpaceItems()
	if err != nil {
		return err
	}
	log.Infof("Console lists %d address spaces", len(items))
	if err := page.Logout(); err != nil {
		log.Warnf("Logout failed: %v", err)
	}
	return nil
}

func addScreenshot(data PluginData, path string) {
	if data == nil {
		return
	}
	if existing := (*data)[DataScreenshots]; existing != "" {
		(*data)[DataScreenshots] = existing + "," + path
		return
	}
	(*data)[DataScreenshots] = path
}

func screenshots(data PluginData) []string {
	if data == nil || (*data)[DataScreenshots] == "" {
		return nil
	}
	return strings.Split((*data)[DataScreenshots], ",")
}
