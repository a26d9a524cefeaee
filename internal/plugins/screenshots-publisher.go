// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package plugins

import (
	"context"
	"time"

	"github.com/open-edge-platform/messaging-console-tests/internal/config"
	"github.com/open-edge-platform/messaging-console-tests/internal/southbound"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

type Publisher interface {
	Publish(ctx context.Context, files []string, tag string) (ocispec.Descriptor, error)
}

func NewPublisher(cfg config.Configuration) (Publisher, error) {
	return southbound.NewOras(cfg.ArtifactRegistry, cfg.ArtifactRepository, cfg.PlainHTTPRegistry)
}

var PublisherFactory = NewPublisher

// ScreenshotsPublisherPlugin pushes the screenshots left by failed checks of the round
type ScreenshotsPublisherPlugin struct {
	config    config.Configuration
	publisher Publisher
}

func NewScreenshotsPublisherPlugin(cfg config.Configuration) *ScreenshotsPublisherPlugin {
	return &ScreenshotsPublisherPlugin{
		config: cfg,
	}
}

func (p *ScreenshotsPublisherPlugin) Name() string {
	return "screenshots"
}

func (p *ScreenshotsPublisherPlugin) Initialize(_ context.Context, _ PluginData) error {
	if p.config.ArtifactRegistry == "" {
		log.Infof("No artifact registry configured, screenshots stay in %s", p.config.ScreenshotDir)
		return nil
	}
	publisher, err := PublisherFactory(p.config)
	if err != nil {
		return err
	}
	p.publisher = publisher
	return nil
}

func ScreenshotTag(t time.Time) string {
	return "probe-" + t.UTC().Format("20060102-150405")
}

func (p *ScreenshotsPublisherPlugin) Check(ctx context.Context, event Event, data PluginData) error {
	files := screenshots(data)
	if p.publisher == nil || len(files) == 0 {
		return nil
	}
	tag := ScreenshotTag(event.Time)
	desc, err := p.publisher.Publish(ctx, files, tag)
	if err != nil {
		return err
	}
	log.Infof("Published %d screenshots as %s (%s)", len(files), tag, desc.Digest)
	return nil
}
