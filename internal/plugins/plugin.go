// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package plugins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/open-edge-platform/orch-library/go/dazl"
)

var log = dazl.GetPackageLogger()

const (
	EventProbe = "probe"

	// PluginData key holding comma separated screenshot paths of failed checks
	DataScreenshots = "screenshots"
)

type Event struct {
	EventType string
	Round     int
	Time      time.Time
}

func (e Event) String() string {
	return fmt.Sprintf("%s #%d", e.EventType, e.Round)
}

type PluginData *map[string]string

type Plugin interface {
	Name() string
	Initialize(context.Context, PluginData) error
	Check(context.Context, Event, PluginData) error
}

// Recorder is told the outcome of every plugin check
type Recorder interface {
	Record(plugin string, err error, elapsed time.Duration)
}

var plugins = []Plugin{}

func Initialize(ctx context.Context) error {
	data := &map[string]string{}
	for _, plugin := range plugins {
		log.Infof("Initializing plugin %s", plugin.Name())
		err := plugin.Initialize(ctx, data)
		log.Infof("Done initializing plugin %s, result %v", plugin.Name(), err)
		if err != nil {
			return err
		}
	}
	log.Infof("Done initializing plugins")
	return nil
}

// Dispatch runs every plugin in registration order. Later plugins still run after a failure so they
// can act on what the failed one left in the plugin data.
func Dispatch(ctx context.Context, event Event, recorder Recorder) error {
	data := &map[string]string{}
	var errs []error
	for _, plugin := range plugins {
		log.Infof("Sending event %v to %s", event, plugin.Name())
		var err error
		start := time.Now()
		if event.EventType == EventProbe {
			err = plugin.Check(ctx, event, data)
		} else {
			err = fmt.Errorf("unknown event type: %s", event.EventType)
		}
		if recorder != nil {
			recorder.Record(plugin.Name(), err, time.Since(start))
		}
		if err != nil {
			log.Infof("Error processing event %v by %s, error is %v", event, plugin.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", plugin.Name(), err))
		} else {
			log.Infof("Successfully processed event %v by %s", event, plugin.Name())
		}
	}
	log.Infof("Done dispatching event: %v", event)
	return errors.Join(errs...)
}

func Register(plugin Plugin) {
	plugins = append(plugins, plugin)
}

// Registered lists the names of the registered plugins
func Registered() []string {
	names := make([]string, 0, len(plugins))
	for _, p := range plugins {
		names = append(names, p.Name())
	}
	return names
}

// Reset drops every registered plugin
func Reset() {
	plugins = []Plugin{}
}
