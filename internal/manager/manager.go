// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package manager

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/open-edge-platform/messaging-console-tests/internal/config"
	"github.com/open-edge-platform/messaging-console-tests/internal/plugins"
	"github.com/open-edge-platform/orch-library/go/dazl"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"k8s.io/apimachinery/pkg/util/wait"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
)

var log = dazl.GetPackageLogger()

// ServiceName is the gRPC health service following the probe result
const ServiceName = "console-probe"

var errNotInitialized = errors.New("probe plugins not initialized")

// NewManager creates a new manager exporting its metrics through the controller-runtime registry
func NewManager(config config.Configuration) *Manager {
	return NewManagerWithRegistry(config, ctrlmetrics.Registry)
}

func NewManagerWithRegistry(config config.Configuration, reg prometheus.Registerer) *Manager {
	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return &Manager{
		Config:  config,
		Metrics: NewMetrics(reg),
		health:  healthServer,
	}
}

// Manager single point of entry for the console probe
type Manager struct {
	Config    config.Configuration
	Metrics   *Metrics
	health    *health.Server
	eventChan chan plugins.Event
	workers   sync.WaitGroup

	mu          sync.Mutex
	initialized bool
	round       int
	lastErr     error
	lastRound   time.Time
}

// Run starts the probe manager and blocks until ctx is done
func (m *Manager) Run(ctx context.Context) {
	log.Infof("Starting Manager, probing every %s", m.Config.ProbeInterval)
	m.RegisterPlugins()
	if err := m.Start(ctx); err != nil {
		log.Errorf("Unable to run Manager %v", err)
	}
}

// RegisterPlugins registers the console, address space and screenshot plugins, in that order
func (m *Manager) RegisterPlugins() {
	plugins.Register(plugins.NewConsoleProbePlugin(m.Config))
	plugins.Register(plugins.NewAddressSpacesProbePlugin(m.Config))
	plugins.Register(plugins.NewScreenshotsPublisherPlugin(m.Config))
}

// Start initializes the registered plugins, then probes every ProbeInterval until ctx is done.
// A round still being retried is abandoned when ctx is done.
func (m *Manager) Start(ctx context.Context) error {
	log.Info("Starting Manager with config:")
	config.DumpConfig(m.Config)

	if err := m.initialize(ctx); err != nil {
		return err
	}

	m.startWorkers(ctx)
	defer m.Close()

	ticker := time.NewTicker(m.Config.ProbeInterval)
	defer ticker.Stop()

	m.Trigger(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Trigger(ctx)
		}
	}
}

// RunOnce runs a single probe round without retries and returns its result
func (m *Manager) RunOnce(ctx context.Context) error {
	m.RegisterPlugins()
	if err := m.initialize(ctx); err != nil {
		return err
	}
	event := m.nextEvent()
	err := plugins.Dispatch(ctx, event, m.Metrics)
	m.Metrics.recordRound(err, time.Now())
	m.setStatus(event, err)
	return err
}

func (m *Manager) initialize(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, m.Config.MaxWaitTime)
	defer cancel()
	if err := plugins.Initialize(initCtx); err != nil {
		return err
	}
	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()
	return nil
}

func (m *Manager) startWorkers(ctx context.Context) {
	// unbuffered: a tick arriving while every worker is busy waits for one to free up
	m.eventChan = make(chan plugins.Event)
	for i := 0; i < m.Config.NumberWorkerThreads; i++ {
		m.workers.Add(1)
		go m.eventWorker(ctx, i)
	}
}

func (m *Manager) nextEvent() plugins.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.round++
	return plugins.Event{
		EventType: plugins.EventProbe,
		Round:     m.round,
		Time:      time.Now(),
	}
}

// Trigger queues a probe round
func (m *Manager) Trigger(ctx context.Context) {
	e := m.nextEvent()
	log.Debugf("Queueing %v", e)
	select {
	case m.eventChan <- e:
	case <-ctx.Done():
	}
}

func (m *Manager) eventWorker(ctx context.Context, id int) {
	defer m.workers.Done()
	for event := range m.eventChan {
		start := time.Now()
		log.Infof("Event worker %d found work on %v", id, event)
		err := m.handleEvent(ctx, event)
		if err != nil {
			log.Errorf("Probe round failed: %v", err)
		}
		m.setStatus(event, err)
		elapsed := time.Since(start)
		log.Infof("Done with %v on worker %d elapsed time %d seconds", event, id, int(elapsed.Seconds()))
	}
}

func (m *Manager) handleEvent(ctx context.Context, event plugins.Event) error {
	err := m.retryEvent(ctx, event)
	m.Metrics.recordRound(err, time.Now())
	return err
}

// retryEvent dispatches event every InitialSleepInterval until it succeeds, MaxWaitTime passed or ctx is done
func (m *Manager) retryEvent(ctx context.Context, event plugins.Event) error {
	var lastErr error
	err := wait.PollUntilContextTimeout(ctx, m.Config.InitialSleepInterval, m.Config.MaxWaitTime, true, func(ctx context.Context) (bool, error) {
		// dispatch the event
		lastErr = plugins.Dispatch(ctx, event, m.Metrics)
		if lastErr != nil {
			log.Infof("Error processing event, retrying in %s: %+v", m.Config.InitialSleepInterval, lastErr)
		}
		return lastErr == nil, nil
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		log.Warnf("Abandoning %v: %v", event, ctx.Err())
	} else {
		log.Errorf("Failed to handle event %v within the maximum wait time", event)
	}
	if lastErr != nil {
		return lastErr
	}
	return err
}

func (m *Manager) setStatus(event plugins.Event, err error) {
	m.mu.Lock()
	m.lastErr = err
	m.lastRound = event.Time
	m.mu.Unlock()

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	m.health.SetServingStatus(ServiceName, status)
}

// LastResult returns the number of queued rounds, the time and the error of the last finished one
func (m *Manager) LastResult() (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.round, m.lastRound, m.lastErr
}

// ReadyzCheck is a controller-runtime readiness checker, ready once the plugins are initialized
func (m *Manager) ReadyzCheck(_ *http.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return errNotInitialized
	}
	return nil
}

// Close kills the channels and manager related objects
func (m *Manager) Close() {
	log.Info("Closing Manager")
	if m.eventChan != nil {
		close(m.eventChan)
		m.workers.Wait()
		m.eventChan = nil
	}
	m.health.Shutdown()
}

// HealthCheck registers the probe health service on a gRPC server
func (m *Manager) HealthCheck() HealthCheck {
	return HealthCheck{server: m.health}
}

// HealthCheck is a struct receiver implementing onos northbound Register interface.
type HealthCheck struct {
	server *health.Server
}

// Register is a method to register a health check gRPC service.
func (h HealthCheck) Register(s *grpc.Server) {
	if h.server == nil {
		h.server = health.NewServer()
	}
	grpc_health_v1.RegisterHealthServer(s, h.server)
}
