// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"net"

	"github.com/open-edge-platform/messaging-console-tests/internal/manager"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	k8sconfig "sigs.k8s.io/controller-runtime/pkg/client/config"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	k8smanager "sigs.k8s.io/controller-runtime/pkg/manager"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Probe the console periodically, serving health, readiness and metrics",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return run()
		},
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	probe := manager.NewManager(cfg)

	k8scfg, err := k8sconfig.GetConfig()
	if err != nil {
		return err
	}
	mgr, err := k8smanager.New(k8scfg, k8smanager.Options{
		HealthProbeBindAddress: cfg.HealthProbeBindAddress,
		Metrics:                metricsserver.Options{BindAddress: cfg.MetricsBindAddress},
	})
	if err != nil {
		return err
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		return fmt.Errorf("unable to set up health check: %w", err)
	}
	if err := mgr.AddReadyzCheck("readyz", probe.ReadyzCheck); err != nil {
		return fmt.Errorf("unable to set up ready check: %w", err)
	}
	if err := mgr.Add(k8smanager.RunnableFunc(func(ctx context.Context) error {
		return serveHealth(ctx, cfg.GRPCPort, probe.HealthCheck())
	})); err != nil {
		return err
	}
	if err := mgr.Add(k8smanager.RunnableFunc(func(ctx context.Context) error {
		probe.Run(ctx)
		return nil
	})); err != nil {
		return err
	}

	// Start the manager
	log.Info("Starting the Manager")
	if err := mgr.Start(signals.SetupSignalHandler()); err != nil {
		return fmt.Errorf("manager exited non-zero: %w", err)
	}
	return nil
}

// serveHealth serves the gRPC health service on port until ctx is done
func serveHealth(ctx context.Context, port int, health manager.HealthCheck) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	server := grpc.NewServer()
	health.Register(server)

	go func() {
		<-ctx.Done()
		server.GracefulStop()
	}()
	log.Infof("gRPC health service listening on %s", lis.Addr())
	return server.Serve(lis)
}
