// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/open-edge-platform/messaging-console-tests/internal/manager"
	"github.com/open-edge-platform/messaging-console-tests/internal/southbound"
	"github.com/open-edge-platform/orch-library/go/pkg/errors"
	"github.com/spf13/cobra"
	"google.golang.org/grpc/health/grpc_health_v1"
)

func newStatusCommand() *cobra.Command {
	var probeHost string
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query the health service of a running probe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := southbound.NewHealthClient(probeHost)
			if err != nil {
				return err
			}
			defer client.Close()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			status, err := client.Check(ctx, manager.ServiceName)
			if err != nil {
				if errors.IsNotFound(errors.FromGRPC(err)) {
					return fmt.Errorf("%s does not serve %s", probeHost, manager.ServiceName)
				}
				return err
			}
			cmd.Printf("%s: %s\n", manager.ServiceName, status)
			if status != grpc_health_v1.HealthCheckResponse_SERVING {
				return fmt.Errorf("console probe is %s", status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&probeHost, "probe", "localhost:8080", "host:port of the probe gRPC health service")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "status request timeout")
	return cmd
}
