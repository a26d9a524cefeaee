// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/open-edge-platform/messaging-console-tests/internal/manager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one probe round and exit non-zero when it fails",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			probe := manager.NewManagerWithRegistry(cfg, prometheus.NewRegistry())
			if err := probe.RunOnce(signals.SetupSignalHandler()); err != nil {
				return err
			}
			cmd.Println("console probe passed")
			return nil
		},
	}
}
