// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/open-edge-platform/messaging-console-tests/internal/config"
	"github.com/open-edge-platform/orch-library/go/dazl"
	_ "github.com/open-edge-platform/orch-library/go/dazl/zap"
	"github.com/spf13/cobra"
)

var log = dazl.GetPackageLogger()

var configFile string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "console-probe",
		Short:        "Probe a messaging web console through a headless browser",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file, environment variables take precedence")
	root.AddCommand(newRunCommand(), newCheckCommand(), newStatusCommand())
	return root
}

func loadConfig() (config.Configuration, error) {
	if configFile != "" {
		if err := os.Setenv(config.FileEnv, configFile); err != nil {
			return config.Configuration{}, err
		}
	}
	return config.InitConfig()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
