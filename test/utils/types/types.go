// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

//nolint:revive // Test utility package
package types

// Constants for console and probe tests
const (
	// Port forwarding configuration
	PortForwardAddress      = "127.0.0.1"
	ConsoleLocalPort        = 8443
	ConsoleRemotePort       = 8443
	MessagingLocalPort      = 5671
	MessagingRemotePort     = 5671
	ProbeLocalPort          = 8080
	ProbeRemotePort         = 8080
	MessagingServiceName    = "messaging"
	ConsoleProbeServiceName = "console-probe"
	ConsoleProbeNamespace   = "enmasse-infra"

	// Non cluster admin scenario
	TestNamespace       = "test-namespace"
	ClientsAdminBinding = "clients-admin"
	ClusterRoleAdmin    = "admin"
	NonAdminUsername    = "pepa"
	NonAdminPassword    = "zdepa"

	// Console help link target when DOCS_URL is not set
	DefaultDocsURL = "https://enmasse.io/documentation"
)
