// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package portforward

import (
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/open-edge-platform/messaging-console-tests/test/utils/types"
	"github.com/open-edge-platform/orch-library/go/dazl"
)

var log = dazl.GetPackageLogger()

// Global registry for port forward processes
var (
	portForwardRegistry = make(map[string]*exec.Cmd)
	registryMutex       sync.Mutex
)

// SetupConsole sets up port forwarding to the deployed console service and returns its local URL
func SetupConsole(namespace string, service string) (string, error) {
	err := setupPortForward("console", namespace, service, types.ConsoleLocalPort, types.ConsoleRemotePort)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("https://%s:%d", types.PortForwardAddress, types.ConsoleLocalPort), nil
}

// SetupMessaging sets up port forwarding to the AMQP endpoint of an address space and returns host:port
func SetupMessaging(namespace string, service string) (string, error) {
	err := setupPortForward("messaging", namespace, service, types.MessagingLocalPort, types.MessagingRemotePort)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", types.PortForwardAddress, types.MessagingLocalPort), nil
}

// SetupProbe sets up port forwarding to the gRPC health endpoint of the deployed console probe
func SetupProbe(namespace string) (string, error) {
	err := setupPortForward("probe", namespace, types.ConsoleProbeServiceName, types.ProbeLocalPort, types.ProbeRemotePort)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", types.PortForwardAddress, types.ProbeLocalPort), nil
}

// setupPortForward establishes kubectl port-forward to deployed service
func setupPortForward(serviceName, namespace, k8sServiceName string, localPort, remotePort int) error {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	log.Infof("Setting up port forwarding to %s service", serviceName)

	// Kill existing port forward if any
	if cmd, exists := portForwardRegistry[serviceName]; exists && cmd.Process != nil {
		_ = cmd.Process.Kill()
		delete(portForwardRegistry, serviceName)
	}

	// #nosec G204 -- This is test code with controlled input
	cmd := exec.Command("kubectl", "port-forward",
		"-n", namespace,
		fmt.Sprintf("svc/%s", k8sServiceName),
		fmt.Sprintf("%d:%d", localPort, remotePort))

	err := cmd.Start()
	if err != nil {
		return fmt.Errorf("failed to start port forwarding to %s: %w", serviceName, err)
	}

	portForwardRegistry[serviceName] = cmd

	// Give time for port forwarding to establish
	time.Sleep(3 * time.Second)

	log.Infof("Port forwarding to %s established on localhost:%d", serviceName, localPort)
	return nil
}

// Cleanup kills all port forwarding processes
func Cleanup() {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	log.Infof("Cleaning up all port forwarding processes")

	for serviceName, cmd := range portForwardRegistry {
		if cmd.Process != nil {
			log.Infof("Killing port forward to %s", serviceName)
			_ = cmd.Process.Kill()
		}
	}

	portForwardRegistry = make(map[string]*exec.Cmd)
}
