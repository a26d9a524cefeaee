// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/open-edge-platform/orch-library/go/dazl"
)

var log = dazl.GetPackageLogger()

// ServiceCheck represents a service to check
type ServiceCheck struct {
	Name       string
	URL        string
	HealthPath string

	// accept self signed certificates, as served by port forwarded consoles
	InsecureSkipVerify bool
}

// WaitForService waits for a service to become available
func WaitForService(ctx context.Context, service ServiceCheck) error {
	client := &http.Client{
		Timeout: 3 * time.Second,
		Transport: &http.Transport{
			// #nosec G402 -- test clusters serve self signed certificates
			TLSClientConfig: &tls.Config{InsecureSkipVerify: service.InsecureSkipVerify},
		},
	}

	checkURL := service.URL
	if service.HealthPath != "" {
		checkURL = service.URL + service.HealthPath
	}

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	if reachable(ctx, client, checkURL) {
		return nil
	}

	attempts := 0
	maxAttempts := 30

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %s after %d attempts", service.Name, attempts)
		case <-ticker.C:
			attempts++
			if attempts > maxAttempts {
				return fmt.Errorf("max attempts (%d) reached for %s", maxAttempts, service.Name)
			}
			if reachable(ctx, client, checkURL) {
				return nil
			}
			if attempts%10 == 0 {
				log.Infof("Still waiting for %s (attempt %d/%d)...", service.Name, attempts, maxAttempts)
			}
		}
	}
}

func reachable(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}
