// SPDX-FileCopyrightText: (C) 2025 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"fmt"

	"github.com/open-edge-platform/messaging-console-tests/internal/config"
	"github.com/open-edge-platform/messaging-console-tests/internal/model"
	"github.com/open-edge-platform/messaging-console-tests/internal/southbound"
)

// ConsoleCredentials returns the configured console login, or the one kept in the credentials secret
func ConsoleCredentials(ctx context.Context, k8s southbound.K8s, cfg config.Configuration) (model.UserCredentials, error) {
	if cfg.Username != "" && cfg.Password != "" {
		return model.UserCredentials{Username: cfg.Username, Password: cfg.Password}, nil
	}
	if k8s == nil {
		return model.UserCredentials{}, fmt.Errorf("no console credentials configured and no cluster to read them from")
	}
	return southbound.ReadCredentials(ctx, k8s, cfg.InfraNamespace, cfg.CredentialsSecret)
}

// WrongCredentials returns a login the identity provider must reject
func WrongCredentials(valid model.UserCredentials) model.UserCredentials {
	return model.UserCredentials{
		Username: "noexistuser",
		Password: valid.Password + "-pepaPa555",
	}
}
