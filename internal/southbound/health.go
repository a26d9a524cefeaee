// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package southbound

import (
	"context"

	"github.com/open-edge-platform/orch-library/go/pkg/grpc/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// HealthClient queries the gRPC health service of a running console probe
type HealthClient struct {
	conn   *grpc.ClientConn
	client grpc_health_v1.HealthClient
}

func NewHealthClient(probeHost string) (*HealthClient, error) {
	var opts []grpc.DialOption
	opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStreamInterceptor(retry.RetryingStreamClientInterceptor(retry.WithRetryOn(codes.Unavailable, codes.Unknown))),
		grpc.WithUnaryInterceptor(retry.RetryingUnaryClientInterceptor(retry.WithRetryOn(codes.Unavailable, codes.Unknown))))

	conn, err := grpc.NewClient(probeHost, opts...)
	if err != nil {
		return nil, err
	}
	return &HealthClient{
		conn:   conn,
		client: grpc_health_v1.NewHealthClient(conn),
	}, nil
}

// Check returns the serving status of service; the empty service is the overall status
func (h *HealthClient) Check(ctx context.Context, service string) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	resp, err := h.client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}

func (h *HealthClient) Close() error {
	return h.conn.Close()
}
