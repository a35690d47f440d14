package grpc

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeHealth struct {
	mu        sync.Mutex
	healthy   bool
	listeners []func(bool)
}

func (f *fakeHealth) IsHealthy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthy
}

func (f *fakeHealth) OnChange(fn func(bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, fn)
}

func (f *fakeHealth) set(healthy bool) {
	f.mu.Lock()
	f.healthy = healthy
	listeners := f.listeners
	f.mu.Unlock()

	for _, fn := range listeners {
		fn(healthy)
	}
}

func startServer(t *testing.T, src HealthSource) healthpb.HealthClient {
	t.Helper()

	s, err := NewServer(&Config{Addr: "127.0.0.1:0", Health: src, Logger: zap.NewNop()})
	require.NoError(t, err)

	go func() { _ = s.Start() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})

	conn, err := grpc.NewClient(s.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealthService_FollowsSource(t *testing.T) {
	src := &fakeHealth{healthy: true}
	client := startServer(t, src)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ServiceName))

	src.set(false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ""))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ServiceName))

	src.set(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ServiceName))
}

func TestNewServer_InvalidAddr(t *testing.T) {
	_, err := NewServer(&Config{Addr: "256.0.0.1:-1", Health: &fakeHealth{}, Logger: zap.NewNop()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create listener")
}
