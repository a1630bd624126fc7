package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/version"
)

func TestNewAPIServer_Timeouts(t *testing.T) {
	srv := newAPIServer(http.NotFoundHandler())

	if srv.ReadHeaderTimeout != readHeaderTimeout {
		t.Fatalf("unexpected read header timeout: %s", srv.ReadHeaderTimeout)
	}
	if srv.ReadTimeout <= 0 || srv.WriteTimeout <= 0 || srv.IdleTimeout <= 0 {
		t.Fatalf("slow clients must be bounded: read=%s write=%s idle=%s", srv.ReadTimeout, srv.WriteTimeout, srv.IdleTimeout)
	}
	if srv.WriteTimeout < srv.ReadTimeout {
		t.Fatalf("write timeout %s must cover read timeout %s", srv.WriteTimeout, srv.ReadTimeout)
	}
}

func TestStartMetricsServer_Endpoints(t *testing.T) {
	logger := log.WithField("test", "http")

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthHandler := healthcheck.NewHandler(version.Version())
	srv := startMetricsServer(ctx, addr, logger, healthHandler)
	if srv == nil {
		t.Fatal("startMetricsServer should not return nil")
	}
	waitForServer(t, addr)

	cases := []struct {
		path string
		body string
	}{
		{path: "/metrics"},
		{path: "/healthz"},
		{path: "/livez", body: "ok"},
		{path: "/readyz", body: "ready"},
	}
	for _, tc := range cases {
		resp, err := http.Get(fmt.Sprintf("http://%s%s", addr, tc.path))
		if err != nil {
			t.Fatalf("failed to get %s: %v", tc.path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected status 200 for %s, got %d", tc.path, resp.StatusCode)
		}
		if len(body) == 0 {
			t.Errorf("%s should return non-empty response", tc.path)
		}
		if tc.body != "" && string(body) != tc.body {
			t.Errorf("expected %q from %s, got %q", tc.body, tc.path, string(body))
		}
	}
}

func TestStartMetricsServer_ReadinessReflectsCriticalChecks(t *testing.T) {
	logger := log.WithField("test", "http-readiness")

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthHandler := healthcheck.NewHandler(version.Version())
	healthHandler.RegisterChecker("postgres", healthcheck.NewCriticalChecker("postgres", func(context.Context) error {
		return errors.New("connection refused")
	}))
	startMetricsServer(ctx, addr, logger, healthHandler)
	waitForServer(t, addr)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(fmt.Sprintf("http://%s%s", addr, path))
		if err != nil {
			t.Fatalf("failed to get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("expected 503 for %s, got %d", path, resp.StatusCode)
		}
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/livez", addr))
	if err != nil {
		t.Fatalf("failed to get /livez: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("liveness must not depend on checks, got %d", resp.StatusCode)
	}
}

func TestStartMetricsServer_Shutdown(t *testing.T) {
	logger := log.WithField("test", "http-shutdown")

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())

	startMetricsServer(ctx, addr, logger, healthcheck.NewHandler(version.Version()))
	waitForServer(t, addr)

	cancel()
	time.Sleep(200 * time.Millisecond)

	if _, err := http.Get(fmt.Sprintf("http://%s/livez", addr)); err == nil {
		t.Error("server should be stopped after context cancellation")
	}
}

func TestShutdownHTTP_NilServer(_ *testing.T) {
	shutdownHTTP(nil, log.WithField("test", "http-nil"))
}

func TestShutdownHTTP_WithServer(t *testing.T) {
	logger := log.WithField("test", "http-shutdown-func")

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	mux := http.NewServeMux()
	mux.HandleFunc("/test", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		_ = srv.ListenAndServe()
	}()
	waitForServer(t, addr)

	shutdownHTTP(srv, logger)

	time.Sleep(100 * time.Millisecond)
	if _, err := http.Get(fmt.Sprintf("http://%s/test", addr)); err == nil {
		t.Error("server should be stopped after shutdownHTTP")
	}
}

func TestStartMetricsServer_AddrInUse(t *testing.T) {
	logger := log.WithField("test", "http-invalid")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer listener.Close()

	srv := startMetricsServer(ctx, listener.Addr().String(), logger, healthcheck.NewHandler(version.Version()))
	if srv == nil {
		t.Error("startMetricsServer should not return nil even with busy addr")
	}
}

// findFreePort находит свободный порт для тестов.
func findFreePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

func waitForServer(t *testing.T, addr string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			conn.Close()
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("server %s did not start", addr)
}
