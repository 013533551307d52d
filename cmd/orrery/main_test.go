package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/opd-ai/go-orrery/pkg/config"
	"github.com/opd-ai/go-orrery/pkg/engine"
	"github.com/opd-ai/go-orrery/pkg/health"
	"github.com/opd-ai/go-orrery/pkg/input"
	"github.com/opd-ai/go-orrery/pkg/metrics"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, o options)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, o options) {
				if o.renderer != rendererTerminal {
					t.Errorf("renderer = %q, want terminal", o.renderer)
				}
			},
		},
		{
			name: "headless with ticks",
			args: []string{"-renderer", "headless", "-ticks", "12", "-log-level", "debug"},
			check: func(t *testing.T, o options) {
				if o.renderer != rendererHeadless || o.ticks != 12 || o.logLevel != "debug" {
					t.Errorf("unexpected options %+v", o)
				}
			},
		},
		{name: "unknown renderer", args: []string{"-renderer", "vulkan"}, wantErr: true},
		{name: "negative ticks", args: []string{"-ticks", "-1"}, wantErr: true},
		{name: "unknown flag", args: []string{"-bogus"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseFlags(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, o)
			}
		})
	}
}

func TestRunHeadless(t *testing.T) {
	var out bytes.Buffer
	opts := options{renderer: rendererHeadless, ticks: 3, logLevel: "info"}

	if err := run(context.Background(), opts, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out.String(), "headless run finished") {
		t.Errorf("missing summary in log output:\n%s", out.String())
	}
}

func TestRunHeadlessInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := options{renderer: rendererHeadless, logLevel: "info"}
	if err := run(ctx, opts, io.Discard); err != nil {
		t.Fatalf("run failed: %v", err)
	}
}

func TestRunWritesDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orrery.json")

	if err := run(context.Background(), options{createDefault: true, configPath: path}, io.Discard); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if len(cfg.Planets) != len(config.DefaultConfig().Planets) {
		t.Errorf("got %d planets, want %d", len(cfg.Planets), len(config.DefaultConfig().Planets))
	}

	if err := run(context.Background(), options{createDefault: true}, io.Discard); err == nil {
		t.Error("expected an error without -config")
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	opts := options{renderer: rendererHeadless, ticks: 1, configPath: path}

	if err := run(context.Background(), opts, io.Discard); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestDebugHandler(t *testing.T) {
	collector, err := metrics.NewCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	game := engine.NewGame(config.DefaultConfig(), engine.WithMetrics(collector))
	checker := health.NewChecker(0)
	checker.Register(health.NewSimulationCheck(game.IsRunning, game.LastTickTime, stallAfter))

	srv := httptest.NewServer(debugHandler(collector, checker))
	defer srv.Close()

	get := func(path string) (int, string) {
		t.Helper()
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	if code, _ := get("/healthz"); code != http.StatusOK {
		t.Errorf("/healthz = %d, want 200", code)
	}
	if code, _ := get("/readyz"); code != http.StatusServiceUnavailable {
		t.Errorf("/readyz before start = %d, want 503", code)
	}

	game.Start()
	defer game.Stop()
	game.Tick(1.0/60, input.Snapshot{})

	if code, body := get("/readyz"); code != http.StatusOK {
		t.Errorf("/readyz after tick = %d, want 200: %s", code, body)
	}
	code, body := get("/metrics")
	if code != http.StatusOK {
		t.Fatalf("/metrics = %d", code)
	}
	if !strings.Contains(body, "orrery_ticks_total 1") {
		t.Errorf("tick counter missing from metrics:\n%s", body)
	}
}
