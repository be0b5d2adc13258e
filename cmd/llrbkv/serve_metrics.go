package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/kvforge/llrbkv/pkg/kv"
	"github.com/kvforge/llrbkv/pkg/metrics"
)

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Open the database and serve /metrics, /health, /ready, /live",
	Long: `serve-metrics opens the database, registers it as a health component,
and blocks serving Prometheus metrics and health endpoints. Useful for
running llrbkv under a supervisor that polls /ready before routing traffic,
or for scraping block-store and tree-depth gauges during a long batch job
run via a separate process against the same file.`,
	RunE: runServeMetrics,
}

func init() {
	serveMetricsCmd.Flags().String("addr", "127.0.0.1:9090", "Address to serve /metrics, /health, /ready, /live on")
}

func runServeMetrics(cmd *cobra.Command, args []string) error {
	db, err := kv.Connect(dbPath(cmd), kv.WithRegisterHealth("store"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	metrics.SetVersion(Version)

	addr, _ := cmd.Flags().GetString("addr")

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/health", metrics.HealthHandler())
	mux.Handle("/ready", metrics.ReadyHandler())
	mux.Handle("/live", metrics.LivenessHandler())

	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", addr)
	fmt.Printf("✓ Health endpoints:\n")
	fmt.Printf("  - Health check: http://%s/health\n", addr)
	fmt.Printf("  - Readiness:    http://%s/ready\n", addr)
	fmt.Printf("  - Liveness:     http://%s/live\n", addr)

	return http.ListenAndServe(addr, mux)
}
