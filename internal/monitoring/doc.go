/*
Package monitoring provides Prometheus metrics for the shell.

# Overview

Each Metrics value owns a private registry. The primary instance exposes it
on the instance socket at /metrics.

# Metrics

  - webshell_navigation_decisions_total{origin,decision}
  - webshell_external_opens_total{result}
  - webshell_connectivity_transitions_total{from,to}, webshell_offline
  - webshell_probes_total{result}
  - webshell_windows_created_total, webshell_activations_total{source}
  - webshell_stale_window_ops_total{op}
  - webshell_events_total{event}, webshell_event_duration_seconds{event}
  - webshell_instance_requests_total, webshell_instance_request_duration_seconds
  - webshell_uptime_seconds

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
