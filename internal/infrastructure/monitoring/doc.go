/*
Package monitoring provides Prometheus metrics for the media host.

# Overview

Metrics implements the observer hooks of the registry, the sessions and
the discovery client, so a single value wires every component:

	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
	reg := registry.New(cfg, registry.Deps{Metrics: metrics})
	probe := discovery.New(dcfg, logger, discovery.WithObserver(metrics))

# Metrics

- media_sessions: live sessions after the last tick
- media_ticks_total, media_tick_duration_seconds: frame loop
- media_tick_panics_total: recovered session panics
- media_launches_total{backend,outcome}: renderer launches
- media_plugin_failures_total{backend}: renderer crashes
- media_discoveries_total{outcome}, media_discovery_duration_seconds
- media_http_requests_total, media_http_request_duration_seconds: debug API
- media_uptime_seconds

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
