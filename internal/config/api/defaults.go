package api

import "time"

// API服务默认配置值
const (
	defaultHTTPEnabled      = true
	defaultHTTPListenAddr   = "127.0.0.1:8545"
	defaultWebSocketEnabled = true
	defaultMetricsEnabled   = true

	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultShutdownTimeout = 5 * time.Second
)
