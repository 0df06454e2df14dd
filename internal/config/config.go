// Package config loads the relay's startup configuration from
// environment variables. A bad value never aborts the process, it
// falls back to the default and logs a warning.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package config

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/fileflow/relay/api/env"
	"github.com/fileflow/relay/internal/cos"
	"github.com/fileflow/relay/internal/nlog"
)

const (
	DefaultHost             = "0.0.0.0"
	DefaultPort             = "5000"
	DefaultMaxBlockSize     = 1 << 20 // 1 MiB
	DefaultMaxBlocksPerFile = 1024

	// APIPrefix is the configurable nesting point for the functional
	// routes; it is not currently overridden by an env var, treated as a
	// deployment constant instead.
	APIPrefix = "/api/v1"

	// RequestTimeout is the transport-layer timeout upload, download,
	// and done routes run under.
	RequestTimeout = 20
)

// Config is the process-wide, immutable-after-load set of knobs
// threaded into the application context: constructed once at startup
// and handed to every handler.
type Config struct {
	Host             string
	Port             string
	MaxBlockSize     uint32
	MaxBlocksPerFile uint32
	LogLevel         int
	ICEServers       []string
}

// MaxTotalSize is the admission cap: max_block_size *
// max_blocks_per_file.
func (c *Config) MaxTotalSize() uint64 {
	return uint64(c.MaxBlockSize) * uint64(c.MaxBlocksPerFile)
}

// Load reads FILEFLOW_HOST, FILEFLOW_PORT, MAX_BLOCK_SIZE,
// MAX_BLOCKS_PER_FILE, FILEFLOW_LOG_LEVEL and ICE_SERVERS, falling back
// to defaults with a warning on any parse failure.
func Load() *Config {
	c := &Config{
		Host:             cos.GetEnvOrDefault(env.FileFlow.Host, DefaultHost),
		Port:             cos.GetEnvOrDefault(env.FileFlow.Port, DefaultPort),
		MaxBlockSize:     cos.GetEnvUint32OrDefault(env.FileFlow.MaxBlockSize, DefaultMaxBlockSize),
		MaxBlocksPerFile: cos.GetEnvUint32OrDefault(env.FileFlow.MaxBlocksPerFile, DefaultMaxBlocksPerFile),
	}
	c.LogLevel = int(cos.GetEnvUint32OrDefault(env.FileFlow.LogLevel, 0))
	c.ICEServers = loadICEServers()
	return c
}

// loadICEServers parses a JSON array of ICE server URLs for
// /webrtc/config, defaulting to an empty list.
func loadICEServers() []string {
	raw := cos.GetEnvOrDefault(env.FileFlow.ICEServers, "")
	if raw == "" {
		return []string{}
	}
	var servers []string
	if err := jsoniter.UnmarshalFromString(raw, &servers); err != nil {
		nlog.Warningf("invalid %s=%q, falling back to no ICE servers: %v", env.FileFlow.ICEServers, raw, err)
		return []string{}
	}
	return servers
}
