// Package env contains the names of environment variables the relay
// reads at startup: a dedicated names-only package, kept separate from
// the values that consume them so documentation and code agree.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package env

var FileFlow = struct {
	Host             string
	Port             string
	MaxBlockSize     string
	MaxBlocksPerFile string
	LogLevel         string
	ICEServers       string
}{
	Host:             "FILEFLOW_HOST",
	Port:             "FILEFLOW_PORT",
	MaxBlockSize:     "MAX_BLOCK_SIZE",
	MaxBlocksPerFile: "MAX_BLOCKS_PER_FILE",
	LogLevel:         "FILEFLOW_LOG_LEVEL",
	ICEServers:       "ICE_SERVERS",
}
