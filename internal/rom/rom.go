// Package rom holds the read-mostly runtime knobs, assigned once at
// startup to avoid repeated config lookups on hot paths.
/*
 * Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
 */
package rom

type readMostly struct {
	level int
}

var Rom readMostly

func (r *readMostly) Set(level int) { r.level = level }

// FastV reports whether the configured verbosity admits a log line at
// the given level.
func (r *readMostly) FastV(level int) bool { return r.level >= level }
