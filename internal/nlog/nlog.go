// Package nlog is the relay's logger: an unbuffered, timestamped,
// severity-gated writer trimmed down to what a single-process relay
// needs (no rotation, no file management).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fileflow/relay/internal/rom"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

const sevChar = "IWE"

var (
	mu    sync.Mutex
	out   io.Writer = os.Stderr
	title string
)

// SetOutput redirects all log writes; tests use this to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// SetTitle records the process title and emits the banner line a log
// file header would otherwise carry.
func SetTitle(s string) {
	title = s
	log(sevInfo, 1, "log started by %s", title)
}

// V gates Info-severity lines on the process-wide rom verbosity knob;
// Warn/Err always print.
func V(level int) bool { return rom.Rom.FastV(level) }

func Infoln(args ...any)                  { log(sevInfo, 1, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 1, format, args...) }
func Warningln(args ...any)               { log(sevWarn, 1, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 1, format, args...) }
func Errorln(args ...any)                 { log(sevErr, 1, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 1, format, args...) }

// VInfof only prints at Info severity if the configured verbosity
// allows it.
func VInfof(level int, format string, args ...any) {
	if V(level) {
		log(sevInfo, 1, format, args...)
	}
}

func log(sev severity, depth int, format string, args ...any) {
	var line strings.Builder
	formatHdr(sev, depth+1, &line)
	if format == "" {
		fmt.Fprintln(&line, args...)
	} else {
		fmt.Fprintf(&line, format, args...)
		if !strings.HasSuffix(line.String(), "\n") {
			line.WriteByte('\n')
		}
	}
	mu.Lock()
	io.WriteString(out, line.String())
	mu.Unlock()
}

func formatHdr(sev severity, depth int, b *strings.Builder) {
	_, fn, ln, ok := runtime.Caller(1 + depth)
	b.WriteByte(sevChar[sev])
	b.WriteByte(' ')
	b.WriteString(time.Now().Format("15:04:05.000000"))
	b.WriteByte(' ')
	if ok {
		if idx := strings.LastIndexByte(fn, filepath.Separator); idx >= 0 {
			fn = fn[idx+1:]
		}
		b.WriteString(fn)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(ln))
		b.WriteByte(' ')
	}
}

// Flush is a no-op; os.Stderr is unbuffered. Kept so call sites read
// the same if buffering is ever introduced.
func Flush(...bool) {}
