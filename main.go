// Command relay runs the fileflow one-shot file-transfer relay: access
// ID issuance, chunked upload/download, and WebRTC signaling, all
// backed by in-memory TTL stores (no persistent state across restarts).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fileflow/relay/internal/audit"
	"github.com/fileflow/relay/internal/block"
	"github.com/fileflow/relay/internal/config"
	"github.com/fileflow/relay/internal/cos"
	"github.com/fileflow/relay/internal/httpcom"
	"github.com/fileflow/relay/internal/meta"
	"github.com/fileflow/relay/internal/nlog"
	"github.com/fileflow/relay/internal/rom"
	"github.com/fileflow/relay/internal/signaling"
	"github.com/fileflow/relay/internal/static"
	"github.com/fileflow/relay/internal/transfer"
)

var (
	build     string
	buildtime string
)

func main() {
	cfg := config.Load()
	rom.Rom.Set(cfg.LogLevel)
	cos.InitShortID(uint64(time.Now().UnixNano()))
	runID := cos.GenRunID()
	nlog.SetTitle("relay-" + runID)

	metaReg := meta.NewRegistry()
	blockReg := block.NewRegistry()
	ledger := audit.Open()
	defer ledger.Close()
	metaReg.OnEvict(func(id string, info meta.Info) {
		if !info.Done {
			ledger.RecordEvicted(id, info.FileName, info.FileSize, time.Now())
		}
	})

	core := transfer.New(metaReg, blockReg, cfg, ledger)
	rooms := signaling.NewRegistry(metaReg)

	mux := httpcom.NewMux(core, rooms, cfg, static.Handler())

	addr := cfg.Host + ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: mux.Handler()}

	go func() {
		nlog.Infof("fileflow relay %s (build %s, run %s) listening on %s, max block %d B x %d blocks/file",
			version(), buildtime, runID, addr, cfg.MaxBlockSize, cfg.MaxBlocksPerFile)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nlog.Errorf("server failed: %v", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(srv)
}

// waitForShutdown blocks until SIGINT/SIGTERM, then drains in-flight
// requests for up to 10s before returning.
func waitForShutdown(srv *http.Server) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-c
	nlog.Infoln("shutdown signal received, draining in-flight requests")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		nlog.Warningf("graceful shutdown failed: %v", err)
	}
	nlog.Flush(true)
}

func version() string {
	if build == "" {
		return "dev"
	}
	return fmt.Sprintf("v0.%s", build)
}
