// Package metrics exposes the relay's Prometheus counters and gauges.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fileflow"

var (
	IDsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ids_issued_total",
		Help:      "Number of access IDs issued via /id.",
	})
	BlocksUploaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocks_uploaded_total",
		Help:      "Number of blocks accepted via /upload.",
	})
	BlocksDownloaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocks_downloaded_total",
		Help:      "Number of blocks delivered via /file.",
	})
	ClaimsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "claims_rejected_total",
		Help:      "Number of receiver claims rejected because another receiver already holds the ID.",
	})
	TransfersDone = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transfers_done_total",
		Help:      "Number of transfers marked done.",
	})
	RoomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "signaling_rooms_active",
		Help:      "Number of signaling rooms currently holding at least one peer.",
	})
	RoomTaken = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signaling_room_taken_total",
		Help:      "Number of signaling joins rejected because the requested slot was occupied.",
	})
)

var roomIdleOnce sync.Once

// RegisterRoomIdleAge installs a pull-time gauge reporting the idle age
// (seconds) of the least recently active signaling room. Registered at
// most once per process; later calls (tests constructing extra
// registries) are no-ops.
func RegisterRoomIdleAge(f func() float64) {
	roomIdleOnce.Do(func() {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signaling_oldest_room_idle_seconds",
			Help:      "Idle age of the least recently active signaling room.",
		}, f)
	})
}

// Handler is mounted at the debug metrics route; metrics are pulled
// by the scraper, never pushed.
func Handler() http.Handler { return promhttp.Handler() }
