// WebSocket upgrade and per-connection pump loops for SignalingCore,
// built on gorilla/websocket.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package signaling

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"

	"github.com/fileflow/relay/internal/metrics"
	"github.com/fileflow/relay/internal/nlog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Signaling payloads are opaque and the relay does not authenticate
	// the data plane, so same-origin enforcement brings no real
	// isolation here; accept all origins like a public relay.
	CheckOrigin: func(*http.Request) bool { return true },
}

type roomTakenFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Serve upgrades r and runs the connection until either the peer's
// read or write pump exits, whichever happens first, then cleans up
// both.
func (reg *Registry) Serve(w http.ResponseWriter, r *http.Request, roomID string, role Role, rid string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		nlog.Warningf("signaling: upgrade failed for room %s: %v", roomID, err)
		return
	}

	peer, ok := reg.Join(roomID, role, rid)
	if !ok {
		frame, _ := jsoniter.Marshal(roomTakenFrame{Type: "error", Message: "room_taken"})
		_ = conn.WriteMessage(websocket.TextMessage, frame)
		_ = conn.Close()
		metrics.RoomTaken.Inc()
		return
	}
	defer reg.Leave(roomID, peer)
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return reg.readPump(gctx, conn, roomID, peer) })
	g.Go(func() error { return reg.writePump(gctx, conn, peer) })
	// First pump to exit cancels gctx; closing the socket here unblocks
	// the other pump's pending ReadMessage/WriteMessage so Wait returns.
	go func() {
		<-gctx.Done()
		conn.Close()
	}()
	if err := g.Wait(); err != nil {
		nlog.VInfof(5, "signaling: room %s %s closed: %v", roomID, peer.Role, err)
	}
}

// readPump forwards every inbound text frame to the opposite peer and
// ignores binary/control frames other than close.
func (reg *Registry) readPump(ctx context.Context, conn *websocket.Conn, roomID string, self *Peer) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msgType, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if opp := reg.Opposite(roomID, self); opp != nil {
			opp.Send(payload)
		}
	}
}

// writePump drains self's outbound sink onto the socket until the
// context is canceled by the read pump's exit (or vice versa).
func (reg *Registry) writePump(ctx context.Context, conn *websocket.Conn, self *Peer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload := <-self.Outbound():
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return err
			}
		}
	}
}
