// Package signaling implements SignalingCore: per-room sender/receiver
// pairing over a bidirectional text channel, forwarding opaque
// signaling payloads and updating MetaRegistry claim state on receiver
// join/leave.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package signaling

import (
	"sync"
	"time"

	"github.com/fileflow/relay/internal/meta"
	"github.com/fileflow/relay/internal/metrics"
	"github.com/fileflow/relay/internal/nlog"
)

// Role identifies which slot a peer occupies in a Room.
type Role int

const (
	RoleSender Role = iota
	RoleReceiver
)

func (r Role) String() string {
	if r == RoleSender {
		return "sender"
	}
	return "receiver"
}

// outboundCap bounds each peer's outbound sink. An unbounded sink is
// the liveness-favoring default; a bounded, drop-oldest-on-full queue
// is an accepted alternative, and since signaling payloads here are
// small opaque JSON blobs, a generous bound is chosen to make drops
// practically unreachable while still keeping a hard ceiling on memory
// per stalled peer.
const outboundCap = 256

// Peer is one end of a Room slot: a connection identity used only to
// guard against unregister races, and an outbound FIFO a dedicated
// writer goroutine drains onto the socket.
type Peer struct {
	ConnID   uint64
	Role     Role
	RID      string
	outbound chan []byte
}

func newPeer(connID uint64, role Role, rid string) *Peer {
	return &Peer{ConnID: connID, Role: role, RID: rid, outbound: make(chan []byte, outboundCap)}
}

// Send enqueues a text frame, dropping the oldest queued frame if the
// peer's sink is full rather than blocking the forwarder.
func (p *Peer) Send(payload []byte) {
	select {
	case p.outbound <- payload:
	default:
		select {
		case <-p.outbound:
		default:
		}
		select {
		case p.outbound <- payload:
		default:
		}
	}
}

// Outbound exposes the channel for the connection's write pump.
func (p *Peer) Outbound() <-chan []byte { return p.outbound }

// Room holds at most one sender and one receiver peer. lastActive
// tracks the most recent join or forwarded frame; it feeds an
// observability gauge only and never drives expiry (rooms die when
// both slots empty, MetaInfo dies by TTL).
type Room struct {
	Sender     *Peer
	Receiver   *Peer
	lastActive time.Time
}

func (room *Room) empty() bool { return room.Sender == nil && room.Receiver == nil }

// Registry is the process-wide rooms map plus the monotonic connection
// ID counter used only for unregister-race identity.
type Registry struct {
	mu         sync.Mutex
	rooms      map[string]*Room
	nextConnID uint64
	meta       *meta.Registry
}

func NewRegistry(m *meta.Registry) *Registry {
	reg := &Registry{rooms: make(map[string]*Room), meta: m}
	metrics.RegisterRoomIdleAge(func() float64 {
		return reg.OldestRoomIdle().Seconds()
	})
	return reg
}

// OldestRoomIdle reports how long the least recently active room has
// been idle, zero when no rooms exist.
func (reg *Registry) OldestRoomIdle() time.Duration {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	var oldest time.Time
	for _, room := range reg.rooms {
		if oldest.IsZero() || room.lastActive.Before(oldest) {
			oldest = room.lastActive
		}
	}
	if oldest.IsZero() {
		return 0
	}
	return time.Since(oldest)
}

// Join attempts to register a peer into roomID's sender or receiver
// slot, creating the room lazily. It returns ok=false (slot already
// occupied) when the caller must send room_taken and close instead.
func (reg *Registry) Join(roomID string, role Role, rid string) (*Peer, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomID]
	if !ok {
		room = &Room{}
		reg.rooms[roomID] = room
	}

	reg.nextConnID++
	peer := newPeer(reg.nextConnID, role, rid)

	switch role {
	case RoleSender:
		if room.Sender != nil {
			return nil, false
		}
		room.Sender = peer
	case RoleReceiver:
		if room.Receiver != nil {
			return nil, false
		}
		room.Receiver = peer
	}
	room.lastActive = time.Now()
	metrics.RoomsActive.Set(float64(len(reg.rooms)))
	if role == RoleReceiver {
		reg.meta.SetReceiverState(roomID, true, rid)
	}
	return peer, true
}

// Opposite returns the other slot's peer in roomID, or nil if empty or
// the room doesn't exist. Called once per forwarded frame, so it also
// refreshes the room's activity timestamp.
func (reg *Registry) Opposite(roomID string, self *Peer) *Peer {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[roomID]
	if !ok {
		return nil
	}
	room.lastActive = time.Now()
	if self.Role == RoleSender {
		return room.Receiver
	}
	return room.Sender
}

// Leave unregisters self from roomID's slot, but only if the current
// occupant's ConnID still matches self, guarding against a race where a
// re-joined peer of the same role already replaced this one. If the
// room becomes empty afterward, it is deleted. On a receiver leaving,
// MetaRegistry's claim state is released unless the transfer is done.
func (reg *Registry) Leave(roomID string, self *Peer) {
	reg.mu.Lock()
	room, ok := reg.rooms[roomID]
	if !ok {
		reg.mu.Unlock()
		return
	}
	switch self.Role {
	case RoleSender:
		if room.Sender != nil && room.Sender.ConnID == self.ConnID {
			room.Sender = nil
		}
	case RoleReceiver:
		if room.Receiver != nil && room.Receiver.ConnID == self.ConnID {
			room.Receiver = nil
		}
	}
	empty := room.empty()
	if empty {
		delete(reg.rooms, roomID)
	}
	metrics.RoomsActive.Set(float64(len(reg.rooms)))
	reg.mu.Unlock()

	if self.Role == RoleReceiver {
		reg.meta.SetReceiverState(roomID, false, "")
	}
	nlog.VInfof(4, "signaling: %s left room %s (empty=%v)", self.Role, roomID, empty)
}
