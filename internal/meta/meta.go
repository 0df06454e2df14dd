// Package meta implements MetaRegistry: the logical KVStore table
// holding one MetaInfo row per access ID.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package meta

import (
	"time"

	"github.com/fileflow/relay/internal/cos"
	"github.com/fileflow/relay/internal/idgen"
	"github.com/fileflow/relay/internal/kvstore"
)

// TTL is the fixed MetaInfo lifetime: 24h, never extended by
// subsequent mutation.
const TTL = 24 * time.Hour

// maxIDCollisionRetries bounds issue_id's retry-on-collision loop; the
// 36^5 ≈ 60M ID space makes repeated collisions implausible, so a
// small bound is enough to catch a pathological run without looping
// forever.
const maxIDCollisionRetries = 16

// Info is the MetaInfo value type. Fields are set once at
// creation (FileName, FileSize, BlockSize) or mutated only through
// Registry methods that preserve the original TTL.
type Info struct {
	FileName  string
	FileSize  uint64
	BlockSize uint32
	IsUsing   bool
	UsedBy    string
	Done      bool
}

// Registry wraps the generic KVStore with MetaInfo semantics: ID
// issuance with collision retry, claim/release preserving TTL, and
// monotonic done marking.
type Registry struct {
	store *kvstore.Store[Info]
}

func NewRegistry() *Registry {
	return &Registry{store: kvstore.New[Info]("meta")}
}

// OnEvict forwards the sweeper's eviction notifications, giving the
// owner a hook to record transfers that timed out rather than
// completing. Install before serving traffic.
func (r *Registry) OnEvict(fn func(id string, info Info)) {
	r.store.OnEvict(fn)
}

// Issue generates a fresh ID and inserts MetaInfo with a 24h TTL,
// retrying on insert collision (required even though the original
// behavior left retry-on-collision implicit).
func (r *Registry) Issue(fileName string, fileSize uint64, blockSize uint32) (string, error) {
	for i := 0; i < maxIDCollisionRetries; i++ {
		id := idgen.Gen()
		info := Info{FileName: fileName, FileSize: fileSize, BlockSize: blockSize}
		if r.store.InsertIfAbsent(id, info, TTL) {
			return id, nil
		}
	}
	return "", cos.NewErrInternal(nil, "failed to allocate a unique access ID after %d attempts", maxIDCollisionRetries)
}

// Get returns the stored MetaInfo for id, or ok=false if missing or
// already swept; an expired row the sweeper has not yet reaped is
// still returned.
func (r *Registry) Get(id string) (Info, bool) {
	e, ok := r.store.Get(id)
	return e.Value, ok
}

// TryClaim performs one attempt of the claim transition: Open ->
// Claimed(rid), idempotent if already Claimed(rid), and refused
// (ErrConflict) if Claimed by a different rid. It reports whether the
// store mutation itself needs to be retried (update raced with
// eviction) via the bool return; callers are expected to loop.
func (r *Registry) TryClaim(id, rid string) (info Info, retry bool, err error) {
	e, ok := r.store.Get(id)
	if !ok {
		return Info{}, false, cos.NewErrNotFound("access id %q", id)
	}
	info = e.Value
	if info.IsUsing && info.UsedBy != "" && info.UsedBy != rid {
		return info, false, cos.NewErrConflict("file already in use")
	}
	if !info.IsUsing || info.UsedBy == "" || info.UsedBy != rid {
		info.IsUsing = true
		info.UsedBy = rid
		if !r.store.Update(id, info, e.Exp) {
			return info, true, nil
		}
	}
	return info, false, nil
}

// Verify re-reads MetaInfo and checks that rid still holds the claim.
func (r *Registry) Verify(id, rid string) (Info, error) {
	e, ok := r.store.Get(id)
	if !ok {
		return Info{}, cos.NewErrNotFound("access id %q", id)
	}
	if e.Value.UsedBy != rid {
		return e.Value, cos.NewErrConflict("wrong receive id")
	}
	return e.Value, nil
}

// SetReceiverState implements SignalingCore's mark_receiver_state:
// updates IsUsing/UsedBy preserving TTL, but only if the row exists, a
// no-op otherwise, since signaling rooms can outlive (or precede, in
// odd orderings) the transfer's own MetaInfo. When releasing
// (using=false) a Done row, the call is a no-op regardless, matching
// the "leave after done: no-op" transition.
func (r *Registry) SetReceiverState(id string, using bool, rid string) {
	e, ok := r.store.Get(id)
	if !ok {
		return
	}
	info := e.Value
	if !using && info.Done {
		return
	}
	info.IsUsing = using
	if using {
		info.UsedBy = rid
	} else {
		info.UsedBy = ""
	}
	r.store.Update(id, info, e.Exp)
}

// MarkDone sets Done=true, preserving TTL. Done is monotonic: once set
// it is never cleared by any path in this package.
func (r *Registry) MarkDone(id string) error {
	e, ok := r.store.Get(id)
	if !ok {
		return cos.NewErrNotFound("access id %q", id)
	}
	info := e.Value
	info.Done = true
	if !r.store.Update(id, info, e.Exp) {
		return cos.NewErrInternal(nil, "failed to mark %q done", id)
	}
	return nil
}
