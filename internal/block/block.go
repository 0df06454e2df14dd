// Package block implements BlockRegistry: the logical KVStore table
// holding one FileBlock row per (access ID, byte offset) pair.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package block

import (
	"fmt"
	"time"

	"github.com/fileflow/relay/internal/kvstore"
)

// TTL is the fixed FileBlock lifetime: 60s, unmutated once stored.
const TTL = 60 * time.Second

// startWidth is the zero-padding width for the encoded start offset in
// a block key. Offsets of 10^12 or more are not padded further and
// print wider than this.
const startWidth = 12

// File is the FileBlock value type.
type File struct {
	Data     []byte
	Filename string
	Start    uint64
	End      uint64
	Total    uint64
}

// Registry wraps the generic KVStore with FileBlock semantics: keying,
// prefix-bounded admission counting, and at-most-once consumption via
// Remove.
type Registry struct {
	store *kvstore.Store[File]
}

func NewRegistry() *Registry {
	return &Registry{store: kvstore.New[File]("block")}
}

// Key builds "<id>:" + decimal(start) zero-padded to width 12, so
// lexicographic and numeric order agree for offsets below 10^12.
func Key(id string, start uint64) string {
	return fmt.Sprintf("%s:%0*d", id, startWidth, start)
}

// Prefix is the shared prefix of every block key for id, used by the
// admission count.
func Prefix(id string) string { return id + ":" }

// CountFor reports how many blocks currently exist for id, stopping
// early once limit is reached: the bounded-work admission scan.
func (r *Registry) CountFor(id string, limit int) int {
	return r.store.CountPrefix(Prefix(id), limit)
}

// Insert stores a block with a 60s TTL. At most one block exists per
// (id, start): a repeat upload before the first is consumed simply
// overwrites, matching plain KVStore.Insert semantics; nothing here
// requires upload idempotence checks beyond the per-key uniqueness the
// key scheme already provides.
func (r *Registry) Insert(id string, f File) {
	r.store.Insert(Key(id, f.Start), f, TTL)
}

// Get returns the block at (id, start) without consuming it.
func (r *Registry) Get(id string, start uint64) (File, bool) {
	e, ok := r.store.Get(Key(id, start))
	return e.Value, ok
}

// Remove consumes the block at (id, start): at-most-once delivery is
// enforced by this delete, since a second Remove of the same key finds
// nothing: a block is destroyed by consumption.
func (r *Registry) Remove(id string, start uint64) (File, bool) {
	e, ok := r.store.Remove(Key(id, start))
	return e.Value, ok
}
