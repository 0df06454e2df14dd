// Package audit is a best-effort, in-memory completion ledger layered
// on top of buntdb, separate from the authoritative KVStore in
// internal/kvstore. It is opened against ":memory:" since nothing in
// this relay's scope survives a restart; the ledger is operational
// visibility only, never consulted by TransferCore or SignalingCore.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package audit

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/tidwall/buntdb"

	"github.com/fileflow/relay/internal/nlog"
)

// entryTTL bounds how long a completed/evicted record lingers in the
// ledger; it has no bearing on MetaRegistry/BlockRegistry TTLs.
const entryTTL = 1 * time.Hour

type record struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileSize uint64 `json:"file_size"`
	Reason   string `json:"reason"` // "done" | "evicted"
	At       int64  `json:"at"`
}

// Ledger records transfer completions/evictions for operational
// visibility. All methods swallow their own errors after logging;
// background/ambient bookkeeping never surfaces to a request handler.
type Ledger struct {
	db *buntdb.DB
}

func Open() *Ledger {
	db, err := buntdb.Open(":memory:")
	if err != nil {
		// buntdb's in-memory backend cannot fail to open in practice;
		// degrade to a disabled ledger rather than take down the relay.
		nlog.Errorf("audit: failed to open in-memory ledger: %v", err)
		return &Ledger{}
	}
	return &Ledger{db: db}
}

func (l *Ledger) RecordDone(id, fileName string, fileSize uint64, now time.Time) {
	l.record(record{ID: id, FileName: fileName, FileSize: fileSize, Reason: "done", At: now.UnixNano()})
}

func (l *Ledger) RecordEvicted(id, fileName string, fileSize uint64, now time.Time) {
	l.record(record{ID: id, FileName: fileName, FileSize: fileSize, Reason: "evicted", At: now.UnixNano()})
}

func (l *Ledger) record(rec record) {
	if l.db == nil {
		return
	}
	buf, err := jsoniter.Marshal(rec)
	if err != nil {
		nlog.Errorf("audit: failed to marshal record for %s: %v", rec.ID, err)
		return
	}
	err = l.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(rec.ID+":"+rec.Reason, string(buf), &buntdb.SetOptions{Expires: true, TTL: entryTTL})
		return errors.Wrap(err, "set")
	})
	if err != nil {
		nlog.Errorf("audit: failed to record %s for %s: %v", rec.Reason, rec.ID, err)
	}
}

// Recent returns up to limit raw JSON records, newest key order is not
// guaranteed by buntdb's default b-tree iteration; callers needing
// ordering should sort on the embedded "at" field.
func (l *Ledger) Recent(limit int) []string {
	if l.db == nil || limit <= 0 {
		return nil
	}
	var out []string
	_ = l.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, value string) bool {
			out = append(out, value)
			return len(out) < limit
		})
	})
	return out
}

func (l *Ledger) Close() {
	if l.db == nil {
		return
	}
	if err := l.db.Close(); err != nil {
		nlog.Errorf("audit: error closing ledger: %v", err)
	}
}
