// Package idgen produces short access IDs for TransferCore. Quality
// requirement is uniformity over the alphabet, not cryptographic
// strength: collisions are expected and handled by the caller retrying
// the KVStore insert.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package idgen

import (
	"sync"
	"time"
)

const (
	alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	idLen    = 5

	// 64-bit LCG constants (Knuth's MMIX).
	lcgMul = 6364136223846793005
	lcgInc = 1442695040888963407
)

var (
	mu    sync.Mutex
	state uint64
)

func init() {
	state = uint64(time.Now().UnixNano())
}

func next() uint64 {
	mu.Lock()
	state = state*lcgMul + lcgInc
	v := state
	mu.Unlock()
	return v
}

// Gen returns a 5-character string over 0-9a-z. Each position consumes
// one LCG step and takes the high bits modulo the alphabet length,
// since an LCG's low bits are the least uniform.
func Gen() string {
	b := make([]byte, idLen)
	for i := range b {
		v := next()
		b[i] = alphabet[(v>>33)%uint64(len(alphabet))]
	}
	return string(b)
}
