// Run-ID generation on top of teris-io/shortid. Access IDs have their
// own generator (internal/idgen) pinned to a 5-char 0-9a-z alphabet;
// this one tags a process incarnation in the startup log title, where
// the alphabet is free to match shortid's default shape.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"time"

	"github.com/teris-io/shortid"
)

const runIDABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

var sid *shortid.Shortid

// InitShortID seeds the process-wide shortid worker; call once at
// startup before GenRunID.
func InitShortID(seed uint64) {
	sid = shortid.MustNew(4 /*worker*/, runIDABC, seed)
}

// GenRunID returns a short identifier for this process incarnation.
func GenRunID() string {
	if sid == nil {
		InitShortID(uint64(time.Now().UnixNano() & 0xffffffff))
	}
	return sid.MustGenerate()
}
