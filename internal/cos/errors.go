// Package cos provides small low-level helpers and the relay's error
// taxonomy: typed error structs with Is* predicates rather than
// sentinel errors.New values, so call sites can carry structured
// detail (HTTP status, message).
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
)

type (
	// ErrNotFound covers a missing access ID or a not-yet-uploaded block.
	ErrNotFound struct{ what string }

	// ErrConflict is returned when a second receiver attempts to claim
	// an ID another receiver already holds.
	ErrConflict struct{ what string }

	// ErrInvalidInput covers malformed query params, multipart bodies,
	// and out-of-range block/file sizes.
	ErrInvalidInput struct{ what string }

	// ErrTransient means the caller should retry, e.g. a block that
	// hasn't been uploaded yet after the in-request retry window.
	ErrTransient struct{ what string }

	// ErrInternal wraps lock/update/insert failures surviving retries.
	ErrInternal struct {
		what string
		Err  error
	}

	// Errs collects up to maxErrs distinct errors.
	Errs struct {
		mu   sync.Mutex
		errs []error
	}
)

const maxErrs = 4

func NewErrNotFound(format string, a ...any) *ErrNotFound { return &ErrNotFound{fmt.Sprintf(format, a...)} }
func (e *ErrNotFound) Error() string                      { return e.what + " does not exist" }

func NewErrConflict(format string, a ...any) *ErrConflict { return &ErrConflict{fmt.Sprintf(format, a...)} }
func (e *ErrConflict) Error() string                      { return e.what }

func NewErrInvalidInput(format string, a ...any) *ErrInvalidInput {
	return &ErrInvalidInput{fmt.Sprintf(format, a...)}
}
func (e *ErrInvalidInput) Error() string { return e.what }

func NewErrTransient(format string, a ...any) *ErrTransient { return &ErrTransient{fmt.Sprintf(format, a...)} }
func (e *ErrTransient) Error() string                       { return e.what }

func NewErrInternal(err error, format string, a ...any) *ErrInternal {
	return &ErrInternal{what: fmt.Sprintf(format, a...), Err: err}
}
func (e *ErrInternal) Error() string {
	if e.Err == nil {
		return e.what
	}
	return e.what + ": " + e.Err.Error()
}
func (e *ErrInternal) Unwrap() error { return e.Err }

func IsErrNotFound(err error) bool {
	var e *ErrNotFound
	return errors.As(err, &e)
}

func IsErrConflict(err error) bool {
	var e *ErrConflict
	return errors.As(err, &e)
}

func IsErrInvalidInput(err error) bool {
	var e *ErrInvalidInput
	return errors.As(err, &e)
}

func IsErrTransient(err error) bool {
	var e *ErrTransient
	return errors.As(err, &e)
}

// HTTPStatus maps the error taxonomy onto HTTP status codes:
// NotFound->404, Conflict->400, InvalidInput->400, Transient->425
// ("too early", reused for retry-later semantics), Internal->500.
func HTTPStatus(err error) int {
	switch {
	case IsErrNotFound(err):
		return http.StatusNotFound
	case IsErrConflict(err), IsErrInvalidInput(err):
		return http.StatusBadRequest
	case IsErrTransient(err):
		return http.StatusTooEarly
	default:
		return http.StatusInternalServerError
	}
}

// Add appends err unless an equal-message error is already present or
// the collector is full.
func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, added := range e.errs {
		if added.Error() == err.Error() {
			return
		}
	}
	if len(e.errs) < maxErrs {
		e.errs = append(e.errs, err)
	}
}

func (e *Errs) Cnt() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errs)
}

func (e *Errs) JoinErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.errs) == 0 {
		return nil
	}
	return errors.Join(e.errs...)
}
