// Package httpcom holds the wire-format conventions shared by
// TransferCore and SignalingCore's HTTP surface: the JSON response
// envelope and the path-items dispatch helpers.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package httpcom

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/fileflow/relay/internal/cos"
	"github.com/fileflow/relay/internal/nlog"
)

// Envelope is the uniform JSON response shape: code always mirrors
// the HTTP status, success is code < 400, message/data are populated
// as needed by the specific handler.
type Envelope struct {
	Code    int    `json:"code"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := Envelope{Code: status, Success: status < 400, Data: data}
	if err := jsoniter.NewEncoder(w).Encode(env); err != nil {
		nlog.Errorf("httpcom: failed to encode response: %v", err)
	}
}

// WriteErr maps err onto its taxonomy-defined status and writes the
// envelope with a message instead of data.
func WriteErr(w http.ResponseWriter, err error) {
	status := cos.HTTPStatus(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	env := Envelope{Code: status, Success: false, Message: err.Error()}
	if encErr := jsoniter.NewEncoder(w).Encode(env); encErr != nil {
		nlog.Errorf("httpcom: failed to encode error response: %v", encErr)
	}
}
