// Route wiring and multipart/query parsing for TransferCore and
// SignalingCore. This is the one package allowed to know about HTTP
// framing; transfer.Core and signaling.Registry stay
// framework-agnostic.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package httpcom

import (
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/fileflow/relay/internal/config"
	"github.com/fileflow/relay/internal/cos"
	"github.com/fileflow/relay/internal/metrics"
	"github.com/fileflow/relay/internal/nlog"
	"github.com/fileflow/relay/internal/signaling"
	"github.com/fileflow/relay/internal/transfer"
)

// Mux builds the relay's top-level http.Handler out of TransferCore,
// SignalingCore, and the static/webrtc stubs.
type Mux struct {
	core   *transfer.Core
	rooms  *signaling.Registry
	cfg    *config.Config
	static http.Handler
}

func NewMux(core *transfer.Core, rooms *signaling.Registry, cfg *config.Config, static http.Handler) *Mux {
	return &Mux{core: core, rooms: rooms, cfg: cfg, static: static}
}

// Handler assembles the ServeMux: the API surface nested under
// cfg's prefix, a 20s timeout on the transfer routes (id, status,
// upload, file, done), and the static fallback for everything else.
// The signaling upgrade (which must keep the ResponseWriter
// hijackable), /webrtc/config and the /debug endpoints run without
// that timeout.
func (m *Mux) Handler() http.Handler {
	mux := http.NewServeMux()

	prefix := config.APIPrefix
	timeout := time.Duration(config.RequestTimeout) * time.Second

	mux.Handle(prefix+"/signal/", http.HandlerFunc(m.handleSignal))
	mux.Handle(prefix+"/webrtc/", http.HandlerFunc(m.handleWebRTCConfig))
	mux.Handle("/debug/metrics", metrics.Handler())
	mux.Handle("/debug/audit", http.HandlerFunc(m.handleAuditRecent))
	mux.Handle(prefix+"/", http.TimeoutHandler(http.HandlerFunc(m.handleTransfer), timeout, `{"code":503,"success":false,"message":"request timed out"}`))

	if m.static != nil {
		mux.Handle("/", m.static)
	}
	return mux
}

func (m *Mux) handleTransfer(w http.ResponseWriter, r *http.Request) {
	items := SplitPath(r.URL.Path, config.APIPrefix)
	if len(items) == 1 && items[0] == "id" && r.Method == http.MethodGet {
		m.handleIssueID(w, r)
		return
	}
	if len(items) < 2 {
		WriteErr(w, cos.NewErrInvalidInput("invalid route %v", items))
		return
	}
	id, sub := items[0], items[1]
	switch {
	case sub == "status" && r.Method == http.MethodGet:
		m.handleStatus(w, r, id)
	case sub == "upload" && r.Method == http.MethodPost:
		m.handleUpload(w, r, id)
	case sub == "file" && r.Method == http.MethodGet:
		m.handleDownload(w, r, id)
	case sub == "done" && r.Method == http.MethodPut:
		m.handleDone(w, r, id)
	default:
		WriteErr(w, cos.NewErrInvalidInput("invalid route %v", items))
	}
}

func (m *Mux) handleIssueID(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fileName := q.Get("file_name")
	fileSizeStr := q.Get("file_size")
	fileSize, err := transfer.ParseUintParam(fileSizeStr)
	if err != nil {
		WriteErr(w, err)
		return
	}
	id, err := m.core.IssueID(fileName, fileSize)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IDsIssued.Inc()
	WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (m *Mux) handleStatus(w http.ResponseWriter, _ *http.Request, id string) {
	status, err := m.core.Status(id)
	if err != nil {
		WriteErr(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

func (m *Mux) handleUpload(w http.ResponseWriter, r *http.Request, id string) {
	info, data, err := readUploadBody(r, m.cfg.MaxBlockSize)
	if err != nil {
		WriteErr(w, err)
		return
	}
	if err := m.core.Upload(id, info, data); err != nil {
		WriteErr(w, err)
		return
	}
	metrics.BlocksUploaded.Inc()
	WriteJSON(w, http.StatusOK, nil)
}

// readUploadBody streams the exactly-two-part multipart body: "info"
// (JSON) followed by "file" (raw bytes), bounding the file read
// to maxBlockSize+1 so an oversized block is detected without buffering
// an unbounded amount of attacker-controlled data.
func readUploadBody(r *http.Request, maxBlockSize uint32) (transfer.UploadInfo, []byte, error) {
	var info transfer.UploadInfo
	_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return info, nil, cos.NewErrInvalidInput("bad multipart content type")
	}
	boundary, ok := params["boundary"]
	if !ok {
		return info, nil, cos.NewErrInvalidInput("missing multipart boundary")
	}
	mr := multipart.NewReader(r.Body, boundary)

	infoPart, err := mr.NextPart()
	if err != nil || infoPart.FormName() != "info" {
		return info, nil, cos.NewErrInvalidInput("expected multipart part \"info\" first")
	}
	if err := jsoniter.NewDecoder(infoPart).Decode(&info); err != nil {
		return info, nil, cos.NewErrInvalidInput("malformed info part: %v", err)
	}

	filePart, err := mr.NextPart()
	if err != nil || filePart.FormName() != "file" {
		return info, nil, cos.NewErrInvalidInput("expected multipart part \"file\" second")
	}
	data, err := io.ReadAll(io.LimitReader(filePart, int64(maxBlockSize)+1))
	if err != nil {
		return info, nil, cos.NewErrInvalidInput("failed to read file part: %v", err)
	}
	return info, data, nil
}

func (m *Mux) handleDownload(w http.ResponseWriter, r *http.Request, id string) {
	q := r.URL.Query()
	rid := q.Get("rid")
	startStr := q.Get("start")
	if rid == "" || startStr == "" {
		WriteErr(w, cos.NewErrInvalidInput("rid and start are required"))
		return
	}
	start, err := transfer.ParseUintParam(startStr)
	if err != nil {
		WriteErr(w, err)
		return
	}
	result, err := m.core.Download(id, rid, start)
	if err != nil {
		if cos.IsErrConflict(err) {
			metrics.ClaimsRejected.Inc()
		}
		WriteErr(w, err)
		return
	}
	hdr := w.Header()
	hdr.Set("Content-Name", result.Filename)
	hdr.Set("Content-Type", "application/octet-stream")
	hdr.Set("Content-Range", contentRange(result.Start, result.End, result.Total))
	w.WriteHeader(http.StatusPartialContent)
	if _, err := w.Write(result.Data); err != nil {
		nlog.Warningf("httpcom: failed writing download body for %s: %v", id, err)
	}
	m.core.Consume(id, start)
	metrics.BlocksDownloaded.Inc()
}

func contentRange(start, end, total uint64) string {
	return "bytes " + uitoa(start) + "-" + uitoa(end) + "/" + uitoa(total)
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

func (m *Mux) handleDone(w http.ResponseWriter, _ *http.Request, id string) {
	if err := m.core.Done(id); err != nil {
		WriteErr(w, err)
		return
	}
	metrics.TransfersDone.Inc()
	WriteJSON(w, http.StatusOK, nil)
}

// handleAuditRecent dumps the completion/eviction ledger's most recent
// records, raw as stored.
func (m *Mux) handleAuditRecent(w http.ResponseWriter, _ *http.Request) {
	raw := m.core.Ledger.Recent(100)
	records := make([]jsoniter.RawMessage, 0, len(raw))
	for _, r := range raw {
		records = append(records, jsoniter.RawMessage(r))
	}
	WriteJSON(w, http.StatusOK, records)
}

func (m *Mux) handleSignal(w http.ResponseWriter, r *http.Request) {
	items := SplitPath(r.URL.Path, config.APIPrefix)
	if len(items) != 2 {
		http.Error(w, "invalid signaling route", http.StatusBadRequest)
		return
	}
	roomID := items[1]
	q := r.URL.Query()
	roleStr := q.Get("role")
	var role signaling.Role
	switch roleStr {
	case "sender":
		role = signaling.RoleSender
	case "receiver":
		role = signaling.RoleReceiver
	default:
		http.Error(w, "role must be sender or receiver", http.StatusBadRequest)
		return
	}
	rid := q.Get("rid")
	if role == signaling.RoleReceiver && rid == "" {
		http.Error(w, "rid is required for role=receiver", http.StatusBadRequest)
		return
	}
	m.rooms.Serve(w, r, roomID, role, rid)
}

func (m *Mux) handleWebRTCConfig(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"iceServers": m.cfg.ICEServers})
}
