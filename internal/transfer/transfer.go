// Package transfer implements TransferCore: the HTTP-facing state
// machine for issuing access IDs, reporting status, accepting upload
// blocks, serving download blocks, and marking a transfer done.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package transfer

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/fileflow/relay/internal/audit"
	"github.com/fileflow/relay/internal/block"
	"github.com/fileflow/relay/internal/config"
	"github.com/fileflow/relay/internal/cos"
	"github.com/fileflow/relay/internal/meta"
	"github.com/fileflow/relay/internal/nlog"
)

// Claim-retry and block-fetch-retry bounds: both stay strictly below
// the 20s request-layer timeout.
const (
	claimRetries  = 5
	claimBackoff  = 100 * time.Millisecond
	claimSettle   = 250 * time.Millisecond
	fetchRetries  = 60
	fetchBackoff  = 250 * time.Millisecond
)

// ID issuance consumes a 24h slot in the 36^5 ID space per call and
// runs behind a process-wide token bucket.
const (
	issueRate  = rate.Limit(50)
	issueBurst = 100
)

// Core wires MetaRegistry and BlockRegistry behind TransferCore's
// named operations. It holds no HTTP-specific state; internal/httpcom's
// handlers adapt net/http.Request/ResponseWriter onto these methods.
type Core struct {
	Meta    *meta.Registry
	Blocks  *block.Registry
	Cfg     *config.Config
	Ledger  *audit.Ledger
	limiter *rate.Limiter
}

func New(m *meta.Registry, b *block.Registry, cfg *config.Config, ledger *audit.Ledger) *Core {
	return &Core{Meta: m, Blocks: b, Cfg: cfg, Ledger: ledger, limiter: rate.NewLimiter(issueRate, issueBurst)}
}

// StatusView is the wire shape for get_status.
type StatusView struct {
	FileName string `json:"file_name"`
	FileSize uint64 `json:"file_size"`
	IsUsing  bool   `json:"is_using"`
	Done     bool   `json:"done"`
}

// IssueID allocates a fresh access ID for a file of the given name and
// size, rejecting anything over the configured total-size cap.
func (c *Core) IssueID(fileName string, fileSize uint64) (string, error) {
	if !c.limiter.Allow() {
		return "", cos.NewErrTransient("id issuance rate limit reached, retry shortly")
	}
	if fileSize > c.Cfg.MaxTotalSize() {
		return "", cos.NewErrInvalidInput("file exceeds maximum allowed size")
	}
	id, err := c.Meta.Issue(fileName, fileSize, c.Cfg.MaxBlockSize)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Status reports the current MetaInfo view for an access ID.
func (c *Core) Status(id string) (StatusView, error) {
	info, ok := c.Meta.Get(id)
	if !ok {
		return StatusView{}, cos.NewErrNotFound("access id %q", id)
	}
	return StatusView{FileName: info.FileName, FileSize: info.FileSize, IsUsing: info.IsUsing, Done: info.Done}, nil
}

// UploadInfo is the JSON shape of the "info" multipart part.
type UploadInfo struct {
	Filename string `json:"filename"`
	Start    uint64 `json:"start"`
	End      uint64 `json:"end"`
	Total    uint64 `json:"total"`
}

// Upload validates a block's preconditions and inserts it. data is the
// already-read "file" part body; the caller (httpcom handler) owns
// streaming and the max-block-size-plus-one bound on the read.
func (c *Core) Upload(id string, info UploadInfo, data []byte) error {
	if _, ok := c.Meta.Get(id); !ok {
		return cos.NewErrNotFound("access id %q", id)
	}
	if info.End < info.Start || info.Total == 0 || info.Start >= info.Total {
		return cos.NewErrInvalidInput("invalid file range")
	}
	if info.Total > c.Cfg.MaxTotalSize() {
		return cos.NewErrInvalidInput("file exceeds maximum allowed size")
	}
	if uint64(len(data)) > uint64(c.Cfg.MaxBlockSize) {
		return cos.NewErrInvalidInput("block size exceeds maximum limitation")
	}
	if uint64(len(data)) != info.End-info.Start+1 {
		return cos.NewErrInvalidInput("block size mismatch")
	}
	// The count's read lock is released before the insert below; racing
	// uploaders may transiently exceed the cap by their own number.
	if c.Blocks.CountFor(id, int(c.Cfg.MaxBlocksPerFile)) >= int(c.Cfg.MaxBlocksPerFile) {
		return cos.NewErrInvalidInput("maximum number of blocks per file reached")
	}
	c.Blocks.Insert(id, block.File{
		Data:     data,
		Filename: info.Filename,
		Start:    info.Start,
		End:      info.End,
		Total:    info.Total,
	})
	return nil
}

// DownloadResult carries everything an HTTP handler needs to write a
// download response.
type DownloadResult struct {
	Data     []byte
	Filename string
	Start    uint64
	End      uint64
	Total    uint64
}

// Download runs the full receive path: claim (only when start==0),
// verify (every call), fetch-with-retry, then hands back the block for
// delivery. The caller schedules the detached removal after writing
// the response body (Consume).
func (c *Core) Download(id, rid string, start uint64) (DownloadResult, error) {
	if start == 0 {
		if err := c.claim(id, rid); err != nil {
			return DownloadResult{}, err
		}
		time.Sleep(claimSettle)
	}
	if _, err := c.Meta.Verify(id, rid); err != nil {
		return DownloadResult{}, err
	}
	f, err := c.fetch(id, start)
	if err != nil {
		return DownloadResult{}, err
	}
	if f.Start > start {
		// Dead under the invariant that blocks are keyed by their own
		// start; kept as a defensive guard.
		return DownloadResult{}, cos.NewErrInvalidInput("wrong start position")
	}
	return DownloadResult{Data: f.Data, Filename: f.Filename, Start: f.Start, End: f.End, Total: f.Total}, nil
}

// Consume removes the delivered block in a detached goroutine; the
// caller must not block the HTTP response on this.
func (c *Core) Consume(id string, start uint64) {
	go func() {
		c.Blocks.Remove(id, start)
	}()
}

func (c *Core) claim(id, rid string) error {
	for i := 0; i < claimRetries; i++ {
		_, retry, err := c.Meta.TryClaim(id, rid)
		if err != nil {
			return err
		}
		if !retry {
			return nil
		}
		time.Sleep(claimBackoff)
	}
	return cos.NewErrInternal(errors.New("meta update kept racing eviction"),
		"failed to record claim for %q after %d attempts", id, claimRetries)
}

func (c *Core) fetch(id string, start uint64) (block.File, error) {
	for i := 0; i < fetchRetries; i++ {
		if f, ok := c.Blocks.Get(id, start); ok {
			return f, nil
		}
		time.Sleep(fetchBackoff)
	}
	return block.File{}, cos.NewErrTransient("block not ready")
}

// Done marks a transfer complete and records it in the ledger. It does
// not check whether any blocks remain undelivered.
func (c *Core) Done(id string) error {
	info, ok := c.Meta.Get(id)
	if !ok {
		return cos.NewErrNotFound("access id %q", id)
	}
	if err := c.Meta.MarkDone(id); err != nil {
		return err
	}
	if c.Ledger != nil {
		go c.Ledger.RecordDone(id, info.FileName, info.FileSize, time.Now())
	}
	return nil
}

// ParseUintParam is a small shared helper for query-parameter parsing
// shared by the HTTP handlers (start=, file_size=).
func ParseUintParam(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		nlog.VInfof(5, "transfer: failed to parse uint param %q: %v", s, err)
		return 0, cos.NewErrInvalidInput("invalid numeric parameter %q", s)
	}
	return v, nil
}
