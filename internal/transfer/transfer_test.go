package transfer_test

import (
	"testing"

	"github.com/fileflow/relay/internal/audit"
	"github.com/fileflow/relay/internal/block"
	"github.com/fileflow/relay/internal/config"
	"github.com/fileflow/relay/internal/cos"
	"github.com/fileflow/relay/internal/meta"
	"github.com/fileflow/relay/internal/transfer"
)

func newCore(t *testing.T) *transfer.Core {
	t.Helper()
	cfg := &config.Config{MaxBlockSize: 16, MaxBlocksPerFile: 4}
	return transfer.New(meta.NewRegistry(), block.NewRegistry(), cfg, audit.Open())
}

func TestIssueIDRejectsOversizedFile(t *testing.T) {
	c := newCore(t)
	if _, err := c.IssueID("f", 1000); !cos.IsErrInvalidInput(err) {
		t.Fatalf("expected ErrInvalidInput for an oversized file, got %v", err)
	}
}

func TestUploadValidatesRangeAndSize(t *testing.T) {
	c := newCore(t)
	id, err := c.IssueID("f.bin", 32)
	if err != nil {
		t.Fatalf("unexpected issue error: %v", err)
	}

	// End before Start
	err = c.Upload(id, transfer.UploadInfo{Filename: "f.bin", Start: 5, End: 2, Total: 32}, []byte("x"))
	if !cos.IsErrInvalidInput(err) {
		t.Fatalf("expected ErrInvalidInput for inverted range, got %v", err)
	}

	// data length mismatch
	err = c.Upload(id, transfer.UploadInfo{Filename: "f.bin", Start: 0, End: 15, Total: 32}, []byte("short"))
	if !cos.IsErrInvalidInput(err) {
		t.Fatalf("expected ErrInvalidInput for size mismatch, got %v", err)
	}

	// valid upload
	data := make([]byte, 16)
	err = c.Upload(id, transfer.UploadInfo{Filename: "f.bin", Start: 0, End: 15, Total: 32}, data)
	if err != nil {
		t.Fatalf("unexpected error on valid upload: %v", err)
	}
}

func TestUploadRejectsUnknownID(t *testing.T) {
	c := newCore(t)
	err := c.Upload("zzzzz", transfer.UploadInfo{Start: 0, End: 0, Total: 1}, []byte("x"))
	if !cos.IsErrNotFound(err) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}

func TestUploadEnforcesBlockCountCap(t *testing.T) {
	c := newCore(t)
	id, _ := c.IssueID("f.bin", 64)
	for i := 0; i < 4; i++ {
		info := transfer.UploadInfo{Filename: "f.bin", Start: uint64(i * 16), End: uint64(i*16 + 15), Total: 64}
		if err := c.Upload(id, info, make([]byte, 16)); err != nil {
			t.Fatalf("unexpected error on block %d: %v", i, err)
		}
	}
	// a 5th block with an otherwise valid range must hit the cap
	info := transfer.UploadInfo{Filename: "f.bin", Start: 1, End: 1, Total: 64}
	if err := c.Upload(id, info, make([]byte, 1)); !cos.IsErrInvalidInput(err) {
		t.Fatalf("expected the 5th block to be rejected by the per-file cap, got %v", err)
	}
}

func TestIssueIDRateLimited(t *testing.T) {
	c := newCore(t)
	var limited bool
	for i := 0; i < 300; i++ {
		if _, err := c.IssueID("f", 1); cos.IsErrTransient(err) {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("expected issuance to hit the rate limit within 300 back-to-back calls")
	}
}

func TestDownloadUnknownIDFails(t *testing.T) {
	c := newCore(t)
	if _, err := c.Download("nope1", "rid", 0); !cos.IsErrNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStatusReflectsDone(t *testing.T) {
	c := newCore(t)
	id, _ := c.IssueID("f.bin", 16)
	if err := c.Done(id); err != nil {
		t.Fatalf("unexpected error marking done: %v", err)
	}
	status, err := c.Status(id)
	if err != nil {
		t.Fatalf("unexpected status error: %v", err)
	}
	if !status.Done {
		t.Fatalf("expected status to reflect Done=true")
	}
}

func TestParseUintParam(t *testing.T) {
	if _, err := transfer.ParseUintParam("not-a-number"); !cos.IsErrInvalidInput(err) {
		t.Fatalf("expected ErrInvalidInput for malformed input, got %v", err)
	}
	v, err := transfer.ParseUintParam("42")
	if err != nil || v != 42 {
		t.Fatalf("expected 42, got %d err=%v", v, err)
	}
}
