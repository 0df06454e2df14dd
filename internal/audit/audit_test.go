package audit_test

import (
	"strings"
	"testing"
	"time"

	"github.com/fileflow/relay/internal/audit"
)

func TestRecordDoneShowsUpInRecent(t *testing.T) {
	l := audit.Open()
	defer l.Close()

	l.RecordDone("abcde", "f.bin", 10, time.Now())
	l.RecordEvicted("fghij", "g.bin", 20, time.Now())

	recs := l.Recent(10)
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	joined := strings.Join(recs, "\n")
	for _, want := range []string{`"reason":"done"`, `"reason":"evicted"`, `"id":"abcde"`} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected records to contain %s, got %s", want, joined)
		}
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	l := audit.Open()
	defer l.Close()
	for _, id := range []string{"a", "b", "c"} {
		l.RecordDone(id, "f", 1, time.Now())
	}
	if got := len(l.Recent(2)); got != 2 {
		t.Fatalf("expected limit to cap results at 2, got %d", got)
	}
}
