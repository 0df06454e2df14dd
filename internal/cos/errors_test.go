package cos_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/fileflow/relay/internal/cos"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{cos.NewErrNotFound("x"), http.StatusNotFound},
		{cos.NewErrConflict("x"), http.StatusBadRequest},
		{cos.NewErrInvalidInput("x"), http.StatusBadRequest},
		{cos.NewErrTransient("x"), http.StatusTooEarly},
		{cos.NewErrInternal(errors.New("boom"), "x"), http.StatusInternalServerError},
		{errors.New("untyped"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := cos.HTTPStatus(c.err); got != c.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", c.err, got, c.want)
		}
	}
}

func TestErrsDeduplicatesAndCaps(t *testing.T) {
	var e cos.Errs
	for i := 0; i < 10; i++ {
		e.Add(errors.New("same"))
	}
	if e.Cnt() != 1 {
		t.Fatalf("expected duplicate messages to collapse to 1, got %d", e.Cnt())
	}
	e.Add(errors.New("distinct"))
	e.Add(errors.New("a"))
	e.Add(errors.New("b"))
	e.Add(errors.New("c"))
	if e.Cnt() != 4 {
		t.Fatalf("expected count to cap at maxErrs(4), got %d", e.Cnt())
	}
}
