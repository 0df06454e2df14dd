package httpcom_test

import (
	"reflect"
	"testing"

	"github.com/fileflow/relay/internal/httpcom"
)

func TestSplitPath(t *testing.T) {
	cases := []struct {
		path, prefix string
		want         []string
	}{
		{"/api/v1/abcde/status", "/api/v1", []string{"abcde", "status"}},
		{"/api/v1/id", "/api/v1", []string{"id"}},
		{"/api/v1/", "/api/v1", nil},
		{"/api/v1", "/api/v1", nil},
		{"/api/v1//abcde//status/", "/api/v1", []string{"abcde", "status"}},
	}
	for _, c := range cases {
		got := httpcom.SplitPath(c.path, c.prefix)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("SplitPath(%q, %q) = %v, want %v", c.path, c.prefix, got, c.want)
		}
	}
}
