package httpcom

import "strings"

// SplitPath splits r.URL.Path on '/', dropping the configured prefix
// (e.g. "/api/v1"). Empty segments (leading/trailing/double slashes)
// are dropped.
func SplitPath(path, prefix string) []string {
	p := strings.TrimPrefix(path, prefix)
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
