// Package static serves the relay's minimal web UI: a small set of
// embedded HTML pages plus a CSS/JS asset pair. This UI is a stub, not
// a full client; it exists so a human can still drive
// upload/download/signaling without a purpose-built client.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package static

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed web/index.html web/upload.html web/download.html web/assets
var webFS embed.FS

// Handler returns the root-mounted fallback handler: "/", "/upload",
// "/download" serve their named page; anything else with exactly one
// path segment is treated as an access ID and shown the download page
// (a human pasting a link rather than an ID into the address bar);
// "/assets/*" is served by the standard library's extension-based MIME
// guessing (mime.TypeByExtension, invoked internally by http.FileServer).
func Handler() http.Handler {
	mux := http.NewServeMux()

	assets, err := fs.Sub(webFS, "web/assets")
	if err != nil {
		panic(err)
	}
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.FS(assets))))

	mux.HandleFunc("/", servePage)
	return mux
}

func servePage(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(r.URL.Path, "/")
	switch {
	case path == "":
		serveFile(w, "web/index.html")
	case path == "upload":
		serveFile(w, "web/upload.html")
	case path == "download":
		serveFile(w, "web/download.html")
	case !strings.Contains(path, "/"):
		// a bare "/{id}" page: point the user at the receive flow
		serveFile(w, "web/download.html")
	default:
		http.NotFound(w, r)
	}
}

func serveFile(w http.ResponseWriter, name string) {
	b, err := webFS.ReadFile(name)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}
