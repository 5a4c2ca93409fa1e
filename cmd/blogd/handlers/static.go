package handlers

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// SPAHandler serves files from root and answers unknown non-API paths with
// index.html so client-side routes resolve.
func SPAHandler(root fs.FS) http.Handler {
	files := http.FileServer(http.FS(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			writeErrorMessage(w, http.StatusNotFound, "Not found")
			return
		}

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" {
			name = "."
		}
		if _, err := fs.Stat(root, name); errors.Is(err, fs.ErrNotExist) {
			http.ServeFileFS(w, r, root, "index.html")
			return
		}
		files.ServeHTTP(w, r)
	})
}

// StaticDir opens dir for SPAHandler. It fails when dir has no index.html.
func StaticDir(dir string) (fs.FS, error) {
	root := os.DirFS(dir)
	if _, err := fs.Stat(root, "index.html"); err != nil {
		return nil, err
	}
	return root, nil
}
