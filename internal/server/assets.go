package server

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// staticHandler serves the embedded renderer. index.html is served at /.
func (s *Server) staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The embedded tree is fixed at build time.
		panic(err)
	}
	return http.FileServerFS(sub)
}
