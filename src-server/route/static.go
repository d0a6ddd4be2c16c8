package route

import (
	"bytes"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"time"

	"eventboard/src-server/utils"
)

//go:embed static
var embeddedStatic embed.FS

// served as the modification time of every embedded asset
var staticModTime = time.Now()

func Static(muxer *http.ServeMux, as *utils.AppState) {
	files, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		slog.Error("can't open embedded static files", "error", err)
		return
	}

	muxer.HandleFunc("GET /static/{filepath...}", func(w http.ResponseWriter, r *http.Request) {
		filepath := path.Clean(r.PathValue("filepath"))
		content, err := fs.ReadFile(files, filepath)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("ETag", `"`+utils.GetContentHash(content)+`"`)
		http.ServeContent(w, r, path.Base(filepath), staticModTime, bytes.NewReader(content))
	})
}

// staticURL appends a content hash to the asset URL so browsers refetch it
// after a deploy.
func staticURL(name string) string {
	content, err := embeddedStatic.ReadFile("static/" + name)
	if err != nil {
		slog.Warn("unknown static asset", "name", name)
		return "/static/" + name
	}
	return "/static/" + name + "?v=" + utils.GetContentHash(content)
}
