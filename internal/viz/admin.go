package viz

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"tailscale.com/tsweb"

	"github.com/banshee-data/pointviz/internal/httputil"
)

// AttachAdminRoutes mounts scene diagnostics on the /debug/ page of mux.
func (v *Visualizer) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.KVFunc("Point clouds", func() any {
		v.mu.Lock()
		defer v.mu.Unlock()
		return v.clouds.Len()
	})
	debug.KVFunc("Shapes", func() any {
		v.mu.Lock()
		defer v.mu.Unlock()
		return v.shapes.Len()
	})

	debug.Handle("scene", "Live scene IDs as JSON", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w, http.MethodGet)
			return
		}
		httputil.WriteJSONOK(w, v.Snapshot())
	}))

	debug.Handle("scene.png", "Top-down plot of pane 1 (?pane=N for others)", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w, http.MethodGet)
			return
		}
		pane := 1
		if s := r.URL.Query().Get("pane"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > v.r.Viewports() {
				httputil.BadRequest(w, fmt.Sprintf("invalid pane %q", s))
				return
			}
			pane = n
		}

		var buf bytes.Buffer
		if err := v.PlotPane(&buf, pane); err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("failed to plot scene: %v", err))
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
}
