package scan

import (
	"fmt"
	"net/http"
	"text/tabwriter"
	"time"

	"tailscale.com/tsweb"

	"github.com/banshee-data/hydro.report/internal/httputil"
)

// AttachAdminRoutes registers the session history under /debug/ on mux.
func (c *Controller) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.HandleFunc("scans", "Recent scan sessions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		snap := c.State()
		fmt.Fprintf(w, "scanning: %v\n\n", snap.Scanning)

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tPOINT\tSTATUS\tSTARTED\tDURATION\tERROR")
		for _, s := range snap.History {
			status := string(s.Status)
			if s.Superseded {
				status += " (superseded)"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				s.ID, s.Point, status, s.StartedAt.Format(time.RFC3339), s.Duration().Round(time.Millisecond), s.Error)
		}
		tw.Flush()
	})

	debug.HandleSilentFunc("scans.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w)
			return
		}
		httputil.WriteJSONOK(w, c.State().History)
	})
}
