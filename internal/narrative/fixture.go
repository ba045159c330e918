package narrative

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/banshee-data/hydro.report/internal/httputil"
)

// FixtureHandler is a development stand-in for the proxy at SummaryPath.
// It answers with a canned summary that quotes the prompt's figures.
func FixtureHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w)
			return
		}
		var req Request
		if err := httputil.DecodeJSONBody(r, &req); err != nil || len(req.Contents) == 0 || len(req.Contents[0].Parts) == 0 {
			httputil.BadRequest(w, "Missing prompt")
			return
		}

		var facts []string
		for _, line := range strings.Split(req.Contents[0].Parts[0].Text, "\n") {
			if strings.HasPrefix(line, "Surface area:") || strings.HasPrefix(line, "Estimated capacity:") {
				facts = append(facts, strings.TrimSpace(line))
			}
		}
		text := "Fixture summary. " + strings.Join(facts, "; ") + "."
		if len(facts) == 0 {
			text = "Fixture summary."
		}
		httputil.WriteJSONOK(w, Response{Candidates: []Candidate{{
			Content: Content{Parts: []Part{{Text: fmt.Sprintf("%s Conditions are typical for the season.", text)}}},
		}}})
	})
}
