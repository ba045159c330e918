package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/banshee-data/hydro.report/internal/charts"
	"github.com/banshee-data/hydro.report/internal/geo"
	"github.com/banshee-data/hydro.report/internal/httputil"
	"github.com/banshee-data/hydro.report/internal/layers"
	"github.com/banshee-data/hydro.report/internal/narrative"
	"github.com/banshee-data/hydro.report/internal/scan"
	"github.com/banshee-data/hydro.report/internal/version"
	"github.com/banshee-data/hydro.report/internal/water"
)

type indexData struct {
	View        View
	Version     string
	BaseURL     string
	VolumeUnits string
	AreaUnits   string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := indexData{
		View:        s.state.View(),
		Version:     version.Get().String(),
		BaseURL:     s.baseURL,
		VolumeUnits: s.volumeUnits,
		AreaUnits:   s.areaUnits,
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logf("failed to render index: %v", err)
		http.Error(w, "Failed to render template", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.Copy(w, &buf)
}

type stateResponse struct {
	View
	Scan scan.Snapshot `json:"scan"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, stateResponse{View: s.state.View(), Scan: s.ctrl.State()})
}

// scanRequest is a map click ({lat, lng}) or a drawn shape ({polygon}).
type scanRequest struct {
	Lat     *float64        `json:"lat"`
	Lng     *float64        `json:"lng"`
	Polygon json.RawMessage `json:"polygon"`
}

func (req scanRequest) point() (water.Point, error) {
	if len(req.Polygon) > 0 && string(req.Polygon) != "null" {
		return geo.PointFromGeoJSON(req.Polygon)
	}
	if req.Lat == nil || req.Lng == nil {
		return water.Point{}, errMissingCoordinates
	}
	return water.Point{Lat: *req.Lat, Lng: *req.Lng}, nil
}

var errMissingCoordinates = errors.New("Missing coordinates")

func (s *Server) handleBeginScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := httputil.DecodeJSONBody(r, &req); err != nil {
		if errors.Is(err, io.EOF) {
			httputil.BadRequest(w, errMissingCoordinates.Error())
			return
		}
		httputil.BadRequest(w, "Invalid JSON body")
		return
	}
	p, err := req.point()
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	id, err := s.ctrl.BeginScan(s.scanCtx, p)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]interface{}{
		"session_id": id,
		"point":      p,
	})
}

func (s *Server) handleCancelScan(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]bool{"cancelled": s.ctrl.CancelScan()})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.ctrl.Session(scan.SessionID(r.PathValue("id")))
	if !ok {
		httputil.NotFound(w, "unknown scan session")
		return
	}
	httputil.WriteJSONOK(w, sess)
}

func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, s.state.View().Layers)
}

func (s *Server) handleSetLayer(w http.ResponseWriter, r *http.Request) {
	key, ok := water.ParseLayerKey(r.PathValue("key"))
	if !ok {
		httputil.NotFound(w, "unknown layer "+r.PathValue("key"))
		return
	}

	var body struct {
		On *bool `json:"on"`
	}
	if err := httputil.DecodeJSONBody(r, &body); err != nil && !errors.Is(err, io.EOF) {
		httputil.BadRequest(w, "Invalid JSON body")
		return
	}

	var err error
	if body.On != nil {
		err = s.ctrl.SetLayer(key, *body.On)
	} else {
		_, err = s.ctrl.ToggleLayer(key)
	}
	var noToggle *layers.ErrNoToggle
	switch {
	case errors.As(err, &noToggle), errors.Is(err, scan.ErrNoResult):
		httputil.NotFound(w, err.Error())
		return
	case err != nil:
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, s.state.View().Layers)
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	d, ok := s.state.Charts()
	if !ok {
		httputil.NotFound(w, "no analysis result")
		return
	}
	var buf bytes.Buffer
	if err := charts.RenderHTML(&buf, d); err != nil {
		logf("failed to render charts: %v", err)
		httputil.InternalServerError(w, "failed to render charts")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.Copy(w, &buf)
}

func (s *Server) handleSeasonalPNG(w http.ResponseWriter, r *http.Request) {
	d, ok := s.state.Charts()
	if !ok {
		httputil.NotFound(w, "no analysis result")
		return
	}
	var buf bytes.Buffer
	if err := charts.RenderPNG(&buf, d); err != nil {
		logf("failed to render seasonal chart: %v", err)
		httputil.InternalServerError(w, "failed to render chart")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	io.Copy(w, &buf)
}

// handleSummary generates a narrative summary. Failures only notify and
// release the busy flag; scan state is never touched.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if s.narrative == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "summaries are disabled")
		return
	}
	in, err := narrative.Gate(s.ctrl.Result())
	if err != nil {
		httputil.WriteJSONError(w, http.StatusConflict, err.Error())
		return
	}
	if !s.state.beginSummary() {
		httputil.WriteJSONError(w, http.StatusConflict, "summary already in progress")
		return
	}
	defer s.state.endSummary()

	rep, err := s.narrative.Summarize(r.Context(), in, s.clock.Now())
	switch {
	case errors.Is(err, narrative.ErrNoCandidate):
		s.state.Notify(scan.Notification{Level: scan.LevelError, Message: narrative.NoSummaryText})
	case err != nil:
		logf("summary failed: %v", err)
		s.state.Notify(scan.Notification{Level: scan.LevelError, Message: "Summary failed: " + err.Error()})
		httputil.BadGateway(w, err.Error())
		return
	default:
		s.state.Notify(scan.Notification{Level: scan.LevelSuccess, Message: "Summary ready"})
	}

	s.mu.Lock()
	s.report = rep
	s.mu.Unlock()
	httputil.WriteJSONOK(w, rep)
}

func (s *Server) handleSummaryMarkdown(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rep := s.report
	s.mu.Unlock()
	if rep == nil {
		httputil.NotFound(w, "no summary generated")
		return
	}
	var buf bytes.Buffer
	if err := narrative.RenderMarkdown(&buf, rep); err != nil {
		httputil.InternalServerError(w, "failed to render summary")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.Copy(w, &buf)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, version.Get())
}
