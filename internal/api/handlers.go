package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/callviz/pkg/buildinfo"
	"github.com/matzehuels/callviz/pkg/callgraph"
	"github.com/matzehuels/callviz/pkg/errors"
	"github.com/matzehuels/callviz/pkg/io"
	"github.com/matzehuels/callviz/pkg/pipeline"
)

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
}

// exportRequest is the body of POST /v1/export. Coverage values that are
// not numbers are skipped. Ranking is either a JSON object or a string in
// the "signature | score" line format.
type exportRequest struct {
	Graph            string          `json:"graph"`
	NodeCoverage     json.RawMessage `json:"node_coverage,omitempty"`
	EdgeCoverage     json.RawMessage `json:"edge_coverage,omitempty"`
	Ranking          json.RawMessage `json:"ranking,omitempty"`
	CoveredColor     string          `json:"covered_color,omitempty"`
	ConstructorLabel *string         `json:"constructor_label,omitempty"`
}

type simplifyRequest struct {
	Signatures       []string `json:"signatures"`
	ConstructorLabel string   `json:"constructor_label,omitempty"`
}

type simplifyResponse struct {
	Labels map[string]string `json:"labels"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Graph == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "graph is required"))
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatDOT
	}

	in := pipeline.Input{Raw: req.Graph}
	var err error
	if in.NodeCoverage, err = decodeCoverage("node_coverage", req.NodeCoverage); err != nil {
		s.writeError(w, err)
		return
	}
	if in.EdgeCoverage, err = decodeCoverage("edge_coverage", req.EdgeCoverage); err != nil {
		s.writeError(w, err)
		return
	}
	if in.Ranking, err = decodeRanking(req.Ranking); err != nil {
		s.writeError(w, err)
		return
	}

	opts := s.defaults
	opts.Formats = []string{format}
	if req.CoveredColor != "" {
		opts.CoveredColor = req.CoveredColor
	}
	if req.ConstructorLabel != nil {
		opts.ConstructorLabel = *req.ConstructorLabel
	}
	if r.URL.Query().Get("refresh") == "true" {
		opts.Refresh = true
	}

	result, err := s.runner.Execute(r.Context(), in, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", contentTypes[format])
	h.Set("X-Callviz-Nodes", strconv.Itoa(result.Stats.NodeCount))
	h.Set("X-Callviz-Edges", strconv.Itoa(result.Stats.EdgeCount))
	h.Set("X-Callviz-Clusters", strconv.Itoa(result.Stats.ClusterCount))
	if format != pipeline.FormatDOT {
		h.Set("X-Callviz-Cache", cacheStatus(result.CacheHits[format]))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleSimplify(w http.ResponseWriter, r *http.Request) {
	var req simplifyRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := errors.ValidateLabel(req.ConstructorLabel); err != nil {
		s.writeError(w, err)
		return
	}

	labels := make(map[string]string, len(req.Signatures))
	for _, sig := range req.Signatures {
		labels[sig] = callgraph.ShortLabel(sig, req.ConstructorLabel)
	}
	writeJSON(w, http.StatusOK, simplifyResponse{Labels: labels})
}

// decodeBody decodes a size-limited JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}

func decodeCoverage(field string, raw json.RawMessage) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	m, err := io.ReadCoverage(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s must be an object of scores", field)
	}
	return m, nil
}

func decodeRanking(raw json.RawMessage) (map[string]float64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var lines string
	if err := json.Unmarshal(raw, &lines); err == nil {
		return io.ReadRanking(bytes.NewReader([]byte(lines)))
	}
	m, err := io.ReadRanking(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "ranking must be an object or a string")
	}
	return m, nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Error: errorDetail{
		Code:    string(code),
		Message: errors.UserMessage(err),
	}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
