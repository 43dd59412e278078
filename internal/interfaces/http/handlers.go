package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/claimaudit/claimaudit/internal/decode"
	"github.com/claimaudit/claimaudit/internal/domain"
	"github.com/claimaudit/claimaudit/internal/engine"
	"github.com/claimaudit/claimaudit/internal/report"
)

// Handlers bundles the endpoint implementations and their dependencies.
type Handlers struct {
	engines *engine.Pool
	version string
	maxBody int64
	start   time.Time
}

// NewHandlers creates the handler set backed by an engine pool.
func NewHandlers(engines *engine.Pool, version string, maxBody int64) *Handlers {
	return &Handlers{
		engines: engines,
		version: version,
		maxBody: maxBody,
		start:   time.Now(),
	}
}

// errorResponse is the JSON envelope for all non-2xx responses.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, `{"error":"json_encoding_failed"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFrom(r.Context()),
	})
}

// Audit runs one claim audit. The body is a claim JSON document; the
// redact query parameter overrides the engine default and format
// selects json (default), text, or html output.
func (h *Handlers) Audit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "body_read_failed", err.Error())
		return
	}

	claim, err := decode.ClaimFromJSON(body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_claim", err.Error())
		return
	}

	var redactPII *bool
	if v := r.URL.Query().Get("redact"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid_redact",
				"redact must be true or false")
			return
		}
		redactPII = &parsed
	}

	eng := h.engines.Get()
	defer h.engines.Put(eng)

	var scorecard *domain.AuditScorecard
	if redactPII != nil {
		scorecard = eng.AuditWithRedact(claim, *redactPII)
	} else {
		scorecard = eng.Audit(claim)
	}

	formatter := report.NewFormatter(scorecard)
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		out, err := formatter.JSON()
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, "encode_failed", err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, out)
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, formatter.Text())
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, formatter.HTML())
	default:
		writeError(w, r, http.StatusBadRequest, "invalid_format",
			"format must be json, text, or html")
	}
}

// Rules returns the rule catalog.
func (h *Handlers) Rules(w http.ResponseWriter, r *http.Request) {
	eng := h.engines.Get()
	defer h.engines.Put(eng)

	infos := eng.Rules()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rules": infos,
		"count": len(infos),
	})
}

// Health reports liveness, version, and uptime.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.start).Seconds()),
	})
}

// NotFound handles unmatched routes with a JSON body.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "endpoint_not_found",
		"The requested endpoint does not exist")
}
