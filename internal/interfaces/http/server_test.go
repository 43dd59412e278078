package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimaudit/claimaudit/internal/engine"
)

const doorClaimJSON = `{
	"claim_id": "CLM-HTTP-1",
	"policy": {"deductible": 1000, "coverage_a": 250000, "coverage_b": 25000, "coverage_c": 125000},
	"line_items": [
		{"code": "GEN_DOOR", "description": "Pre-hung Interior Door", "quantity": 1, "unit_price": 250},
		{"code": "GEN_HINGE", "description": "Door Hinges", "quantity": 1, "unit_price": 51}
	]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := DefaultServerConfig()
	cfg.Port = 0
	srv, err := NewServer(cfg, engine.DefaultOptions())
	require.NoError(t, err)
	return srv
}

func doRequest(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAuditEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, "POST", "/audit", doorClaimJSON)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Len(t, rec.Header().Get("X-Request-ID"), 8)

	out := decodeBody(t, rec)
	assert.Equal(t, "CLM-HTTP-1", out["claim_id"])
	assert.Equal(t, false, out["redacted"])

	findings := out["findings"].([]interface{})
	require.Len(t, findings, 1)
	first := findings[0].(map[string]interface{})
	assert.Equal(t, "Potential Overlap: Pre_Hung_Door_Hardware", first["title"])

	summary := out["summary"].(map[string]interface{})
	assert.Equal(t, 1.0, summary["total_findings"])
	assert.Len(t, out["modules_executed"].([]interface{}), 4)
}

func TestAuditEndpointRedactOverride(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, "POST", "/audit?redact=true", doorClaimJSON)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeBody(t, rec)
	assert.Equal(t, true, out["redacted"])
	findings := out["findings"].([]interface{})
	require.NotEmpty(t, findings)
	first := findings[0].(map[string]interface{})
	assert.Equal(t, "[REDACTED]", first["rule_name"], "rule_name is a known PII field")

	rec = doRequest(t, srv, "POST", "/audit?redact=banana", doorClaimJSON)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_redact", decodeBody(t, rec)["code"])
}

func TestAuditEndpointFormats(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, "POST", "/audit?format=text", doorClaimJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "CLAIM INTEGRITY AUDIT SCORECARD")

	rec = doRequest(t, srv, "POST", "/audit?format=html", doorClaimJSON)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<strong>Rule:</strong>")

	rec = doRequest(t, srv, "POST", "/audit?format=yaml", doorClaimJSON)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_format", decodeBody(t, rec)["code"])
}

func TestAuditEndpointBadBody(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, "POST", "/audit", "not json")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "invalid_claim", out["code"])
	assert.Contains(t, out["error"], "decode claim json")
}

func TestAuditEndpointValidationFailure(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, "POST", "/audit", `{"policy": {"deductible": 100}}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	out := decodeBody(t, rec)
	assert.Equal(t, "invalid_claim", out["code"])
	assert.Contains(t, out["error"], "claim_id is required")
}

func TestRulesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, "GET", "/rules", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeBody(t, rec)
	assert.Equal(t, 20.0, out["count"])
	rules := out["rules"].([]interface{})
	first := rules[0].(map[string]interface{})
	assert.Equal(t, "FIN-001", first["rule_id"])
	assert.Equal(t, true, first["enabled"])
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, "GET", "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeBody(t, rec)
	assert.Equal(t, "ok", out["status"])
	assert.Equal(t, "dev", out["version"])
	assert.GreaterOrEqual(t, out["uptime_seconds"], 0.0)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doRequest(t, srv, "POST", "/audit", doorClaimJSON)
	rec := doRequest(t, srv, "GET", "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `claimaudit_audits_total{redacted="false"} 1`)
	assert.Contains(t, body, `claimaudit_findings_total{category="leakage",severity="warning"} 1`)
	assert.Contains(t, body, "claimaudit_http_requests_total")
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, "GET", "/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "endpoint_not_found", decodeBody(t, rec)["code"])
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Port = 0
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	srv, err := NewServer(cfg, engine.DefaultOptions())
	require.NoError(t, err)

	first := doRequest(t, srv, "GET", "/health", "")
	assert.Equal(t, http.StatusOK, first.Code)

	second := doRequest(t, srv, "GET", "/health", "")
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "rate_limited", decodeBody(t, second)["code"])
}
