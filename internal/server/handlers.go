package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rmercier/bluescan/internal/logging"
	"github.com/rmercier/bluescan/internal/scan"
)

// Preset scan windows, matching the fast and thorough endpoint contracts.
const (
	fastScanDuration     = 3 * time.Second
	thoroughScanDuration = 10 * time.Second
)

// filterNullTokens are filter values that clients send when they mean "no
// filter". Swagger-style clients in particular submit the literal string
// "string" from example payloads.
var filterNullTokens = map[string]bool{
	"":       true,
	"null":   true,
	"none":   true,
	"string": true,
}

// scanParams is the request body accepted by the scan endpoints. All
// fields are optional; zero values fall back to server defaults.
type scanParams struct {
	// DurationSeconds is the scan window. Must be positive when given.
	DurationSeconds *float64 `json:"duration_seconds,omitempty"`

	// FilterName narrows results to devices whose final name contains
	// this substring, case-insensitively.
	FilterName string `json:"filter_name,omitempty"`

	// Sources restricts the scan to the named sources. Empty means all.
	Sources []string `json:"sources,omitempty"`

	// Sequential runs sources one at a time instead of concurrently.
	Sequential *bool `json:"sequential,omitempty"`
}

// scanResponse is the reply of the scan endpoints. Devices are sorted by
// descending signal strength, strongest first; devices without a reading
// sort last.
type scanResponse struct {
	Devices         []*scan.CanonicalDevice `json:"devices"`
	SourceErrors    map[string]string       `json:"source_errors,omitempty"`
	TotalDiscovered int                     `json:"total_discovered"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/scan", s.handleScan(scanParams{}))
	mux.HandleFunc("POST /api/v1/scan/fast", s.handleScan(fastPreset()))
	mux.HandleFunc("POST /api/v1/scan/thorough", s.handleScan(thoroughPreset()))
	mux.HandleFunc("GET /api/v1/scan/stream", s.handleScanStream)
	mux.HandleFunc("POST /api/v1/session", s.handleSession)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fastPreset optimizes for latency: short window, concurrent fan-out.
func fastPreset() scanParams {
	duration := fastScanDuration.Seconds()
	sequential := false
	return scanParams{
		DurationSeconds: &duration,
		Sequential:      &sequential,
	}
}

// thoroughPreset optimizes for completeness: long window, every source.
func thoroughPreset() scanParams {
	duration := thoroughScanDuration.Seconds()
	return scanParams{
		DurationSeconds: &duration,
	}
}

// handleScan builds a scan handler with the given preset. Request body
// fields override preset fields.
func (s *Server) handleScan(preset scanParams) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := decodeScanParams(r.Body, preset)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		cfg, err := s.scanConfig(params)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := s.aggregator().Aggregate(r.Context(), cfg)
		if err != nil {
			status := http.StatusInternalServerError
			if scan.IsValidationError(err) {
				status = http.StatusBadRequest
			}
			logging.Error("Scan request failed", zap.Error(err))
			writeError(w, status, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, buildScanResponse(result))
	}
}

// decodeScanParams merges the request body over the preset. An empty body
// is valid and yields the preset unchanged.
func decodeScanParams(body io.Reader, preset scanParams) (scanParams, error) {
	data, err := io.ReadAll(io.LimitReader(body, 1<<20))
	if err != nil {
		return scanParams{}, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return preset, nil
	}

	var req scanParams
	if err := json.Unmarshal(data, &req); err != nil {
		return scanParams{}, fmt.Errorf("invalid request body: %v", err)
	}

	merged := preset
	if req.DurationSeconds != nil {
		merged.DurationSeconds = req.DurationSeconds
	}
	if req.FilterName != "" {
		merged.FilterName = req.FilterName
	}
	if len(req.Sources) > 0 {
		merged.Sources = req.Sources
	}
	if req.Sequential != nil {
		merged.Sequential = req.Sequential
	}
	return merged, nil
}

// scanConfig turns request parameters into an aggregation config,
// applying server defaults and the null-token filter convention.
func (s *Server) scanConfig(params scanParams) (scan.Config, error) {
	duration := s.config.DefaultDuration
	if params.DurationSeconds != nil {
		if *params.DurationSeconds <= 0 {
			return scan.Config{}, fmt.Errorf("scan duration must be positive, got %v", *params.DurationSeconds)
		}
		duration = time.Duration(*params.DurationSeconds * float64(time.Second))
	}

	filter := params.FilterName
	if filterNullTokens[strings.ToLower(filter)] {
		filter = ""
	}

	concurrent := !s.config.Sequential
	if params.Sequential != nil {
		concurrent = !*params.Sequential
	}

	return scan.Config{
		Duration:    duration,
		FilterName:  filter,
		Sources:     params.Sources,
		Concurrent:  concurrent,
		GracePeriod: s.config.GracePeriod,
	}, nil
}

// buildScanResponse sorts a view of the result by descending signal. The
// sort is presentation only; the underlying result keeps fold order.
func buildScanResponse(result *scan.Result) scanResponse {
	devices := make([]*scan.CanonicalDevice, len(result.Devices))
	copy(devices, result.Devices)

	sort.SliceStable(devices, func(i, j int) bool {
		return signalOf(devices[i]) > signalOf(devices[j])
	})

	return scanResponse{
		Devices:         devices,
		SourceErrors:    result.SourceErrors,
		TotalDiscovered: result.TotalDiscovered,
	}
}

func signalOf(d *scan.CanonicalDevice) int {
	if d.SignalStrength == nil {
		return -999
	}
	return *d.SignalStrength
}

// toolDescriptor describes one tool offered to session clients.
type toolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type sessionResponse struct {
	Session map[string]string `json:"session"`
	Tools   []toolDescriptor  `json:"tools"`
}

var scanTool = toolDescriptor{
	Name:        "bluetooth-scan",
	Description: "Scans for nearby Bluetooth devices across every available source, with identity resolution and vendor enrichment",
	Parameters: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"duration_seconds": map[string]any{
				"type":        "number",
				"description": "Scan duration in seconds (default: 5)",
			},
			"filter_name": map[string]any{
				"type":        "string",
				"description": "Optional name filter for devices (null to see all devices)",
			},
			"sources": map[string]any{
				"type":        "array",
				"description": "Scan sources to use (default: all)",
			},
			"sequential": map[string]any{
				"type":        "boolean",
				"description": "Run sources one at a time instead of concurrently",
			},
		},
	},
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sessionID := "bluetooth-session-" + uuid.NewString()

	logging.Info("Session created", zap.String("session_id", sessionID))
	writeJSON(w, http.StatusCreated, sessionResponse{
		Session: map[string]string{"id": sessionID},
		Tools:   []toolDescriptor{scanTool},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		logging.Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
