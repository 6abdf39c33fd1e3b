package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rmercier/bluescan/internal/logging"
	"github.com/rmercier/bluescan/internal/scan"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API is meant for local tooling; origin enforcement is left to
	// any reverse proxy in front of it.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamEvent is one progress message sent over the scan stream. The
// final message carries the full scan result.
type streamEvent struct {
	Type         string        `json:"type"`
	Source       string        `json:"source,omitempty"`
	Observations int           `json:"observations,omitempty"`
	Devices      int           `json:"devices,omitempty"`
	Error        string        `json:"error,omitempty"`
	Result       *scanResponse `json:"result,omitempty"`
}

func stageName(stage scan.ProgressStage) string {
	switch stage {
	case scan.StageSourceStarted:
		return "source_started"
	case scan.StageSourceSettled:
		return "source_settled"
	case scan.StageMerging:
		return "merging"
	case scan.StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// handleScanStream runs a scan and streams progress events over a
// WebSocket, finishing with the full result. Scan parameters come from
// query parameters since WebSocket upgrades are GET requests.
func (s *Server) handleScanStream(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.streamConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	remoteAddr := conn.RemoteAddr().String()
	logging.Info("Scan stream opened",
		zap.String("remote_addr", remoteAddr),
		zap.Duration("duration", cfg.Duration),
	)

	// Progress events are emitted from the orchestrator on this handler
	// goroutine, so writes to the connection never race.
	aggregator := s.aggregator().WithProgress(func(ev scan.ProgressEvent) {
		msg := streamEvent{
			Type:         stageName(ev.Stage),
			Source:       ev.SourceID,
			Observations: ev.Observations,
			Devices:      ev.Devices,
		}
		if ev.Err != nil {
			msg.Error = ev.Err.Error()
		}
		if err := conn.WriteJSON(msg); err != nil {
			logging.Debug("Stream write failed", zap.String("remote_addr", remoteAddr), zap.Error(err))
		}
	})

	result, err := aggregator.Aggregate(r.Context(), cfg)
	if err != nil {
		_ = conn.WriteJSON(streamEvent{Type: "error", Error: err.Error()})
		return
	}

	response := buildScanResponse(result)
	if err := conn.WriteJSON(streamEvent{Type: "result", Result: &response}); err != nil {
		logging.Debug("Stream result write failed", zap.String("remote_addr", remoteAddr), zap.Error(err))
		return
	}

	logging.Info("Scan stream finished",
		zap.String("remote_addr", remoteAddr),
		zap.Int("devices", len(response.Devices)),
	)
}

// streamConfig reads scan parameters from query parameters.
func (s *Server) streamConfig(r *http.Request) (scan.Config, error) {
	params := scanParams{}
	query := r.URL.Query()

	if raw := query.Get("duration_seconds"); raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return scan.Config{}, err
		}
		params.DurationSeconds = &seconds
	}
	params.FilterName = query.Get("filter_name")
	if raw := query.Get("sources"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				params.Sources = append(params.Sources, id)
			}
		}
	}
	if raw := query.Get("sequential"); raw != "" {
		sequential, err := strconv.ParseBool(raw)
		if err != nil {
			return scan.Config{}, err
		}
		params.Sequential = &sequential
	}

	cfg, err := s.scanConfig(params)
	if err != nil {
		return scan.Config{}, err
	}
	// Streamed scans are interactive; cap the window so a typo cannot
	// hold the connection for hours.
	if cfg.Duration > 5*time.Minute {
		cfg.Duration = 5 * time.Minute
	}
	return cfg, nil
}
