// Package monitor exposes the HTTP surface for a running analysis
// session: health and status endpoints, stored-session queries, chart
// rendering, a live stroke feed, and post-run plot output.
package monitor

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/courtside-data/stroke.report/internal/httputil"
	"github.com/courtside-data/stroke.report/internal/kinematics"
	"github.com/courtside-data/stroke.report/internal/monitoring"
	sqlitestore "github.com/courtside-data/stroke.report/internal/storage/sqlite"
	"github.com/courtside-data/stroke.report/internal/swing"
	"github.com/courtside-data/stroke.report/internal/version"
)

// PipelineStatus is the subset of pipeline state the status endpoints
// report. Kept as an interface so the server never holds the pipeline
// itself.
type PipelineStatus interface {
	SessionID() string
	StrokeCount() int
	CameraView() kinematics.CameraView
}

// WebServer handles the HTTP interface for monitoring a stroke analysis
// session.
type WebServer struct {
	address string
	db      *sql.DB
	status  PipelineStatus
	feed    *Feed
	server  *http.Server
	started time.Time
}

// WebServerConfig contains configuration options for the web server.
type WebServerConfig struct {
	Address string
	DB      *sql.DB
	Status  PipelineStatus
	Feed    *Feed
}

// NewWebServer creates a web server with the provided configuration.
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address: config.Address,
		db:      config.DB,
		status:  config.Status,
		feed:    config.Feed,
		started: time.Now(),
	}
	ws.server = &http.Server{
		Addr:    ws.address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

// Start begins the HTTP server and blocks until the context is
// cancelled, then shuts down gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		monitoring.Logf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			monitoring.Logf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}
	return nil
}

func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/", ws.handleStatus)
	mux.HandleFunc("/api/sessions", ws.handleSessions)
	mux.HandleFunc("/api/sessions/", ws.handleSessionDetail)
	mux.HandleFunc("/api/strokes/", ws.handleStroke)
	mux.HandleFunc("/charts/session", ws.handleSessionCharts)
	if ws.feed != nil {
		mux.HandleFunc("/events", ws.feed.ServeHTTP)
	}
	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":         "ok",
		"version":        version.Version,
		"uptime_seconds": int(time.Since(ws.started).Seconds()),
	})
}

func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	status := map[string]interface{}{
		"uptime_seconds": int(time.Since(ws.started).Seconds()),
	}
	if ws.status != nil {
		view := ws.status.CameraView()
		status["session_id"] = ws.status.SessionID()
		status["stroke_count"] = ws.status.StrokeCount()
		status["camera_view"] = string(view.View)
		status["camera_suitable"] = view.SuitableForAnalysis
	}
	httputil.WriteJSONOK(w, status)
}

func (ws *WebServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		httputil.ServiceUnavailable(w, "no database attached")
		return
	}
	sessions, err := sqlitestore.RecentSessions(ws.db, 50)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, sessions)
}

// handleSessionDetail serves /api/sessions/{id}, /{id}/strokes and
// /{id}/rejects.
func (ws *WebServer) handleSessionDetail(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		httputil.ServiceUnavailable(w, "no database attached")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	parts := strings.SplitN(rest, "/", 2)
	sessionID := parts[0]
	if sessionID == "" {
		httputil.BadRequest(w, "missing session id")
		return
	}

	sub := ""
	if len(parts) == 2 {
		sub = parts[1]
	}
	switch sub {
	case "":
		sum, err := sqlitestore.SummarizeSession(ws.db, sessionID)
		if err != nil {
			httputil.NotFound(w, fmt.Sprintf("session %s: %v", sessionID, err))
			return
		}
		httputil.WriteJSONOK(w, sum)
	case "strokes":
		strokes, err := sqlitestore.StrokesForSession(ws.db, sessionID)
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, strokes)
	case "rejects":
		counts, err := sqlitestore.RejectCounts(ws.db, sessionID)
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		httputil.WriteJSONOK(w, counts)
	default:
		http.NotFound(w, r)
	}
}

func (ws *WebServer) handleStroke(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		httputil.ServiceUnavailable(w, "no database attached")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/strokes/")
	if id == "" {
		httputil.BadRequest(w, "missing stroke id")
		return
	}
	ev, err := sqlitestore.LoadStrokeEvent(ws.db, id)
	if err != nil {
		httputil.NotFound(w, fmt.Sprintf("stroke %s: %v", id, err))
		return
	}
	httputil.WriteJSONOK(w, ev)
}

// strokeTypeOrder fixes chart category ordering.
var strokeTypeOrder = []swing.StrokeType{
	swing.StrokeServe, swing.StrokeOverhead, swing.StrokeVolley,
	swing.StrokeForehand, swing.StrokeBackhand, swing.StrokeGroundstroke,
}
