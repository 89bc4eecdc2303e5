package monitor

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/courtside-data/stroke.report/internal/httputil"
	sqlitestore "github.com/courtside-data/stroke.report/internal/storage/sqlite"
)

// handleSessionCharts renders a session dashboard (HTML) with go-echarts:
// score trend, stroke-type mix, and velocity per stroke.
// Query params:
//   - session_id (optional; defaults to the live session)
func (ws *WebServer) handleSessionCharts(w http.ResponseWriter, r *http.Request) {
	if ws.db == nil {
		httputil.ServiceUnavailable(w, "no database attached")
		return
	}
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" && ws.status != nil {
		sessionID = ws.status.SessionID()
	}
	if sessionID == "" {
		httputil.BadRequest(w, "missing session_id")
		return
	}

	strokes, err := sqlitestore.StrokesForSession(ws.db, sessionID)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if len(strokes) == 0 {
		httputil.NotFound(w, "no strokes recorded for session")
		return
	}

	labels := make([]string, len(strokes))
	finalScores := make([]opts.LineData, len(strokes))
	qualityScores := make([]opts.LineData, len(strokes))
	velocities := make([]opts.BarData, len(strokes))
	typeCounts := map[string]int{}
	for i, s := range strokes {
		labels[i] = fmt.Sprintf("#%d %s", i+1, s.Type)
		finalScores[i] = opts.LineData{Value: s.FinalScore}
		qualityScores[i] = opts.LineData{Value: s.QualityOverall}
		velocities[i] = opts.BarData{Value: s.Velocity}
		typeCounts[s.Type]++
	}

	trend := charts.NewLine()
	trend.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Session Scores", Theme: "dark", Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Stroke Scores", Subtitle: fmt.Sprintf("session=%s strokes=%d", sessionID, len(strokes))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, Name: "score"}),
	)
	trend.SetXAxis(labels).
		AddSeries("final", finalScores).
		AddSeries("quality", qualityScores)

	mix := charts.NewPie()
	mix.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "450px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Stroke Mix"}),
	)
	var mixData []opts.PieData
	for _, t := range strokeTypeOrder {
		if n := typeCounts[string(t)]; n > 0 {
			mixData = append(mixData, opts.PieData{Name: string(t), Value: n})
		}
	}
	mix.AddSeries("strokes", mixData)

	vel := charts.NewBar()
	vel.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "dark", Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Racket Speed per Stroke", Subtitle: "torso-lengths per second at contact"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	vel.SetXAxis(labels).AddSeries("velocity", velocities)

	page := components.NewPage()
	page.SetPageTitle("Session Dashboard")
	page.AddCharts(trend, mix, vel)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render charts: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
