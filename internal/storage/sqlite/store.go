// Package sqlite persists sessions, stroke events, and segmentation
// rejects. It is an adapter behind the pipeline's sink interfaces; the
// stroke packages never import it.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/courtside-data/stroke.report/internal/swing"
)

// Open opens (or creates) the stroke database and applies the baseline
// schema. Further schema changes ship as migrations.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open stroke db: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
		PRAGMA foreign_keys = ON;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(baselineSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply baseline schema: %w", err)
	}
	return db, nil
}

const baselineSchema = `
	CREATE TABLE IF NOT EXISTS sessions (
		id             TEXT PRIMARY KEY,
		started_at     TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		dominant_hand  TEXT,
		skill_tier     TEXT,
		camera_view    TEXT,
		body_scale     DOUBLE,
		stroke_count   BIGINT DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS strokes (
		id                 TEXT PRIMARY KEY,
		session_id         TEXT NOT NULL,
		stroke_type        TEXT NOT NULL,
		timestamp_ms       BIGINT NOT NULL,
		velocity           DOUBLE,
		acceleration       DOUBLE,
		rotation           DOUBLE,
		vertical_motion    DOUBLE,
		smoothness         DOUBLE,
		ball_speed_kph     DOUBLE,
		normalized         BOOLEAN,
		quality_overall    DOUBLE,
		sequence_overall   DOUBLE,
		evaluation_overall DOUBLE,
		final_score        DOUBLE,
		primary_feedback   TEXT,
		contact_x          DOUBLE,
		contact_y          DOUBLE,
		contact_variance   DOUBLE,
		detail             TEXT,
		created_at         TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(session_id) REFERENCES sessions(id)
	);
	CREATE INDEX IF NOT EXISTS idx_strokes_session_ts
		ON strokes(session_id, timestamp_ms);
	CREATE TABLE IF NOT EXISTS rejects (
		session_id   TEXT NOT NULL,
		timestamp_ms BIGINT NOT NULL,
		reason       TEXT NOT NULL,
		created_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
`

// StrokeStore persists pipeline outputs for one session. It implements
// swing.StrokeSink and swing.RejectSink.
type StrokeStore struct {
	db        *sql.DB
	sessionID string
}

// NewStrokeStore binds a store to a session, inserting the session row.
func NewStrokeStore(db *sql.DB, sessionID, hand, tier string) (*StrokeStore, error) {
	_, err := db.Exec(
		`INSERT OR IGNORE INTO sessions (id, dominant_hand, skill_tier) VALUES (?, ?, ?)`,
		sessionID, hand, tier,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session %s: %w", sessionID, err)
	}
	return &StrokeStore{db: db, sessionID: sessionID}, nil
}

// HandleStroke writes a stroke event. The full event is kept as a JSON
// detail column; the hot columns are denormalized for queries.
func (s *StrokeStore) HandleStroke(ev *swing.StrokeEvent) error {
	detail, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal stroke %s: %w", ev.ID, err)
	}
	var seqOverall float64
	if ev.Sequence != nil {
		seqOverall = ev.Sequence.Overall
	}
	var evalOverall float64
	var feedback string
	if ev.Evaluation != nil {
		evalOverall = ev.Evaluation.Overall
		feedback = ev.Evaluation.PrimaryFeedback
	}
	_, err = s.db.Exec(`
		INSERT INTO strokes (
			id, session_id, stroke_type, timestamp_ms,
			velocity, acceleration, rotation, vertical_motion, smoothness,
			ball_speed_kph, normalized,
			quality_overall, sequence_overall, evaluation_overall, final_score,
			primary_feedback, contact_x, contact_y, contact_variance, detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.SessionID, string(ev.Type), ev.TimestampMs,
		ev.Velocity, ev.Acceleration, ev.Rotation, ev.VerticalMotion, ev.Smoothness,
		ev.BallSpeedKPH, ev.Normalized,
		ev.Quality.Overall, seqOverall, evalOverall, ev.FinalScore,
		feedback, ev.Contact.X, ev.Contact.Y, ev.ContactVariance, string(detail),
	)
	if err != nil {
		return fmt.Errorf("insert stroke %s: %w", ev.ID, err)
	}
	_, err = s.db.Exec(
		`UPDATE sessions SET stroke_count = stroke_count + 1 WHERE id = ?`,
		ev.SessionID,
	)
	return err
}

// HandleReject records a dropped contact candidate for diagnostics.
func (s *StrokeStore) HandleReject(timestampMs int64, reason swing.RejectReason) {
	// Diagnostics only; a failed insert must not disturb the stream.
	if _, err := s.db.Exec(
		`INSERT INTO rejects (session_id, timestamp_ms, reason) VALUES (?, ?, ?)`,
		s.sessionID, timestampMs, string(reason),
	); err != nil {
		return
	}
}

// HandleCalibration records the session body scale once known.
func (s *StrokeStore) HandleCalibration(scale float64) {
	s.db.Exec(`UPDATE sessions SET body_scale = ? WHERE id = ?`, scale, s.sessionID)
}

// SetCameraView records the estimated camera angle for the session.
func (s *StrokeStore) SetCameraView(view string) error {
	_, err := s.db.Exec(`UPDATE sessions SET camera_view = ? WHERE id = ?`, view, s.sessionID)
	return err
}

// StrokeRecord is the denormalized queryable row for one stroke.
type StrokeRecord struct {
	ID              string  `json:"id"`
	SessionID       string  `json:"session_id"`
	Type            string  `json:"type"`
	TimestampMs     int64   `json:"timestamp_ms"`
	Velocity        float64 `json:"velocity"`
	Acceleration    float64 `json:"acceleration"`
	Rotation        float64 `json:"rotation"`
	BallSpeedKPH    float64 `json:"ball_speed_kph"`
	QualityOverall  float64 `json:"quality_overall"`
	FinalScore      float64 `json:"final_score"`
	PrimaryFeedback string  `json:"primary_feedback"`
}

// StrokesForSession returns all strokes of a session in chronological
// order.
func StrokesForSession(db *sql.DB, sessionID string) ([]StrokeRecord, error) {
	rows, err := db.Query(`
		SELECT id, session_id, stroke_type, timestamp_ms,
		       velocity, acceleration, rotation, ball_speed_kph,
		       quality_overall, final_score, primary_feedback
		FROM strokes WHERE session_id = ? ORDER BY timestamp_ms`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query strokes for %s: %w", sessionID, err)
	}
	defer rows.Close()

	var out []StrokeRecord
	for rows.Next() {
		var r StrokeRecord
		if err := rows.Scan(
			&r.ID, &r.SessionID, &r.Type, &r.TimestampMs,
			&r.Velocity, &r.Acceleration, &r.Rotation, &r.BallSpeedKPH,
			&r.QualityOverall, &r.FinalScore, &r.PrimaryFeedback,
		); err != nil {
			return nil, fmt.Errorf("scan stroke row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadStrokeEvent rehydrates the full event from the detail column.
func LoadStrokeEvent(db *sql.DB, id string) (*swing.StrokeEvent, error) {
	var detail string
	err := db.QueryRow(`SELECT detail FROM strokes WHERE id = ?`, id).Scan(&detail)
	if err != nil {
		return nil, fmt.Errorf("load stroke %s: %w", id, err)
	}
	var ev swing.StrokeEvent
	if err := json.Unmarshal([]byte(detail), &ev); err != nil {
		return nil, fmt.Errorf("unmarshal stroke %s: %w", id, err)
	}
	return &ev, nil
}

// SessionSummary aggregates one session for reporting.
type SessionSummary struct {
	SessionID    string         `json:"session_id"`
	StartedAt    time.Time      `json:"started_at"`
	StrokeCount  int            `json:"stroke_count"`
	CountsByType map[string]int `json:"counts_by_type"`
	MeanFinal    float64        `json:"mean_final_score"`
	MeanVelocity float64        `json:"mean_velocity"`
	BestStrokeID string         `json:"best_stroke_id,omitempty"`
}

// SummarizeSession computes the per-session aggregate.
func SummarizeSession(db *sql.DB, sessionID string) (*SessionSummary, error) {
	sum := &SessionSummary{SessionID: sessionID, CountsByType: map[string]int{}}

	err := db.QueryRow(
		`SELECT started_at FROM sessions WHERE id = ?`, sessionID,
	).Scan(&sum.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	rows, err := db.Query(`
		SELECT stroke_type, COUNT(*) FROM strokes
		WHERE session_id = ? GROUP BY stroke_type`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		sum.CountsByType[t] = n
		sum.StrokeCount += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if sum.StrokeCount > 0 {
		err = db.QueryRow(`
			SELECT AVG(final_score), AVG(velocity) FROM strokes WHERE session_id = ?`,
			sessionID,
		).Scan(&sum.MeanFinal, &sum.MeanVelocity)
		if err != nil {
			return nil, err
		}
		err = db.QueryRow(`
			SELECT id FROM strokes WHERE session_id = ?
			ORDER BY final_score DESC, timestamp_ms LIMIT 1`,
			sessionID,
		).Scan(&sum.BestStrokeID)
		if err != nil {
			return nil, err
		}
	}
	return sum, nil
}

// RecentSessions lists sessions newest-first.
func RecentSessions(db *sql.DB, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT id, started_at, stroke_count FROM sessions
		ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var s SessionSummary
		if err := rows.Scan(&s.SessionID, &s.StartedAt, &s.StrokeCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RejectCounts returns how many candidates each reason dropped.
func RejectCounts(db *sql.DB, sessionID string) (map[string]int, error) {
	rows, err := db.Query(`
		SELECT reason, COUNT(*) FROM rejects
		WHERE session_id = ? GROUP BY reason`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var reason string
		var n int
		if err := rows.Scan(&reason, &n); err != nil {
			return nil, err
		}
		out[reason] = n
	}
	return out, rows.Err()
}
