package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps sessions in a SQLite database file.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures the schema
// exists. Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers anyway; a single connection also keeps an
	// in-memory database alive and shared.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{conn: conn}
	if err := s.createTables(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createTables() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT,
		start_time DATETIME NOT NULL,
		end_time DATETIME,
		duration INTEGER,
		plank_type TEXT NOT NULL,
		average_score REAL,
		body_alignment_score REAL,
		knee_position_score REAL,
		shoulder_stack_score REAL,
		completed BOOLEAN NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, start_time);

	CREATE TABLE IF NOT EXISTS pose_analysis (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id),
		timestamp DATETIME NOT NULL,
		body_alignment_angle REAL,
		knee_angle REAL,
		shoulder_stack_angle REAL,
		overall_score REAL,
		feedback TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_pose_analysis_session ON pose_analysis(session_id, timestamp);
	`

	_, err := s.conn.Exec(query)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

const sessionColumns = `id, user_id, start_time, end_time, duration, plank_type,
	average_score, body_alignment_score, knee_position_score, shoulder_stack_score, completed`

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *Session) error {
	prepareSession(sess)

	query := `INSERT INTO sessions (` + sessionColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.conn.ExecContext(ctx, query,
		sess.ID,
		sess.UserID,
		sess.StartTime,
		utcPtr(sess.EndTime),
		sess.Duration,
		sess.PlankType,
		sess.AverageScore,
		sess.BodyAlignmentScore,
		sess.KneePositionScore,
		sess.ShoulderStackScore,
		sess.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) UpdateSession(ctx context.Context, id string, patch SessionPatch) (*Session, error) {
	if patch.Empty() {
		return s.GetSession(ctx, id)
	}

	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}
	if patch.EndTime != nil {
		set("end_time", patch.EndTime.UTC())
	}
	if patch.Duration != nil {
		set("duration", *patch.Duration)
	}
	if patch.PlankType != nil {
		set("plank_type", *patch.PlankType)
	}
	if patch.AverageScore != nil {
		set("average_score", *patch.AverageScore)
	}
	if patch.BodyAlignmentScore != nil {
		set("body_alignment_score", *patch.BodyAlignmentScore)
	}
	if patch.KneePositionScore != nil {
		set("knee_position_score", *patch.KneePositionScore)
	}
	if patch.ShoulderStackScore != nil {
		set("shoulder_stack_score", *patch.ShoulderStackScore)
	}
	if patch.Completed != nil {
		set("completed", *patch.Completed)
	}
	args = append(args, id)

	query := `UPDATE sessions SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return s.GetSession(ctx, id)
}

func (s *SQLiteStore) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = ? ORDER BY start_time DESC, rowid DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) CreateAnalysis(ctx context.Context, a *Analysis) error {
	var exists int
	err := s.conn.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, a.SessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}

	prepareAnalysis(a)

	query := `
		INSERT INTO pose_analysis (
			id, session_id, timestamp, body_alignment_angle, knee_angle,
			shoulder_stack_angle, overall_score, feedback
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.conn.ExecContext(ctx, query,
		a.ID,
		a.SessionID,
		a.Timestamp,
		a.BodyAlignmentAngle,
		a.KneeAngle,
		a.ShoulderStackAngle,
		a.OverallScore,
		a.Feedback,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pose analysis: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListAnalysis(ctx context.Context, sessionID string) ([]Analysis, error) {
	query := `
		SELECT id, session_id, timestamp, body_alignment_angle, knee_angle,
			shoulder_stack_angle, overall_score, feedback
		FROM pose_analysis
		WHERE session_id = ?
		ORDER BY timestamp ASC, rowid ASC`

	rows, err := s.conn.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pose analysis: %w", err)
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		var (
			a                     Analysis
			body, knee, stack, ov sql.NullFloat64
			feedback              sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.SessionID, &a.Timestamp, &body, &knee, &stack, &ov, &feedback); err != nil {
			return nil, fmt.Errorf("failed to scan pose analysis: %w", err)
		}
		a.Timestamp = a.Timestamp.UTC()
		a.BodyAlignmentAngle = body.Float64
		a.KneeAngle = knee.Float64
		a.ShoulderStackAngle = stack.Float64
		a.OverallScore = ov.Float64
		a.Feedback = feedback.String
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	var (
		sess                      Session
		userID                    sql.NullString
		endTime                   sql.NullTime
		duration                  sql.NullInt64
		avg, body, knee, shoulder sql.NullFloat64
	)
	err := row.Scan(
		&sess.ID,
		&userID,
		&sess.StartTime,
		&endTime,
		&duration,
		&sess.PlankType,
		&avg,
		&body,
		&knee,
		&shoulder,
		&sess.Completed,
	)
	if err != nil {
		return nil, err
	}

	sess.StartTime = sess.StartTime.UTC()
	if userID.Valid {
		sess.UserID = &userID.String
	}
	if endTime.Valid {
		t := endTime.Time.UTC()
		sess.EndTime = &t
	}
	if duration.Valid {
		d := int(duration.Int64)
		sess.Duration = &d
	}
	sess.AverageScore = nullFloat(avg)
	sess.BodyAlignmentScore = nullFloat(body)
	sess.KneePositionScore = nullFloat(knee)
	sess.ShoulderStackScore = nullFloat(shoulder)
	return &sess, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func utcPtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
