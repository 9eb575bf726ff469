package report

import (
	"database/sql"
	"time"
)

// SessionRecord is one analysis session as stored locally.
type SessionRecord struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// SessionRepository provides CRUD operations for session records.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session record.
func (r *SessionRepository) Create(id string, startedAt time.Time) error {
	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		id, startedAt,
	)
	return err
}

// Finish marks a session as ended.
func (r *SessionRepository) Finish(id string, endedAt time.Time) error {
	res, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ? WHERE id = ?`,
		endedAt, id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Get retrieves a session record by ID.
func (r *SessionRepository) Get(id string) (*SessionRecord, error) {
	var rec SessionRecord
	var ended sql.NullTime
	err := r.db.QueryRow(
		`SELECT id, started_at, ended_at FROM sessions WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.StartedAt, &ended)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if ended.Valid {
		rec.EndedAt = &ended.Time
	}
	return &rec, nil
}

// ResultRepository provides CRUD operations for question results.
type ResultRepository struct {
	db *sql.DB
}

// Results returns the result repository for this store.
func (s *Store) Results() *ResultRepository {
	return &ResultRepository{db: s.db}
}

// Save inserts one flushed question result.
func (r *ResultRepository) Save(res Result) error {
	_, err := r.db.Exec(
		`INSERT INTO question_results
		 (session_id, question_index, eye_contact, engagement, attention, stability,
		  expression_confidence, dominant_expression, sample_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.SessionID, res.QuestionIndex, res.EyeContact, res.Engagement,
		res.Attention, res.Stability, res.ExpressionConfidence,
		res.DominantExpression, res.SampleCount, res.Timestamp,
	)
	return err
}

// ListBySession retrieves all question results for a session, ordered by
// question index.
func (r *ResultRepository) ListBySession(sessionID string) ([]Result, error) {
	rows, err := r.db.Query(
		`SELECT session_id, question_index, eye_contact, engagement, attention,
		        stability, expression_confidence, dominant_expression, sample_count,
		        created_at
		 FROM question_results
		 WHERE session_id = ?
		 ORDER BY question_index`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var res Result
		if err := rows.Scan(&res.SessionID, &res.QuestionIndex, &res.EyeContact,
			&res.Engagement, &res.Attention, &res.Stability,
			&res.ExpressionConfidence, &res.DominantExpression,
			&res.SampleCount, &res.Timestamp); err != nil {
			return nil, err
		}
		res.Expression = res.DominantExpression
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
