package postgres

import (
	"fmt"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/studyweek/internal/models"
)

func (s *Store) SaveAppliedSession(a models.AppliedSession) error {
	_, err := s.db.Exec(`
		INSERT INTO applied_sessions
			(id, user_id, subject_id, task_ids, start_time, end_time, external_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			task_ids = EXCLUDED.task_ids,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			external_id = EXCLUDED.external_id`,
		a.ID, a.UserID, a.SubjectID, pq.Array(a.TaskIDs), a.Start.UTC(), a.End.UTC(), a.ExternalID, a.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save applied session: %w", err)
	}
	return nil
}

func (s *Store) ListAppliedSessions(userID string, windowStart, windowEnd time.Time) ([]models.AppliedSession, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, subject_id, task_ids, start_time, end_time, external_id, created_at
		FROM applied_sessions
		WHERE user_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time, id`,
		userID, windowStart.UTC(), windowEnd.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.AppliedSession
	for rows.Next() {
		var a models.AppliedSession
		if err := rows.Scan(&a.ID, &a.UserID, &a.SubjectID, pq.Array(&a.TaskIDs), &a.Start, &a.End, &a.ExternalID, &a.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, a)
	}
	return sessions, rows.Err()
}
