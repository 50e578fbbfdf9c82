package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/studyweek/internal/models"
)

func (s *Store) SaveAppliedSession(a models.AppliedSession) error {
	ids, err := json.Marshal(a.TaskIDs)
	if err != nil {
		return fmt.Errorf("failed to encode task ids: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT OR REPLACE INTO applied_sessions
			(id, user_id, subject_id, task_ids, start_time, end_time, external_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.SubjectID, string(ids), formatTime(a.Start), formatTime(a.End),
		a.ExternalID, formatTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save applied session: %w", err)
	}
	return nil
}

func (s *Store) ListAppliedSessions(userID string, windowStart, windowEnd time.Time) ([]models.AppliedSession, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, subject_id, task_ids, start_time, end_time, external_id, created_at
		FROM applied_sessions
		WHERE user_id = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time, id`,
		userID, formatTime(windowStart), formatTime(windowEnd))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []models.AppliedSession
	for rows.Next() {
		var a models.AppliedSession
		var ids, start, end, created string
		if err := rows.Scan(&a.ID, &a.UserID, &a.SubjectID, &ids, &start, &end, &a.ExternalID, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ids), &a.TaskIDs); err != nil {
			return nil, fmt.Errorf("invalid task ids for session %s: %w", a.ID, err)
		}
		if a.Start, err = parseTime(start); err != nil {
			return nil, err
		}
		if a.End, err = parseTime(end); err != nil {
			return nil, err
		}
		if a.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		sessions = append(sessions, a)
	}
	return sessions, rows.Err()
}
