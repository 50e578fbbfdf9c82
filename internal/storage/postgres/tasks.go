package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	pq "github.com/lib/pq"

	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/storage"
)

const taskColumns = `id, user_id, subject_id, title, estimated_minutes, due_date, completed,
	scheduling_status, scheduled_for, created_at, deleted_at`

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var dueDate, scheduledFor sql.NullTime
	var deletedAt sql.NullString

	err := row.Scan(
		&t.ID, &t.UserID, &t.SubjectID, &t.Title, &t.EstimatedMinutes, &dueDate, &t.Completed,
		&t.SchedulingStatus, &scheduledFor, &t.CreatedAt, &deletedAt,
	)
	if err != nil {
		return models.Task{}, err
	}
	t.DueDate = timePtr(dueDate)
	t.ScheduledFor = timePtr(scheduledFor)
	if deletedAt.Valid {
		t.DeletedAt = &deletedAt.String
	}
	return t, nil
}

func (s *Store) queryTasks(query string, args ...any) ([]models.Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) AddTask(t models.Task) error {
	if t.SchedulingStatus == "" {
		t.SchedulingStatus = constants.SchedulingUnscheduled
	}
	_, err := s.db.Exec(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULL)`,
		t.ID, t.UserID, t.SubjectID, t.Title, t.EstimatedMinutes, nullTime(t.DueDate), t.Completed,
		t.SchedulingStatus, nullTime(t.ScheduledFor), t.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(id string) (models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND deleted_at IS NULL`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	return t, err
}

func (s *Store) ListTasks(userID string, includeCompleted bool) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 AND deleted_at IS NULL`
	if !includeCompleted {
		query += ` AND NOT completed`
	}
	query += ` ORDER BY created_at, id`
	return s.queryTasks(query, userID)
}

func (s *Store) ListEligibleTasks(userID string, windowStart, windowEnd time.Time) ([]models.Task, error) {
	return s.queryTasks(`
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = $1 AND NOT completed AND deleted_at IS NULL
		  AND (due_date IS NULL OR (due_date >= $2 AND due_date < $3))
		ORDER BY created_at, id`,
		userID, models.DayStart(windowStart).UTC(), windowEnd.UTC())
}

func (s *Store) UpdateTask(t models.Task) error {
	res, err := s.db.Exec(`
		UPDATE tasks SET subject_id = $1, title = $2, estimated_minutes = $3, due_date = $4, completed = $5,
		       scheduling_status = $6, scheduled_for = $7
		WHERE id = $8 AND deleted_at IS NULL`,
		t.SubjectID, t.Title, t.EstimatedMinutes, nullTime(t.DueDate), t.Completed,
		t.SchedulingStatus, nullTime(t.ScheduledFor), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return expectRow(res, "task", t.ID)
}

func (s *Store) CompleteTask(id string) error {
	res, err := s.db.Exec("UPDATE tasks SET completed = TRUE WHERE id = $1 AND deleted_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	return expectRow(res, "task", id)
}

func (s *Store) MarkTasksScheduled(ids []string, scheduledFor time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.Exec(`
		UPDATE tasks SET scheduling_status = $1, scheduled_for = $2
		WHERE id = ANY($3) AND deleted_at IS NULL`,
		constants.SchedulingScheduled, scheduledFor.UTC(), pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to mark tasks scheduled: %w", err)
	}
	return nil
}

func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec("UPDATE tasks SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL",
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return expectRow(res, "task", id)
}

func (s *Store) RestoreTask(id string) error {
	res, err := s.db.Exec("UPDATE tasks SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL", id)
	if err != nil {
		return fmt.Errorf("failed to restore task: %w", err)
	}
	return expectRow(res, "deleted task", id)
}
