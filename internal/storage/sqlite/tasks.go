package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/studyweek/internal/constants"
	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/storage"
)

const taskColumns = `id, user_id, subject_id, title, estimated_minutes, due_date, completed,
	scheduling_status, scheduled_for, created_at, deleted_at`

func scanTask(row rowScanner) (models.Task, error) {
	var t models.Task
	var dueDate, scheduledFor, deletedAt sql.NullString
	var createdAt string

	err := row.Scan(
		&t.ID, &t.UserID, &t.SubjectID, &t.Title, &t.EstimatedMinutes, &dueDate, &t.Completed,
		&t.SchedulingStatus, &scheduledFor, &createdAt, &deletedAt,
	)
	if err != nil {
		return models.Task{}, err
	}

	if t.DueDate, err = parseTimePtr(dueDate); err != nil {
		return models.Task{}, fmt.Errorf("invalid due_date for task %s: %w", t.ID, err)
	}
	if t.ScheduledFor, err = parseTimePtr(scheduledFor); err != nil {
		return models.Task{}, fmt.Errorf("invalid scheduled_for for task %s: %w", t.ID, err)
	}
	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Task{}, fmt.Errorf("invalid created_at for task %s: %w", t.ID, err)
	}
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		t.ID, t.UserID, t.SubjectID, t.Title, t.EstimatedMinutes, formatTimePtr(t.DueDate), t.Completed,
		t.SchedulingStatus, formatTimePtr(t.ScheduledFor), formatTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to add task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(id string) (models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND deleted_at IS NULL`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, fmt.Errorf("task %s: %w", id, storage.ErrNotFound)
	}
	return t, err
}

func (s *Store) ListTasks(userID string, includeCompleted bool) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? AND deleted_at IS NULL`
	if !includeCompleted {
		query += ` AND completed = 0`
	}
	query += ` ORDER BY created_at, id`
	return s.queryTasks(query, userID)
}

func (s *Store) ListEligibleTasks(userID string, windowStart, windowEnd time.Time) ([]models.Task, error) {
	return s.queryTasks(`
		SELECT `+taskColumns+` FROM tasks
		WHERE user_id = ? AND completed = 0 AND deleted_at IS NULL
		  AND (due_date IS NULL OR (due_date >= ? AND due_date < ?))
		ORDER BY created_at, id`,
		userID, formatTime(models.DayStart(windowStart)), formatTime(windowEnd))
}

func (s *Store) UpdateTask(t models.Task) error {
	res, err := s.db.Exec(`
		UPDATE tasks SET subject_id = ?, title = ?, estimated_minutes = ?, due_date = ?, completed = ?,
		       scheduling_status = ?, scheduled_for = ?
		WHERE id = ? AND deleted_at IS NULL`,
		t.SubjectID, t.Title, t.EstimatedMinutes, formatTimePtr(t.DueDate), t.Completed,
		t.SchedulingStatus, formatTimePtr(t.ScheduledFor), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return expectRow(res, "task", t.ID)
}

func (s *Store) CompleteTask(id string) error {
	res, err := s.db.Exec("UPDATE tasks SET completed = 1 WHERE id = ? AND deleted_at IS NULL", id)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	return expectRow(res, "task", id)
}

func (s *Store) MarkTasksScheduled(ids []string, scheduledFor time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := []any{constants.SchedulingScheduled, formatTime(scheduledFor)}
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.db.Exec(`
		UPDATE tasks SET scheduling_status = ?, scheduled_for = ?
		WHERE id IN (`+placeholders+`) AND deleted_at IS NULL`, args...)
	if err != nil {
		return fmt.Errorf("failed to mark tasks scheduled: %w", err)
	}
	return nil
}

func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec("UPDATE tasks SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", nowString(), id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return expectRow(res, "task", id)
}

func (s *Store) RestoreTask(id string) error {
	res, err := s.db.Exec("UPDATE tasks SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL", id)
	if err != nil {
		return fmt.Errorf("failed to restore task: %w", err)
	}
	return expectRow(res, "deleted task", id)
}
