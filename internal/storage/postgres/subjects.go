package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/storage"
)

const subjectColumns = `id, user_id, name, weight, deadline, created_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (models.Subject, error) {
	var sub models.Subject
	var deadline sql.NullTime
	var deletedAt sql.NullString

	if err := row.Scan(&sub.ID, &sub.UserID, &sub.Name, &sub.Weight, &deadline, &sub.CreatedAt, &deletedAt); err != nil {
		return models.Subject{}, err
	}
	sub.Deadline = timePtr(deadline)
	if deletedAt.Valid {
		sub.DeletedAt = &deletedAt.String
	}
	return sub, nil
}

func (s *Store) AddSubject(sub models.Subject) error {
	_, err := s.db.Exec(`
		INSERT INTO subjects (`+subjectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, NULL)`,
		sub.ID, sub.UserID, sub.Name, sub.Weight, nullTime(sub.Deadline), sub.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to add subject: %w", err)
	}
	return nil
}

func (s *Store) GetSubject(id string) (models.Subject, error) {
	row := s.db.QueryRow(`SELECT `+subjectColumns+` FROM subjects WHERE id = $1 AND deleted_at IS NULL`, id)
	sub, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subject{}, fmt.Errorf("subject %s: %w", id, storage.ErrNotFound)
	}
	return sub, err
}

func (s *Store) GetSubjectByName(userID, name string) (models.Subject, error) {
	row := s.db.QueryRow(`
		SELECT `+subjectColumns+` FROM subjects
		WHERE user_id = $1 AND lower(name) = lower($2) AND deleted_at IS NULL`, userID, name)
	sub, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subject{}, fmt.Errorf("subject %q: %w", name, storage.ErrNotFound)
	}
	return sub, err
}

func (s *Store) ListSubjects(userID string) ([]models.Subject, error) {
	rows, err := s.db.Query(`
		SELECT `+subjectColumns+` FROM subjects
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY weight DESC, created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		sub, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

func (s *Store) UpdateSubject(sub models.Subject) error {
	res, err := s.db.Exec(`
		UPDATE subjects SET name = $1, weight = $2, deadline = $3
		WHERE id = $4 AND deleted_at IS NULL`,
		sub.Name, sub.Weight, nullTime(sub.Deadline), sub.ID)
	if err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}
	return expectRow(res, "subject", sub.ID)
}

func (s *Store) DeleteSubject(id string) error {
	res, err := s.db.Exec("UPDATE subjects SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL",
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}
	return expectRow(res, "subject", id)
}

func (s *Store) RestoreSubject(id string) error {
	res, err := s.db.Exec("UPDATE subjects SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL", id)
	if err != nil {
		return fmt.Errorf("failed to restore subject: %w", err)
	}
	return expectRow(res, "deleted subject", id)
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, storage.ErrNotFound)
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
