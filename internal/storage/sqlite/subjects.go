package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/julianstephens/studyweek/internal/models"
	"github.com/julianstephens/studyweek/internal/storage"
)

const subjectColumns = `id, user_id, name, weight, deadline, created_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (models.Subject, error) {
	var sub models.Subject
	var deadline, deletedAt sql.NullString
	var createdAt string

	if err := row.Scan(&sub.ID, &sub.UserID, &sub.Name, &sub.Weight, &deadline, &createdAt, &deletedAt); err != nil {
		return models.Subject{}, err
	}

	var err error
	if sub.Deadline, err = parseTimePtr(deadline); err != nil {
		return models.Subject{}, fmt.Errorf("invalid deadline for subject %s: %w", sub.ID, err)
	}
	if sub.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.Subject{}, fmt.Errorf("invalid created_at for subject %s: %w", sub.ID, err)
	}
	if deletedAt.Valid {
		sub.DeletedAt = &deletedAt.String
	}
	return sub, nil
}

func (s *Store) AddSubject(sub models.Subject) error {
	_, err := s.db.Exec(`
		INSERT INTO subjects (`+subjectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		sub.ID, sub.UserID, sub.Name, sub.Weight, formatTimePtr(sub.Deadline), formatTime(sub.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to add subject: %w", err)
	}
	return nil
}

func (s *Store) GetSubject(id string) (models.Subject, error) {
	row := s.db.QueryRow(`SELECT `+subjectColumns+` FROM subjects WHERE id = ? AND deleted_at IS NULL`, id)
	sub, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subject{}, fmt.Errorf("subject %s: %w", id, storage.ErrNotFound)
	}
	return sub, err
}

func (s *Store) GetSubjectByName(userID, name string) (models.Subject, error) {
	row := s.db.QueryRow(`
		SELECT `+subjectColumns+` FROM subjects
		WHERE user_id = ? AND name = ? COLLATE NOCASE AND deleted_at IS NULL`, userID, name)
	sub, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Subject{}, fmt.Errorf("subject %q: %w", name, storage.ErrNotFound)
	}
	return sub, err
}

func (s *Store) ListSubjects(userID string) ([]models.Subject, error) {
	rows, err := s.db.Query(`
		SELECT `+subjectColumns+` FROM subjects
		WHERE user_id = ? AND deleted_at IS NULL
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
		UPDATE subjects SET name = ?, weight = ?, deadline = ?
		WHERE id = ? AND deleted_at IS NULL`,
		sub.Name, sub.Weight, formatTimePtr(sub.Deadline), sub.ID)
	if err != nil {
		return fmt.Errorf("failed to update subject: %w", err)
	}
	return expectRow(res, "subject", sub.ID)
}

func (s *Store) DeleteSubject(id string) error {
	res, err := s.db.Exec("UPDATE subjects SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL", nowString(), id)
	if err != nil {
		return fmt.Errorf("failed to delete subject: %w", err)
	}
	return expectRow(res, "subject", id)
}

func (s *Store) RestoreSubject(id string) error {
	res, err := s.db.Exec("UPDATE subjects SET deleted_at = NULL WHERE id = ? AND deleted_at IS NOT NULL", id)
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
