package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/focuslog/internal/calendar"
)

var ErrBlockNotFound = errors.New("time block not found")

// CreateBlock validates and inserts b. Missing ids and colours are filled in.
func (s *Store) CreateBlock(b calendar.TimeBlock) (*calendar.TimeBlock, error) {
	if b.ID == "" {
		b.ID = "block-" + uuid.NewString()
	}
	if b.Color == "" {
		var n int
		if err := s.db.QueryRow(`SELECT COUNT(*) FROM time_blocks`).Scan(&n); err != nil {
			return nil, fmt.Errorf("count blocks: %w", err)
		}
		b.Color = calendar.NextColor(n)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.Exec(
		`INSERT INTO time_blocks (id, project, start_date, end_date, color, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Project, calendar.FormatDate(b.StartDate), calendar.FormatDate(b.EndDate), b.Color, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	return s.GetBlock(b.ID)
}

func (s *Store) GetBlock(id string) (*calendar.TimeBlock, error) {
	b, err := scanBlock(s.db.QueryRow(
		`SELECT id, project, start_date, end_date, color FROM time_blocks WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get block %s: %w", id, ErrBlockNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get block %s: %w", id, err)
	}
	return b, nil
}

func (s *Store) ListBlocks() ([]calendar.TimeBlock, error) {
	rows, err := s.db.Query(
		`SELECT id, project, start_date, end_date, color FROM time_blocks ORDER BY start_date, created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	defer rows.Close()

	var blocks []calendar.TimeBlock
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

// UpdateBlock replaces project, range and colour of an existing block. An
// empty colour keeps the stored one.
func (s *Store) UpdateBlock(b calendar.TimeBlock) error {
	cur, err := s.GetBlock(b.ID)
	if err != nil {
		return err
	}
	if b.Color == "" {
		b.Color = cur.Color
	}
	if err := b.Validate(); err != nil {
		return err
	}
	_, err = s.db.Exec(
		`UPDATE time_blocks SET project = ?, start_date = ?, end_date = ?, color = ? WHERE id = ?`,
		b.Project, calendar.FormatDate(b.StartDate), calendar.FormatDate(b.EndDate), b.Color, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update block %s: %w", b.ID, err)
	}
	return nil
}

// DeleteBlock removes a block. Unknown ids are ignored.
func (s *Store) DeleteBlock(id string) error {
	if _, err := s.db.Exec(`DELETE FROM time_blocks WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete block %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBlock(r rowScanner) (*calendar.TimeBlock, error) {
	b := &calendar.TimeBlock{}
	var start, end string
	if err := r.Scan(&b.ID, &b.Project, &start, &end, &b.Color); err != nil {
		return nil, err
	}
	var err error
	if b.StartDate, err = calendar.ParseDate(start); err != nil {
		return nil, err
	}
	if b.EndDate, err = calendar.ParseDate(end); err != nil {
		return nil, err
	}
	return b, nil
}
