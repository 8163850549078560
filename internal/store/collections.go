package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrVersionConflict is returned by PutCollection when another writer
// updated the collection since it was read.
var ErrVersionConflict = errors.New("store: collection version conflict")

// Collection is one day-scoped record set, stored as raw JSON.
// Version 0 means the collection has never been written.
type Collection struct {
	Data    []byte
	Version int64
}

func (s *Store) GetCollection(kind, day string) (Collection, error) {
	var c Collection
	var data string
	err := s.db.QueryRow(
		`SELECT data, version FROM day_collections WHERE kind = ? AND day = ?`, kind, day,
	).Scan(&data, &c.Version)
	if err == sql.ErrNoRows {
		return Collection{}, nil
	}
	if err != nil {
		return Collection{}, fmt.Errorf("get collection %s/%s: %w", kind, day, err)
	}
	c.Data = []byte(data)
	return c, nil
}

// PutCollection writes data if the stored version still equals expect and
// returns the new version.
func (s *Store) PutCollection(kind, day string, data []byte, expect int64) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	var res sql.Result
	var err error
	if expect == 0 {
		res, err = s.db.Exec(
			`INSERT INTO day_collections (kind, day, data, version, updated_at) VALUES (?, ?, ?, 1, ?)
			 ON CONFLICT(kind, day) DO NOTHING`,
			kind, day, string(data), now,
		)
	} else {
		res, err = s.db.Exec(
			`UPDATE day_collections SET data = ?, version = version + 1, updated_at = ?
			 WHERE kind = ? AND day = ? AND version = ?`,
			string(data), now, kind, day, expect,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("put collection %s/%s: %w", kind, day, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("put collection %s/%s: %w", kind, day, err)
	}
	if n == 0 {
		return 0, fmt.Errorf("put collection %s/%s at version %d: %w", kind, day, expect, ErrVersionConflict)
	}
	return expect + 1, nil
}

// CollectionDays lists the days with a stored collection of kind, oldest first.
func (s *Store) CollectionDays(kind string) ([]string, error) {
	rows, err := s.db.Query(`SELECT day FROM day_collections WHERE kind = ? ORDER BY day`, kind)
	if err != nil {
		return nil, fmt.Errorf("list collection days: %w", err)
	}
	defer rows.Close()

	var days []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}
