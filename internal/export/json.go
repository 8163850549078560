package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type document struct {
	ExportedAt string `json:"exported_at" yaml:"exported_at"`
	Count      int    `json:"count" yaml:"count"`
	Rows       []Row  `json:"rows" yaml:"rows"`
}

func newDocument(rows []Row) document {
	return document{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(rows),
		Rows:       rows,
	}
}

func ToJSON(rows []Row, path string) error {
	data, err := json.MarshalIndent(newDocument(rows), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
