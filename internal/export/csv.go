package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

var csvHeader = []string{"Kind", "ID", "Date", "Title", "Start", "End", "Minutes", "Duration", "Completed", "Notes"}

func ToCSV(rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()
	return WriteCSV(f, rows)
}

func WriteCSV(out io.Writer, rows []Row) error {
	w := csv.NewWriter(out)
	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range rows {
		endStr := ""
		if r.CompletedAt != nil {
			endStr = r.CompletedAt.Local().Format(time.RFC3339)
		}
		row := []string{
			r.Kind,
			r.ID,
			r.Date,
			r.Title,
			r.StartedAt.Local().Format(time.RFC3339),
			endStr,
			strconv.Itoa(r.Minutes),
			formatMinutes(r.Minutes),
			strconv.FormatBool(r.Completed),
			r.Notes,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
