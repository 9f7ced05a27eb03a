package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"sheetlog/directory"
	"sheetlog/worklog"
)

type CSVWriter struct{}

func (w *CSVWriter) Write(path string, entries []worklog.Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv output %s: %w", path, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(directory.Header); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, entry := range entries {
		row := []string{
			entry.Date,
			entry.User,
			entry.Project,
			entry.Task,
			strconv.FormatFloat(entry.DurationH, 'f', -1, 64),
			entry.Notes,
			entry.IdempotencyKey,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}
