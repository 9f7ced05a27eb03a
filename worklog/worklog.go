// Package worklog implements the append/update semantics of the webhook:
// idempotency-key deduplication, field normalization, and partial-update
// merging over the per-user spreadsheet rows.
package worklog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Column positions of the fixed 7-field row layout. The position is
// semantically meaningful: the idempotency key always lives at index 6.
const (
	colDate = iota
	colUser
	colProject
	colTask
	colDuration
	colNotes
	colKey

	columnCount
)

// Statuses reported to webhook callers.
const (
	StatusOK        = "ok"
	StatusDuplicate = "duplicate"
	StatusNotFound  = "not_found"
)

// Payload is an already-authenticated webhook request body. Optional fields
// are pointers so an update can distinguish "absent" from "set to empty".
type Payload struct {
	Date           *string `json:"date"`
	User           string  `json:"user"`
	Project        *string `json:"project"`
	Task           *string `json:"task"`
	DurationH      *Hours  `json:"duration_h"`
	Notes          *string `json:"notes"`
	IdempotencyKey string  `json:"idempotency_key"`
}

// Hours is a duration in hours that accepts JSON numbers as well as numeric
// strings; any other value coerces to zero rather than failing the request.
type Hours float64

func (h *Hours) UnmarshalJSON(data []byte) error {
	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		*h = Hours(number)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			*h = 0
			return nil
		}
		*h = Hours(parsed)
		return nil
	}

	*h = 0
	return nil
}

// Result is the outcome of an append or update operation.
type Result struct {
	Status         string `json:"status"`
	SpreadsheetID  string `json:"spreadsheetId"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Entry is a typed view of one stored row, used by the export tooling.
type Entry struct {
	Date           string
	User           string
	Project        string
	Task           string
	DurationH      float64
	Notes          string
	IdempotencyKey string
}

// EntryFromRow converts a raw sheet row into an Entry. Short rows are
// padded with zero values.
func EntryFromRow(row []any) Entry {
	return Entry{
		Date:           cellText(row, colDate),
		User:           cellText(row, colUser),
		Project:        cellText(row, colProject),
		Task:           cellText(row, colTask),
		DurationH:      cellFloat(row, colDuration),
		Notes:          cellText(row, colNotes),
		IdempotencyKey: cellText(row, colKey),
	}
}

func cellText(row []any, index int) string {
	if index >= len(row) || row[index] == nil {
		return ""
	}
	if text, ok := row[index].(string); ok {
		return text
	}
	return fmt.Sprint(row[index])
}

func cellFloat(row []any, index int) float64 {
	if index >= len(row) || row[index] == nil {
		return 0
	}
	switch value := row[index].(type) {
	case float64:
		return value
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
