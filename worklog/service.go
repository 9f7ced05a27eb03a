package worklog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"sheetlog/internal/timeutil"
)

// Validation errors surfaced to callers before any remote call is made.
var (
	ErrUserRequired       = errors.New("user email is required")
	ErrUserAndKeyRequired = errors.New("user email and idempotency_key are required")
)

// Directory is the spreadsheet directory and row access the orchestrator
// runs on. Satisfied by *directory.Directory.
type Directory interface {
	ResolveOrCreate(ctx context.Context, userEmail string) (string, error)
	ListDataRows(ctx context.Context, spreadsheetID string) [][]any
	AppendRow(ctx context.Context, spreadsheetID string, row []any) error
	OverwriteRow(ctx context.Context, spreadsheetID string, rowIndex0 int, row []any) error
	Share(ctx context.Context, spreadsheetID, principalEmail, role string) bool
}

// Service orchestrates append and update operations. It keeps no state of
// its own; everything lives in the remote spreadsheet.
type Service struct {
	dir       Directory
	shareRole string

	today  func() string
	newKey func() string
}

func NewService(dir Directory, shareRole string) *Service {
	return &Service{
		dir:       dir,
		shareRole: shareRole,
		today:     timeutil.Today,
		newKey:    generateKey,
	}
}

// Append adds one worklog row, deduplicated by idempotency key. When the
// payload carries a key that already exists in the user's spreadsheet the
// call short-circuits with StatusDuplicate and writes nothing; when it
// carries no key a fresh one is generated (without a duplicate scan).
//
// The check-then-append sequence is not serialized: concurrent appends with
// the same key can both pass the scan.
func (s *Service) Append(ctx context.Context, payload Payload, autoShare bool) (Result, error) {
	if payload.User == "" {
		return Result{}, ErrUserRequired
	}

	spreadsheetID, err := s.dir.ResolveOrCreate(ctx, payload.User)
	if err != nil {
		return Result{}, fmt.Errorf("resolve spreadsheet for %s: %w", payload.User, err)
	}

	if autoShare {
		// Best effort; a pre-existing grant is the common failure.
		s.dir.Share(ctx, spreadsheetID, payload.User, s.shareRole)
	}

	if payload.IdempotencyKey != "" {
		for _, row := range s.dir.ListDataRows(ctx, spreadsheetID) {
			if cellText(row, colKey) == payload.IdempotencyKey {
				return Result{
					Status:         StatusDuplicate,
					SpreadsheetID:  spreadsheetID,
					IdempotencyKey: payload.IdempotencyKey,
				}, nil
			}
		}
	} else {
		payload.IdempotencyKey = s.newKey()
	}

	if err := s.dir.AppendRow(ctx, spreadsheetID, s.normalize(payload)); err != nil {
		return Result{}, err
	}

	return Result{
		Status:         StatusOK,
		SpreadsheetID:  spreadsheetID,
		IdempotencyKey: payload.IdempotencyKey,
	}, nil
}

// Update locates the first row carrying the payload's idempotency key and
// overwrites it in place, merging payload fields over the stored values.
// The user and idempotency key columns are never altered.
func (s *Service) Update(ctx context.Context, payload Payload) (Result, error) {
	if payload.User == "" || payload.IdempotencyKey == "" {
		return Result{}, ErrUserAndKeyRequired
	}

	spreadsheetID, err := s.dir.ResolveOrCreate(ctx, payload.User)
	if err != nil {
		return Result{}, fmt.Errorf("resolve spreadsheet for %s: %w", payload.User, err)
	}

	rows := s.dir.ListDataRows(ctx, spreadsheetID)
	rowIndex := -1
	var current []any
	for index, row := range rows {
		if cellText(row, colKey) == payload.IdempotencyKey {
			rowIndex = index
			current = row
			break
		}
	}
	if rowIndex < 0 {
		return Result{Status: StatusNotFound, SpreadsheetID: spreadsheetID}, nil
	}

	if err := s.dir.OverwriteRow(ctx, spreadsheetID, rowIndex, merge(current, payload)); err != nil {
		return Result{}, err
	}

	return Result{Status: StatusOK, SpreadsheetID: spreadsheetID}, nil
}

// normalize flattens a payload into the fixed row order, applying the
// append defaults: today's date, empty strings, zero duration.
func (s *Service) normalize(payload Payload) []any {
	date := s.today()
	if payload.Date != nil {
		date = *payload.Date
	}

	var duration float64
	if payload.DurationH != nil {
		duration = float64(*payload.DurationH)
	}

	return []any{
		date,
		payload.User,
		stringOrEmpty(payload.Project),
		stringOrEmpty(payload.Task),
		duration,
		stringOrEmpty(payload.Notes),
		payload.IdempotencyKey,
	}
}

// merge overlays the payload's present fields onto the stored row. Absent
// fields keep their stored value; user and key are immutable.
func merge(current []any, payload Payload) []any {
	merged := make([]any, columnCount)
	for i := range merged {
		if i < len(current) {
			merged[i] = current[i]
		} else {
			merged[i] = ""
		}
	}

	if payload.Date != nil {
		merged[colDate] = *payload.Date
	}
	if payload.Project != nil {
		merged[colProject] = *payload.Project
	}
	if payload.Task != nil {
		merged[colTask] = *payload.Task
	}
	if payload.DurationH != nil {
		merged[colDuration] = float64(*payload.DurationH)
	}
	if payload.Notes != nil {
		merged[colNotes] = *payload.Notes
	}

	return merged
}

func stringOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func generateKey() string {
	return "key_" + uuid.NewString()
}
