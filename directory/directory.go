// Package directory maps user emails to per-user worklog spreadsheets and
// exposes row-level access to the Logs sheet.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"sheetlog/gsheets"
)

const (
	// SheetTitle is the single data sheet inside every user spreadsheet.
	SheetTitle = "Logs"
	// HeaderRange addresses the fixed header row.
	HeaderRange = "Logs!A1:G1"

	namePrefix = "Worklog - "

	newSheetRows    = 1000
	newSheetColumns = 7
)

// Header is the fixed 7-column layout of the Logs sheet. Data rows start at
// sheet row 2 and follow the same column order.
var Header = []string{"date", "user", "project", "task", "duration_h", "notes", "idempotency_key"}

var ErrSpreadsheetNotFound = errors.New("no worklog spreadsheet for user")

// Directory resolves users to spreadsheets inside one root folder. It holds
// no state of its own: every call re-resolves against Drive.
type Directory struct {
	client       gsheets.Client
	rootFolderID string
	readRange    string
	log          *slog.Logger
}

func New(client gsheets.Client, rootFolderID, readRange string, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{
		client:       client,
		rootFolderID: rootFolderID,
		readRange:    readRange,
		log:          logger,
	}
}

// SpreadsheetName returns the deterministic title of a user's spreadsheet.
func SpreadsheetName(userEmail string) string {
	return namePrefix + userEmail
}

// ResolveOrCreate returns the id of the user's spreadsheet, provisioning one
// if no spreadsheet with the expected name exists in the root folder.
//
// Find-or-create is not atomic: two concurrent calls for the same new user
// can each create a spreadsheet.
func (d *Directory) ResolveOrCreate(ctx context.Context, userEmail string) (string, error) {
	name := SpreadsheetName(userEmail)

	id, err := d.client.Find(ctx, name, d.rootFolderID)
	if err != nil {
		// A failed lookup degrades to "not found" and falls through to
		// provisioning, matching the read-path error policy.
		d.log.Warn("spreadsheet lookup failed", "name", name, "error", err)
	}
	if id != "" {
		return id, nil
	}

	return d.create(ctx, name)
}

// Resolve finds an existing spreadsheet without provisioning one.
func (d *Directory) Resolve(ctx context.Context, userEmail string) (string, error) {
	name := SpreadsheetName(userEmail)

	id, err := d.client.Find(ctx, name, d.rootFolderID)
	if err != nil {
		return "", fmt.Errorf("find spreadsheet %q: %w", name, err)
	}
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrSpreadsheetNotFound, userEmail)
	}
	return id, nil
}

func (d *Directory) create(ctx context.Context, name string) (string, error) {
	id, err := d.client.Create(ctx, name, SheetTitle, newSheetRows, newSheetColumns)
	if err != nil {
		return "", fmt.Errorf("create spreadsheet %q: %w", name, err)
	}

	if err := d.client.MoveIntoFolder(ctx, id, d.rootFolderID); err != nil {
		// The spreadsheet is usable outside the root folder; it just won't
		// be discovered there. Keep going.
		d.log.Warn("move spreadsheet into root folder failed", "spreadsheet", id, "error", err)
	}

	header := make([]any, len(Header))
	for i, column := range Header {
		header[i] = column
	}
	if err := d.client.WriteRange(ctx, id, HeaderRange, [][]any{header}); err != nil {
		return "", fmt.Errorf("write header for %q: %w", name, err)
	}

	return id, nil
}

// ListDataRows reads the full data range and drops the header row. Read
// failures are logged and reported as an empty result, so callers cannot
// distinguish "no rows" from "read failed".
func (d *Directory) ListDataRows(ctx context.Context, spreadsheetID string) [][]any {
	rows, err := d.client.ReadRange(ctx, spreadsheetID, d.readRange)
	if err != nil {
		d.log.Warn("read worklog rows failed", "spreadsheet", spreadsheetID, "error", err)
		return nil
	}
	if len(rows) <= 1 {
		return nil
	}
	return rows[1:]
}

func (d *Directory) AppendRow(ctx context.Context, spreadsheetID string, row []any) error {
	if err := d.client.AppendRange(ctx, spreadsheetID, d.readRange, row); err != nil {
		return fmt.Errorf("append worklog row: %w", err)
	}
	return nil
}

// OverwriteRow replaces the data row at zero-based index rowIndex0. Data
// rows start at sheet row 2, after the header.
func (d *Directory) OverwriteRow(ctx context.Context, spreadsheetID string, rowIndex0 int, row []any) error {
	rangeSpec := fmt.Sprintf("%s!A%d", SheetTitle, rowIndex0+2)
	if err := d.client.WriteRange(ctx, spreadsheetID, rangeSpec, [][]any{row}); err != nil {
		return fmt.Errorf("overwrite worklog row %d: %w", rowIndex0, err)
	}
	return nil
}

// Share grants the principal access without a notification email. Failures
// are reported as false rather than an error: the common case is a grant
// that already exists.
func (d *Directory) Share(ctx context.Context, spreadsheetID, principalEmail, role string) bool {
	if err := d.client.GrantAccess(ctx, spreadsheetID, principalEmail, role, false); err != nil {
		d.log.Warn("share spreadsheet failed",
			"spreadsheet", spreadsheetID, "principal", principalEmail, "error", err)
		return false
	}
	return true
}
