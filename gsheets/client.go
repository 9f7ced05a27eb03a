// Package gsheets talks to the Google Drive and Sheets APIs. The Client
// interface is the complete document-service surface the rest of the
// application depends on, so tests can substitute an in-memory fake.
package gsheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const mimeSpreadsheet = "application/vnd.google-apps.spreadsheet"

// Client defines the document-service operations the worklog receiver needs.
type Client interface {
	// Find returns the id of a non-trashed spreadsheet with the exact name
	// inside the parent folder, or "" if there is none.
	Find(ctx context.Context, name, parentFolderID string) (string, error)
	// Create makes a new spreadsheet with a single sheet of the given size.
	Create(ctx context.Context, title, sheetTitle string, rowCount, columnCount int64) (string, error)
	MoveIntoFolder(ctx context.Context, fileID, folderID string) error
	// WriteRange overwrites the given range with literal values.
	WriteRange(ctx context.Context, spreadsheetID, rangeSpec string, values [][]any) error
	// AppendRange appends one row after the last data row of the range.
	AppendRange(ctx context.Context, spreadsheetID, rangeSpec string, row []any) error
	ReadRange(ctx context.Context, spreadsheetID, rangeSpec string) ([][]any, error)
	GrantAccess(ctx context.Context, fileID, principal, role string, notify bool) error
}

// File identifies a Drive file in folder listings.
type File struct {
	ID   string
	Name string
}

// GoogleClient implements Client against the live Drive and Sheets services.
type GoogleClient struct {
	drive  *drive.Service
	sheets *sheets.Service
}

// NewGoogleClient builds a client from service-account credentials with
// Drive and Spreadsheets scopes.
func NewGoogleClient(ctx context.Context, credentialsPath string) (*GoogleClient, error) {
	if strings.TrimSpace(credentialsPath) == "" {
		return nil, errors.New("google credentials path is required")
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read google credentials: %w", err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveScope, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, creds.TokenSource)

	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	sheetsSvc, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &GoogleClient{drive: driveSvc, sheets: sheetsSvc}, nil
}

func (c *GoogleClient) Find(ctx context.Context, name, parentFolderID string) (string, error) {
	list, err := c.drive.Files.List().
		Q(FindQuery(name, parentFolderID)).
		Fields("files(id,name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("list drive files: %w", err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (c *GoogleClient) Create(ctx context.Context, title, sheetTitle string, rowCount, columnCount int64) (string, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{Title: title},
		Sheets: []*sheets.Sheet{{
			Properties: &sheets.SheetProperties{
				Title: sheetTitle,
				GridProperties: &sheets.GridProperties{
					RowCount:    rowCount,
					ColumnCount: columnCount,
				},
			},
		}},
	}

	created, err := c.sheets.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create spreadsheet: %w", err)
	}
	return created.SpreadsheetId, nil
}

func (c *GoogleClient) MoveIntoFolder(ctx context.Context, fileID, folderID string) error {
	file, err := c.drive.Files.Get(fileID).Fields("parents").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get file parents: %w", err)
	}

	call := c.drive.Files.Update(fileID, nil).AddParents(folderID)
	if len(file.Parents) > 0 {
		call = call.RemoveParents(strings.Join(file.Parents, ","))
	}
	if _, err := call.Context(ctx).Do(); err != nil {
		return fmt.Errorf("move file into folder: %w", err)
	}
	return nil
}

func (c *GoogleClient) WriteRange(ctx context.Context, spreadsheetID, rangeSpec string, values [][]any) error {
	body := &sheets.ValueRange{Values: values}
	_, err := c.sheets.Spreadsheets.Values.Update(spreadsheetID, rangeSpec, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write range %s: %w", rangeSpec, err)
	}
	return nil
}

func (c *GoogleClient) AppendRange(ctx context.Context, spreadsheetID, rangeSpec string, row []any) error {
	body := &sheets.ValueRange{Values: [][]any{row}}
	_, err := c.sheets.Spreadsheets.Values.Append(spreadsheetID, rangeSpec, body).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append to range %s: %w", rangeSpec, err)
	}
	return nil
}

func (c *GoogleClient) ReadRange(ctx context.Context, spreadsheetID, rangeSpec string) ([][]any, error) {
	response, err := c.sheets.Spreadsheets.Values.Get(spreadsheetID, rangeSpec).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", rangeSpec, err)
	}
	return response.Values, nil
}

func (c *GoogleClient) GrantAccess(ctx context.Context, fileID, principal, role string, notify bool) error {
	permission := &drive.Permission{
		Type:         "user",
		Role:         role,
		EmailAddress: principal,
	}
	_, err := c.drive.Permissions.Create(fileID, permission).
		SendNotificationEmail(notify).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("grant %s access to %s: %w", role, principal, err)
	}
	return nil
}

// ListFolder is a diagnostic helper (used by the check command) and is
// deliberately not part of the Client interface.
func (c *GoogleClient) ListFolder(ctx context.Context, folderID string, max int64) ([]File, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false and mimeType = '%s'",
		escapeQueryValue(folderID), mimeSpreadsheet)

	list, err := c.drive.Files.List().
		Q(query).
		Fields("files(id,name)").
		PageSize(max).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folderID, err)
	}

	files := make([]File, 0, len(list.Files))
	for _, f := range list.Files {
		files = append(files, File{ID: f.Id, Name: f.Name})
	}
	return files, nil
}

// FindQuery builds the Drive search expression for an exact-name,
// non-trashed spreadsheet lookup inside one folder.
func FindQuery(name, parentFolderID string) string {
	return fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false and mimeType = '%s'",
		escapeQueryValue(name), escapeQueryValue(parentFolderID), mimeSpreadsheet)
}

// Drive query strings quote values with single quotes; backslashes and
// quotes inside values must be escaped.
func escapeQueryValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}
