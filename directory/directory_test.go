package directory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

type call struct {
	op   string
	args []any
}

// fakeClient is an in-memory gsheets.Client that records every call.
type fakeClient struct {
	calls []call

	byName   map[string]string   // spreadsheet name -> id
	cells    map[string][][]any  // spreadsheet id -> rows (row 0 = header)
	created  int
	findErr  error
	readErr  error
	writeErr error
	moveErr  error
	grantErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		byName: make(map[string]string),
		cells:  make(map[string][][]any),
	}
}

func (f *fakeClient) record(op string, args ...any) {
	f.calls = append(f.calls, call{op: op, args: args})
}

func (f *fakeClient) Find(ctx context.Context, name, parentFolderID string) (string, error) {
	f.record("find", name, parentFolderID)
	if f.findErr != nil {
		return "", f.findErr
	}
	return f.byName[name], nil
}

func (f *fakeClient) Create(ctx context.Context, title, sheetTitle string, rowCount, columnCount int64) (string, error) {
	f.record("create", title, sheetTitle, rowCount, columnCount)
	f.created++
	id := fmt.Sprintf("sheet-%d", f.created)
	f.byName[title] = id
	f.cells[id] = nil
	return id, nil
}

func (f *fakeClient) MoveIntoFolder(ctx context.Context, fileID, folderID string) error {
	f.record("move", fileID, folderID)
	return f.moveErr
}

func (f *fakeClient) WriteRange(ctx context.Context, spreadsheetID, rangeSpec string, values [][]any) error {
	f.record("write", spreadsheetID, rangeSpec)
	if f.writeErr != nil {
		return f.writeErr
	}
	if rangeSpec == HeaderRange {
		if len(f.cells[spreadsheetID]) == 0 {
			f.cells[spreadsheetID] = append(f.cells[spreadsheetID], values[0])
		} else {
			f.cells[spreadsheetID][0] = values[0]
		}
		return nil
	}
	// Row overwrites address a single absolute row like "Logs!A4".
	var rowNumber int
	if _, err := fmt.Sscanf(rangeSpec, SheetTitle+"!A%d", &rowNumber); err != nil {
		return fmt.Errorf("unexpected range %q", rangeSpec)
	}
	for len(f.cells[spreadsheetID]) < rowNumber {
		f.cells[spreadsheetID] = append(f.cells[spreadsheetID], nil)
	}
	f.cells[spreadsheetID][rowNumber-1] = values[0]
	return nil
}

func (f *fakeClient) AppendRange(ctx context.Context, spreadsheetID, rangeSpec string, row []any) error {
	f.record("append", spreadsheetID, rangeSpec)
	if f.writeErr != nil {
		return f.writeErr
	}
	f.cells[spreadsheetID] = append(f.cells[spreadsheetID], row)
	return nil
}

func (f *fakeClient) ReadRange(ctx context.Context, spreadsheetID, rangeSpec string) ([][]any, error) {
	f.record("read", spreadsheetID, rangeSpec)
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.cells[spreadsheetID], nil
}

func (f *fakeClient) GrantAccess(ctx context.Context, fileID, principal, role string, notify bool) error {
	f.record("grant", fileID, principal, role, notify)
	return f.grantErr
}

func (f *fakeClient) ops() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.op)
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDirectory(client *fakeClient) *Directory {
	return New(client, "root-folder", "Logs!A:G", testLogger())
}

func TestResolveOrCreate_ReturnsExistingSpreadsheet(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.byName["Worklog - u@x.com"] = "sheet-existing"
	dir := newTestDirectory(client)

	id, err := dir.ResolveOrCreate(context.Background(), "u@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "sheet-existing" {
		t.Fatalf("expected existing id, got %q", id)
	}
	if client.created != 0 {
		t.Fatalf("expected no spreadsheet creation, got %d", client.created)
	}
}

func TestResolveOrCreate_ProvisionsNewSpreadsheet(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	dir := newTestDirectory(client)

	id, err := dir.ResolveOrCreate(context.Background(), "u@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a spreadsheet id")
	}

	wantOps := []string{"find", "create", "move", "write"}
	gotOps := client.ops()
	if len(gotOps) != len(wantOps) {
		t.Fatalf("expected ops %v, got %v", wantOps, gotOps)
	}
	for i := range wantOps {
		if gotOps[i] != wantOps[i] {
			t.Fatalf("expected ops %v, got %v", wantOps, gotOps)
		}
	}

	createCall := client.calls[1]
	if createCall.args[0] != "Worklog - u@x.com" || createCall.args[1] != SheetTitle {
		t.Fatalf("unexpected create args: %v", createCall.args)
	}
	if createCall.args[2] != int64(1000) || createCall.args[3] != int64(7) {
		t.Fatalf("unexpected sheet dimensions: %v", createCall.args)
	}

	header := client.cells[id][0]
	if len(header) != len(Header) {
		t.Fatalf("header width %d, want %d", len(header), len(Header))
	}
	for i, column := range Header {
		if header[i] != column {
			t.Fatalf("header[%d] = %v, want %q", i, header[i], column)
		}
	}
}

func TestResolveOrCreate_LookupFailureFallsThroughToCreate(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.findErr = errors.New("drive unavailable")
	dir := newTestDirectory(client)

	id, err := dir.ResolveOrCreate(context.Background(), "u@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" || client.created != 1 {
		t.Fatalf("expected provisioning after failed lookup, id=%q created=%d", id, client.created)
	}
}

func TestResolveOrCreate_MoveFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.moveErr = errors.New("folder gone")
	dir := newTestDirectory(client)

	if _, err := dir.ResolveOrCreate(context.Background(), "u@x.com"); err != nil {
		t.Fatalf("move failure should not propagate: %v", err)
	}
}

func TestResolve_DoesNotProvision(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	dir := newTestDirectory(client)

	_, err := dir.Resolve(context.Background(), "u@x.com")
	if !errors.Is(err, ErrSpreadsheetNotFound) {
		t.Fatalf("expected ErrSpreadsheetNotFound, got %v", err)
	}
	if client.created != 0 {
		t.Fatalf("Resolve must not create spreadsheets")
	}
}

func TestListDataRows_DropsHeader(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.cells["sheet-1"] = [][]any{
		{"date", "user", "project", "task", "duration_h", "notes", "idempotency_key"},
		{"2026-08-31", "u@x.com", "P", "T", 2.5, "", "k1"},
	}
	dir := newTestDirectory(client)

	rows := dir.ListDataRows(context.Background(), "sheet-1")
	if len(rows) != 1 {
		t.Fatalf("expected 1 data row, got %d", len(rows))
	}
	if rows[0][6] != "k1" {
		t.Fatalf("unexpected row content: %v", rows[0])
	}
}

func TestListDataRows_ReadFailureDegradesToEmpty(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	client.readErr = errors.New("backend down")
	dir := newTestDirectory(client)

	if rows := dir.ListDataRows(context.Background(), "sheet-1"); len(rows) != 0 {
		t.Fatalf("expected empty result on read failure, got %v", rows)
	}
}

func TestOverwriteRow_AddressesDataRowsAfterHeader(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	dir := newTestDirectory(client)

	if err := dir.OverwriteRow(context.Background(), "sheet-1", 0, []any{"a"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := dir.OverwriteRow(context.Background(), "sheet-1", 3, []any{"b"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := client.calls[0].args[1]; got != "Logs!A2" {
		t.Fatalf("data row 0 written at %v, want Logs!A2", got)
	}
	if got := client.calls[1].args[1]; got != "Logs!A5" {
		t.Fatalf("data row 3 written at %v, want Logs!A5", got)
	}
}

func TestShare_SwallowsGrantFailure(t *testing.T) {
	t.Parallel()

	client := newFakeClient()
	dir := newTestDirectory(client)

	if !dir.Share(context.Background(), "sheet-1", "u@x.com", "writer") {
		t.Fatalf("expected successful share")
	}

	client.grantErr = errors.New("already shared")
	if dir.Share(context.Background(), "sheet-1", "u@x.com", "writer") {
		t.Fatalf("expected share failure to be reported as false")
	}

	grant := client.calls[0]
	if grant.args[2] != "writer" || grant.args[3] != false {
		t.Fatalf("unexpected grant args: %v", grant.args)
	}
}
