package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveSignBody(t *testing.T) {
	t.Parallel()

	if _, err := resolveSignBody("", ""); err == nil {
		t.Fatalf("expected error when no body source is given")
	}
	if _, err := resolveSignBody("x", "y"); err == nil {
		t.Fatalf("expected error when both body sources are given")
	}

	body, err := resolveSignBody(`{"user":"u@x.com"}`, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"user":"u@x.com"}` {
		t.Fatalf("unexpected inline body: %s", body)
	}

	path := filepath.Join(t.TempDir(), "payload.json")
	if err := os.WriteFile(path, []byte(`{"user":"f@x.com"}`), 0o600); err != nil {
		t.Fatalf("write temp payload: %v", err)
	}
	body, err = resolveSignBody("", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != `{"user":"f@x.com"}` {
		t.Fatalf("unexpected file body: %s", body)
	}
}

func TestShellQuote(t *testing.T) {
	t.Parallel()

	if got := shellQuote(`{"a":1}`); got != `'{"a":1}'` {
		t.Fatalf("unexpected quoting: %s", got)
	}
	if got := shellQuote(`it's`); got != `'it'\''s'` {
		t.Fatalf("unexpected quoting: %s", got)
	}
}
