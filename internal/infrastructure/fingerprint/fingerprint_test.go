package fingerprint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindDuplicateIgnoresFilenames(t *testing.T) {
	staging := t.TempDir()
	store := t.TempDir()

	candidate := write(t, staging, "new_upload.pdf", []byte("same bytes"))
	existing := write(t, store, "invoice/2025-01/old_name.pdf", []byte("same bytes"))
	write(t, store, "invoice/2025-01/unrelated.pdf", []byte("different bytes"))

	got, err := New().FindDuplicate(context.Background(), candidate, store)
	if err != nil {
		t.Fatalf("FindDuplicate() error = %v", err)
	}
	if got != existing {
		t.Fatalf("FindDuplicate() = %q, want %q", got, existing)
	}
}

func TestFindDuplicateRequiresExactContent(t *testing.T) {
	staging := t.TempDir()
	store := t.TempDir()

	candidate := write(t, staging, "doc.pdf", []byte("version A"))
	write(t, store, "doc.pdf", []byte("version B"))

	got, err := New().FindDuplicate(context.Background(), candidate, store)
	if err != nil {
		t.Fatalf("FindDuplicate() error = %v", err)
	}
	if got != "" {
		t.Fatalf("FindDuplicate() = %q, want no match", got)
	}
}

func TestFindDuplicateMissingRootIsNotAnError(t *testing.T) {
	staging := t.TempDir()
	candidate := write(t, staging, "doc.pdf", []byte("x"))

	got, err := New().FindDuplicate(context.Background(), candidate, filepath.Join(staging, "never-created"))
	if err != nil || got != "" {
		t.Fatalf("FindDuplicate() = %q, %v", got, err)
	}
}

func TestHashFileIsStable(t *testing.T) {
	dir := t.TempDir()
	a := write(t, dir, "a", []byte("payload"))
	b := write(t, dir, "b", []byte("payload"))

	hashA, err := HashFile(a)
	if err != nil {
		t.Fatal(err)
	}
	hashB, err := HashFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if hashA != hashB {
		t.Fatalf("identical content produced different fingerprints")
	}
	if len(hashA) != 64 {
		t.Fatalf("unexpected digest length %d", len(hashA))
	}
}
