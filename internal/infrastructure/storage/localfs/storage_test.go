package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMoveRelocatesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.pdf")
	dst := filepath.Join(dir, "nested", "dst.pdf")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	store := New()
	ctx := context.Background()
	if err := store.EnsureDir(ctx, filepath.Dir(dst)); err != nil {
		t.Fatal(err)
	}
	if err := store.Move(ctx, src, dst); err != nil {
		t.Fatalf("Move() error = %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "payload" {
		t.Fatalf("destination content = %q, %v", data, err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source still exists after move")
	}
}

func TestExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	store := New()
	ctx := context.Background()

	ok, err := store.Exists(ctx, path)
	if err != nil || ok {
		t.Fatalf("Exists(missing) = %v, %v", ok, err)
	}
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err = store.Exists(ctx, path)
	if err != nil || !ok {
		t.Fatalf("Exists(present) = %v, %v", ok, err)
	}
}
