package inbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestListReturnsStagedFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.pdf", ".DS_Store"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}

	docs, err := New(dir).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(docs) != 2 || docs[0].Filename != "a.pdf" || docs[1].Filename != "b.pdf" {
		t.Fatalf("unexpected listing: %+v", docs)
	}
	if docs[0].SourcePath != filepath.Join(dir, "a.pdf") {
		t.Fatalf("source path = %s", docs[0].SourcePath)
	}
}

func TestListMissingDirYieldsNothing(t *testing.T) {
	docs, err := New(filepath.Join(t.TempDir(), "missing")).List(context.Background())
	if err != nil || docs != nil {
		t.Fatalf("List() = %v, %v", docs, err)
	}
}
