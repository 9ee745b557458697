package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ryclabs/docpilot/internal/core/domain"
)

type chunkerFake struct{}

func (chunkerFake) Split(text string) []string {
	if text == "" {
		return nil
	}
	return []string{text}
}

type embedderFake struct {
	err error
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 2, 3}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{1, 2, 3}, nil
}

type capturingIndex struct {
	labels map[string]domain.DocumentType
}

func (f *capturingIndex) Query(context.Context, string, int) ([]domain.Neighbor, error) {
	return nil, nil
}

func (f *capturingIndex) IndexReference(_ context.Context, label domain.DocumentType, name string, _ []string, _ [][]float32) error {
	if f.labels == nil {
		f.labels = make(map[string]domain.DocumentType)
	}
	f.labels[name] = label
	return nil
}

type fileExtractor struct{}

func (fileExtractor) Extract(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

func TestIngestDirectoryLabelsByFilenameThenContent(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"facture_acme.txt": "montant total 120 EUR",
		"ref_doc.txt":      "monthly payroll summary for staff",
		"misc.txt":         "meeting notes",
		".hidden":          "ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	index := &capturingIndex{}
	ing := NewReferenceIngest(fileExtractor{}, chunkerFake{}, &embedderFake{}, index, testLogger())

	indexed, err := ing.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IngestDirectory() error = %v", err)
	}
	if indexed != 3 {
		t.Fatalf("indexed = %d, want 3", indexed)
	}
	if index.labels["facture_acme.txt"] != domain.TypeInvoice {
		t.Fatalf("filename label = %s, want invoice", index.labels["facture_acme.txt"])
	}
	if index.labels["ref_doc.txt"] != domain.TypePayroll {
		t.Fatalf("content label = %s, want payroll", index.labels["ref_doc.txt"])
	}
	if index.labels["misc.txt"] != domain.TypeOther {
		t.Fatalf("unmatched label = %s, want other", index.labels["misc.txt"])
	}
}

func TestIngestDirectorySkipsFailedEmbeddings(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "contract_x.txt"), []byte("terms"), 0o644); err != nil {
		t.Fatal(err)
	}

	ing := NewReferenceIngest(fileExtractor{}, chunkerFake{}, &embedderFake{err: errors.New("embedder down")}, &capturingIndex{}, testLogger())
	indexed, err := ing.IngestDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("IngestDirectory() error = %v", err)
	}
	if indexed != 0 {
		t.Fatalf("indexed = %d, want 0", indexed)
	}
}
