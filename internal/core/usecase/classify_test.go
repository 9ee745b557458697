package usecase

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/ryclabs/docpilot/internal/core/domain"
)

type indexFake struct {
	neighbors []domain.Neighbor
	err       error
	queries   []string
}

func (f *indexFake) Query(_ context.Context, text string, _ int) ([]domain.Neighbor, error) {
	f.queries = append(f.queries, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.neighbors, nil
}

func (f *indexFake) IndexReference(context.Context, domain.DocumentType, string, []string, [][]float32) error {
	return nil
}

type generatorFake struct {
	fn         func(prompt string) (string, error)
	imageCalls int
}

func (f *generatorFake) Generate(_ context.Context, prompt string) (string, error) {
	return f.fn(prompt)
}

func (f *generatorFake) GenerateWithImage(_ context.Context, prompt string, _ []byte) (string, error) {
	f.imageCalls++
	return f.fn(prompt)
}

type extractFake struct {
	text string
	err  error
}

func (f *extractFake) Extract(context.Context, string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestClassifySimilarityParsesLooseReply(t *testing.T) {
	index := &indexFake{neighbors: []domain.Neighbor{
		{Type: domain.TypeInvoice, Name: "ref_invoice.pdf", Score: 0.91},
	}}
	gen := &generatorFake{fn: func(string) (string, error) {
		return "This document is clearly an Invoice from a supplier.", nil
	}}
	c := NewClassifier(index, gen, &extractFake{text: "total due 42 EUR"}, testLogger())

	got := c.Classify(context.Background(), domain.Document{Filename: "scan_0042.pdf", SourcePath: "x"})
	if got != domain.TypeInvoice {
		t.Fatalf("Classify() = %s, want invoice", got)
	}
	if len(index.queries) != 1 {
		t.Fatalf("expected one index query, got %d", len(index.queries))
	}
}

func TestClassifyFallsThroughToDirectInference(t *testing.T) {
	index := &indexFake{err: errors.New("collection missing")}
	gen := &generatorFake{fn: func(string) (string, error) {
		return "payroll", nil
	}}
	c := NewClassifier(index, gen, &extractFake{}, testLogger())

	got := c.Classify(context.Background(), domain.Document{Filename: "doc.pdf", SourcePath: "x"})
	if got != domain.TypePayroll {
		t.Fatalf("Classify() = %s, want payroll", got)
	}
}

func TestClassifyDirectRequiresExactSingleWord(t *testing.T) {
	gen := &generatorFake{fn: func(string) (string, error) {
		return "this is probably a payroll slip", nil
	}}
	c := NewClassifier(nil, gen, &extractFake{}, testLogger())

	// Direct inference reply is not an exact closed-set word, so the
	// keyword stage decides from the filename.
	got := c.Classify(context.Background(), domain.Document{Filename: "Facture_TEST.pdf", SourcePath: "x"})
	if got != domain.TypeInvoice {
		t.Fatalf("Classify() = %s, want invoice", got)
	}
}

func TestClassifyKeywordPriorityOrder(t *testing.T) {
	gen := &generatorFake{fn: func(string) (string, error) {
		return "", errors.New("inference unavailable")
	}}
	c := NewClassifier(nil, gen, &extractFake{}, testLogger())

	// Filename matches both invoice and statement keywords; invoice has
	// higher priority.
	got := c.Classify(context.Background(), domain.Document{Filename: "facture_releve_2025.pdf"})
	if got != domain.TypeInvoice {
		t.Fatalf("Classify() = %s, want invoice", got)
	}
}

func TestClassifyEveryStageErrorReturnsOther(t *testing.T) {
	index := &indexFake{err: errors.New("index down")}
	gen := &generatorFake{fn: func(string) (string, error) {
		return "", errors.New("inference down")
	}}
	c := NewClassifier(index, gen, &extractFake{err: errors.New("unreadable")}, testLogger())

	got := c.Classify(context.Background(), domain.Document{Filename: "mystery.bin", SourcePath: "x"})
	if got != domain.TypeOther {
		t.Fatalf("Classify() = %s, want other", got)
	}
}

func TestClassifyKeywordStageStaysInClosedSet(t *testing.T) {
	gen := &generatorFake{fn: func(string) (string, error) {
		return "", errors.New("down")
	}}
	c := NewClassifier(nil, gen, &extractFake{}, testLogger())

	valid := make(map[domain.DocumentType]bool)
	for _, l := range domain.DocumentTypes() {
		valid[l] = true
	}
	for _, filename := range []string{
		"Fiche_de_paie_dec.pdf", "contrat_2024.pdf", "recu_paiement.jpg",
		"bank_statement.pdf", "notes.txt", "IMG_0001.png", "",
	} {
		got := c.Classify(context.Background(), domain.Document{Filename: filename})
		if !valid[got] {
			t.Fatalf("Classify(%q) = %s, outside closed set", filename, got)
		}
	}
}

func TestClassifyBatchIsPerDocumentIndependent(t *testing.T) {
	gen := &generatorFake{fn: func(string) (string, error) {
		return "", errors.New("down")
	}}
	c := NewClassifier(nil, gen, &extractFake{}, testLogger())

	docs := []domain.Document{
		{Filename: "facture_a.pdf"},
		{Filename: "payroll_b.pdf"},
		{Filename: "memo.txt"},
	}
	got := c.ClassifyBatch(context.Background(), docs)
	if len(got) != 3 {
		t.Fatalf("ClassifyBatch() returned %d entries, want 3", len(got))
	}
	if got["facture_a.pdf"] != domain.TypeInvoice ||
		got["payroll_b.pdf"] != domain.TypePayroll ||
		got["memo.txt"] != domain.TypeOther {
		t.Fatalf("unexpected batch result: %v", got)
	}
}
