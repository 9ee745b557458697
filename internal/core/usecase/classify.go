package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ryclabs/docpilot/internal/core/domain"
	"github.com/ryclabs/docpilot/internal/core/ports"
)

const (
	similarityQueryChars  = 200
	directExcerptChars    = 500
	similarityContextDocs = 3
)

// classifyStage is one fallback strategy in the classification cascade.
// ok=false means the stage produced no confident closed-set match and
// the driver moves on to the next stage.
type classifyStage interface {
	name() string
	attempt(ctx context.Context, doc domain.Document, text string) (domain.DocumentType, bool, error)
}

// Classifier runs the layered decision cascade. It never fails and
// never stalls: every stage error downgrades to the next stage, and the
// final stage is deterministic with no external dependency.
type Classifier struct {
	extractor ports.TextExtractor
	stages    []classifyStage
	logger    *slog.Logger
}

func NewClassifier(
	index ports.SimilarityIndex,
	generator ports.TextGenerator,
	extractor ports.TextExtractor,
	logger *slog.Logger,
) *Classifier {
	return &Classifier{
		extractor: extractor,
		stages: []classifyStage{
			&similarityStage{index: index, generator: generator, topK: similarityContextDocs},
			&directStage{generator: generator},
			&keywordStage{},
		},
		logger: logger,
	}
}

func (c *Classifier) Classify(ctx context.Context, doc domain.Document) domain.DocumentType {
	text := c.leadingText(ctx, doc)

	for i, stage := range c.stages {
		label, ok, err := stage.attempt(ctx, doc, text)
		if err != nil {
			c.logger.Debug("classification stage failed",
				"stage", stage.name(), "filename", doc.Filename, "error", err)
			continue
		}
		if !ok {
			continue
		}
		c.logStageResult(domain.ConfidenceTier(i), stage.name(), doc.Filename, label)
		return label
	}
	return domain.TypeOther
}

func (c *Classifier) ClassifyBatch(ctx context.Context, docs []domain.Document) map[string]domain.DocumentType {
	out := make(map[string]domain.DocumentType, len(docs))
	for _, doc := range docs {
		out[doc.Filename] = c.Classify(ctx, doc)
	}
	return out
}

// leadingText extracts the document's leading content. Extraction
// failures are tolerated: the cascade still works from the filename.
func (c *Classifier) leadingText(ctx context.Context, doc domain.Document) string {
	if doc.SourcePath == "" {
		return ""
	}
	text, err := c.extractor.Extract(ctx, doc.SourcePath)
	if err != nil {
		c.logger.Debug("content extraction failed", "filename", doc.Filename, "error", err)
		return ""
	}
	return text
}

func (c *Classifier) logStageResult(tier domain.ConfidenceTier, stage, filename string, label domain.DocumentType) {
	attrs := []any{"filename", filename, "type", label, "tier", tier.String()}
	if tier == domain.TierSimilarity {
		c.logger.Info("document classified", attrs...)
		return
	}
	c.logger.Debug("document classified", append(attrs, "stage", stage)...)
}

// findLabel scans a free-text reply for any closed-set label as a loose
// case-insensitive substring. Priority follows the closed-set order, so
// an unclear multi-label reply resolves deterministically.
func findLabel(reply string) (domain.DocumentType, bool) {
	lowered := strings.ToLower(reply)
	for _, t := range domain.DocumentTypes() {
		if strings.Contains(lowered, string(t)) {
			return t, true
		}
	}
	return domain.TypeOther, false
}

type similarityStage struct {
	index     ports.SimilarityIndex
	generator ports.TextGenerator
	topK      int
}

func (s *similarityStage) name() string { return "similarity" }

func (s *similarityStage) attempt(ctx context.Context, doc domain.Document, text string) (domain.DocumentType, bool, error) {
	if s.index == nil {
		return domain.TypeOther, false, nil
	}

	query := doc.Filename
	if excerpt := truncate(text, similarityQueryChars); excerpt != "" {
		query += " " + excerpt
	}
	neighbors, err := s.index.Query(ctx, query, s.topK)
	if err != nil {
		return domain.TypeOther, false, fmt.Errorf("query similarity index: %w", err)
	}
	if len(neighbors) == 0 {
		return domain.TypeOther, false, nil
	}

	reply, err := s.generator.Generate(ctx, buildSimilarityPrompt(doc.Filename, text, neighbors))
	if err != nil {
		return domain.TypeOther, false, fmt.Errorf("similarity-aided inference: %w", err)
	}
	label, ok := findLabel(reply)
	return label, ok, nil
}

type directStage struct {
	generator ports.TextGenerator
}

func (s *directStage) name() string { return "direct" }

func (s *directStage) attempt(ctx context.Context, doc domain.Document, text string) (domain.DocumentType, bool, error) {
	reply, err := s.generator.Generate(ctx, buildDirectPrompt(doc.Filename, text))
	if err != nil {
		return domain.TypeOther, false, fmt.Errorf("direct inference: %w", err)
	}
	label, ok := domain.ParseDocumentType(reply)
	return label, ok, nil
}

// typeKeywords maps each label to its filename keyword set, spanning
// English, French and transliterated terms. Matched in closed-set
// priority order; first match wins.
var typeKeywords = []struct {
	label    domain.DocumentType
	keywords []string
}{
	{domain.TypeInvoice, []string{"invoice", "facture", "bill", "factuur"}},
	{domain.TypePayroll, []string{"payroll", "paie", "salaire", "salary", "gongzi"}},
	{domain.TypeContract, []string{"contract", "contrat", "agreement", "accord"}},
	{domain.TypeReceipt, []string{"receipt", "reçu", "recu", "recibo"}},
	{domain.TypeStatement, []string{"statement", "relevé", "releve", "bank", "bancaire"}},
}

type keywordStage struct{}

func (s *keywordStage) name() string { return "keyword" }

func (s *keywordStage) attempt(_ context.Context, doc domain.Document, _ string) (domain.DocumentType, bool, error) {
	lowered := strings.ToLower(doc.Filename)
	for _, entry := range typeKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.label, true, nil
			}
		}
	}
	return domain.TypeOther, true, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(runes[:max]))
}
