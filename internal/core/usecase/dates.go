package usecase

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ryclabs/docpilot/internal/core/domain"
	"github.com/ryclabs/docpilot/internal/core/ports"
)

const dateExcerptChars = 800

var (
	// Strict calendar-shaped reply accepted from the inference service.
	reContentDate = regexp.MustCompile(`(20\d{2})-(0[1-9]|1[0-2])-([0-2]\d|3[01])`)

	// Filename patterns, tried in this fixed order; first match wins.
	reCompactDate   = regexp.MustCompile(`(20\d{2})(0[1-9]|1[0-2])([0-2]\d|3[01])`)
	reSeparatedDate = regexp.MustCompile(`(20\d{2})[-_](0[1-9]|1[0-2])[-_]([0-2]\d|3[01])`)
	reBareYear      = regexp.MustCompile(`_(20\d{2})_`)
)

// monthPatterns recognizes English and French month names (accented
// variants included) adjacent to a 4-digit year, normalized to day 1.
var monthPatterns = []struct {
	re    *regexp.Regexp
	month string
}{
	{regexp.MustCompile(`jan(?:uary|vier)?[\s_-]?(20\d{2})`), "01"},
	{regexp.MustCompile(`f[eé]v(?:rier)?[\s_-]?(20\d{2})`), "02"},
	{regexp.MustCompile(`mar(?:ch|s)?[\s_-]?(20\d{2})`), "03"},
	{regexp.MustCompile(`avr(?:il)?[\s_-]?(20\d{2})`), "04"},
	{regexp.MustCompile(`ma[iy][\s_-]?(20\d{2})`), "05"},
	{regexp.MustCompile(`jun[e]?[\s_-]?(20\d{2})`), "06"},
	{regexp.MustCompile(`jul(?:y|illet)?[\s_-]?(20\d{2})`), "07"},
	{regexp.MustCompile(`ao[uû]t?[\s_-]?(20\d{2})`), "08"},
	{regexp.MustCompile(`sep(?:tember|tembre)?[\s_-]?(20\d{2})`), "09"},
	{regexp.MustCompile(`oct(?:ober|obre)?[\s_-]?(20\d{2})`), "10"},
	{regexp.MustCompile(`nov(?:ember|embre)?[\s_-]?(20\d{2})`), "11"},
	{regexp.MustCompile(`d[eé]c(?:ember|embre)?[\s_-]?(20\d{2})`), "12"},
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// DateResolver produces a YYYYMMDD token for a document. Content-based
// resolution is tried first, then filename patterns, then the current
// date: an unresolvable date must never block the pipeline.
type DateResolver struct {
	generator ports.TextGenerator
	extractor ports.TextExtractor
	logger    *slog.Logger
	now       func() time.Time
}

func NewDateResolver(generator ports.TextGenerator, extractor ports.TextExtractor, logger *slog.Logger) *DateResolver {
	return &DateResolver{
		generator: generator,
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}
}

func (r *DateResolver) Resolve(ctx context.Context, doc domain.Document) string {
	if token := r.resolveFromContent(ctx, doc); token != "" {
		return token
	}
	if token := ResolveDateFromFilename(doc.Filename); token != "" {
		return token
	}
	r.logger.Warn("no date resolved, using current date", "filename", doc.Filename)
	return r.now().Format("20060102")
}

func (r *DateResolver) resolveFromContent(ctx context.Context, doc domain.Document) string {
	if doc.SourcePath == "" || r.generator == nil {
		return ""
	}

	ext := strings.ToLower(filepath.Ext(doc.Filename))
	var reply string
	var err error

	switch {
	case imageExtensions[ext]:
		var image []byte
		image, err = os.ReadFile(doc.SourcePath)
		if err == nil {
			reply, err = r.generator.GenerateWithImage(ctx, visionDatePrompt, image)
		}
	default:
		var text string
		text, err = r.extractor.Extract(ctx, doc.SourcePath)
		if err == nil {
			if strings.TrimSpace(text) == "" {
				return ""
			}
			reply, err = r.generator.Generate(ctx, buildTextDatePrompt(doc.Filename, text))
		}
	}
	if err != nil {
		r.logger.Debug("content date extraction failed", "filename", doc.Filename, "error", err)
		return ""
	}

	match := reContentDate.FindStringSubmatch(reply)
	if match == nil {
		return ""
	}
	token := match[1] + match[2] + match[3]
	r.logger.Info("date resolved from content", "filename", doc.Filename, "date", token)
	return token
}

// ResolveDateFromFilename applies the filename pattern cascade. It
// returns "" when nothing matches. A bare year inside an unrelated
// identifier still matches: this is a best-effort fallback, not a
// precise contract.
func ResolveDateFromFilename(filename string) string {
	if m := reCompactDate.FindStringSubmatch(filename); m != nil {
		return m[1] + m[2] + m[3]
	}
	if m := reSeparatedDate.FindStringSubmatch(filename); m != nil {
		return m[1] + m[2] + m[3]
	}
	lowered := strings.ToLower(filename)
	for _, p := range monthPatterns {
		if m := p.re.FindStringSubmatch(lowered); m != nil {
			return m[1] + p.month + "01"
		}
	}
	if m := reBareYear.FindStringSubmatch(filename); m != nil {
		return m[1] + "0101"
	}
	return ""
}
