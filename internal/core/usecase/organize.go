package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ryclabs/docpilot/internal/core/domain"
	"github.com/ryclabs/docpilot/internal/core/ports"
)

// Organizer files classified documents into the managed store:
// {type}/{year}-{month}/{filename}. Duplicates are deleted from staging
// and never copied; filename collisions get numeric suffixes. Processing
// is serial, so collision avoidance only observes the filesystem.
type Organizer struct {
	store      ports.FileStore
	duplicates ports.DuplicateFinder
	dates      ports.DateResolver
	inboundDir string
	storeRoot  string
	logger     *slog.Logger
}

func NewOrganizer(
	store ports.FileStore,
	duplicates ports.DuplicateFinder,
	dates ports.DateResolver,
	inboundDir, storeRoot string,
	logger *slog.Logger,
) *Organizer {
	return &Organizer{
		store:      store,
		duplicates: duplicates,
		dates:      dates,
		inboundDir: inboundDir,
		storeRoot:  storeRoot,
		logger:     logger,
	}
}

func (o *Organizer) OrganizeBatch(ctx context.Context, labels map[string]domain.DocumentType) domain.OrganizeResult {
	var result domain.OrganizeResult

	filenames := make([]string, 0, len(labels))
	for filename := range labels {
		filenames = append(filenames, filename)
	}
	sort.Strings(filenames)

	for _, filename := range filenames {
		dest, err := o.organizeOne(ctx, filename, labels[filename])
		switch {
		case err == nil && dest == "":
			result.Duplicates = append(result.Duplicates, filename)
		case err == nil:
			result.Organized = append(result.Organized, domain.OrganizedFile{
				Filename:    filename,
				Destination: dest,
			})
		default:
			o.logger.Error("organization failed", "filename", filename, "error", err)
			result.Failures = append(result.Failures, domain.FileFailure{
				Filename: filename,
				Message:  err.Error(),
			})
		}
	}
	return result
}

// organizeOne returns the destination path on success and "" for a
// duplicate (source deleted, nothing moved).
func (o *Organizer) organizeOne(ctx context.Context, filename string, docType domain.DocumentType) (string, error) {
	source := filepath.Join(o.inboundDir, filename)

	exists, err := o.store.Exists(ctx, source)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	if !exists {
		return "", domain.WrapError(domain.ErrSourceMissing, "organize", fmt.Errorf("%s", filename))
	}

	label, ok := domain.ParseDocumentType(string(docType))
	if !ok {
		return "", domain.WrapError(domain.ErrInvalidInput, "organize", fmt.Errorf("unknown document type %q", docType))
	}

	existing, err := o.duplicates.FindDuplicate(ctx, source, o.storeRoot)
	if err != nil {
		return "", fmt.Errorf("duplicate check: %w", err)
	}
	if existing != "" {
		o.logger.Info("duplicate skipped", "filename", filename, "existing", existing)
		if err := o.store.Remove(ctx, source); err != nil {
			return "", fmt.Errorf("remove duplicate source: %w", err)
		}
		return "", nil
	}

	doc := domain.Document{Filename: filename, SourcePath: source}
	dateToken := o.dates.Resolve(ctx, doc)

	destDir := filepath.Join(o.storeRoot, DestinationDir(label, dateToken))
	if err := o.store.EnsureDir(ctx, destDir); err != nil {
		return "", fmt.Errorf("create destination dir: %w", err)
	}

	dest, err := o.resolveCollision(ctx, destDir, filename)
	if err != nil {
		return "", err
	}
	if err := o.store.Move(ctx, source, dest); err != nil {
		return "", fmt.Errorf("move file: %w", err)
	}

	o.logger.Info("document organized",
		"filename", filename,
		"destination", dest,
		"type", label,
		"customer", ExtractCustomer(filename),
	)
	return dest, nil
}

// resolveCollision appends _1, _2, ... before the extension until the
// destination name is free. Content duplicates were filtered earlier, so
// a taken name always means different content.
func (o *Organizer) resolveCollision(ctx context.Context, destDir, filename string) (string, error) {
	dest := filepath.Join(destDir, filename)
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	for counter := 1; ; counter++ {
		taken, err := o.store.Exists(ctx, dest)
		if err != nil {
			return "", fmt.Errorf("stat destination: %w", err)
		}
		if !taken {
			return dest, nil
		}
		dest = filepath.Join(destDir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
	}
}

// DestinationDir builds the relative storage directory for a label and
// a YYYYMMDD token: {type}/{year}-{month}.
func DestinationDir(label domain.DocumentType, dateToken string) string {
	cleaned := strings.ReplaceAll(strings.ToLower(string(label)), " ", "_")
	return filepath.Join(cleaned, dateToken[:4]+"-"+dateToken[4:6])
}

var (
	tokenSeparators = regexp.MustCompile(`[_\-\s]+`)
	customerCharset = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	pureDigits      = regexp.MustCompile(`^\d+$`)
)

// customerStopList holds document-type and month keywords (English and
// French) that can never be a customer name.
var customerStopList = map[string]bool{
	"invoice": true, "facture": true, "payroll": true, "paie": true,
	"fiche": true, "contract": true, "contrat": true, "receipt": true,
	"recu": true, "statement": true, "releve": true, "bill": true,
	"jan": true, "feb": true, "mar": true, "apr": true, "may": true,
	"jun": true, "jul": true, "aug": true, "sep": true, "oct": true,
	"nov": true, "dec": true, "january": true, "february": true,
	"march": true, "april": true, "june": true, "july": true,
	"august": true, "september": true, "october": true, "november": true,
	"december": true, "janvier": true, "fevrier": true, "mars": true,
	"avril": true, "mai": true, "juin": true, "juillet": true,
	"aout": true, "septembre": true, "octobre": true, "novembre": true,
	"decembre": true,
}

// ExtractCustomer pulls a customer name out of a filename: the first
// separator-delimited token that is not purely numeric, not a 4-digit
// year, and not a type/month keyword. The result is informational
// context only; it is not part of the destination path.
func ExtractCustomer(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	parts := tokenSeparators.Split(stem, -1)

	for _, part := range parts {
		if len(part) <= 2 || pureDigits.MatchString(part) {
			continue
		}
		if customerStopList[strings.ToLower(part)] {
			continue
		}
		return sanitizeCustomer(part)
	}
	if len(parts) > 0 && parts[0] != "" {
		return sanitizeCustomer(parts[0])
	}
	return "Unknown"
}

func sanitizeCustomer(name string) string {
	cleaned := customerCharset.ReplaceAllString(name, "")
	if cleaned == "" {
		return "Unknown"
	}
	return cleaned
}
