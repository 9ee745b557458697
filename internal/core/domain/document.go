package domain

import "strings"

// DocumentType is the closed set of labels the classifier ever assigns.
type DocumentType string

const (
	TypeInvoice   DocumentType = "invoice"
	TypePayroll   DocumentType = "payroll"
	TypeContract  DocumentType = "contract"
	TypeReceipt   DocumentType = "receipt"
	TypeStatement DocumentType = "statement"
	TypeOther     DocumentType = "other"
)

// DocumentTypes lists all labels in keyword-match priority order,
// with the catch-all label last.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		TypeInvoice,
		TypePayroll,
		TypeContract,
		TypeReceipt,
		TypeStatement,
		TypeOther,
	}
}

// ParseDocumentType matches a string against the closed set exactly,
// ignoring case and surrounding whitespace.
func ParseDocumentType(s string) (DocumentType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for _, t := range DocumentTypes() {
		if normalized == string(t) {
			return t, true
		}
	}
	return TypeOther, false
}

// Document is an incoming file during one pipeline pass. SourcePath is
// owned exclusively by the pipeline until the file is moved or deleted;
// content is read on demand, never retained here.
type Document struct {
	Filename     string
	SourcePath   string
	EmailSubject string
	EmailBody    string
}

// ConfidenceTier identifies which cascade stage produced a label. It is
// not persisted; it only drives logging verbosity.
type ConfidenceTier int

const (
	TierSimilarity ConfidenceTier = iota
	TierDirect
	TierKeyword
)

func (t ConfidenceTier) String() string {
	switch t {
	case TierSimilarity:
		return "similarity"
	case TierDirect:
		return "direct"
	default:
		return "keyword"
	}
}

// Neighbor is one reference document returned by the similarity index.
type Neighbor struct {
	Type  DocumentType
	Name  string
	Score float64
}
