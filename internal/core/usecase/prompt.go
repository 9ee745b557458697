package usecase

import (
	"fmt"
	"strings"

	"github.com/ryclabs/docpilot/internal/core/domain"
)

func buildSimilarityPrompt(filename, text string, neighbors []domain.Neighbor) string {
	var context strings.Builder
	for i, n := range neighbors {
		fmt.Fprintf(&context, "%d. Type: %s, Name: %s, Score: %.3f\n", i+1, n.Type, n.Name, n.Score)
	}

	content := truncate(text, 300)
	if content == "" {
		content = "No content"
	}

	return fmt.Sprintf(`You are a document classifier. Your reference database contains examples of invoices, payroll documents, contracts, receipts and statements.

Similar documents from the reference database:
%s
New document to classify:
- Filename: %s
- Content: %s

CLASSIFICATION RULES:
1. If the new document looks like the reference documents above (similar structure, purpose, content), classify it as that type.
2. If the new document does NOT look like ANY document in the reference database, classify it as "other". Never force a near match.

Return ONLY ONE word (the category): invoice, payroll, contract, receipt, statement, or other

Category:`, context.String(), filename, content)
}

func buildDirectPrompt(filename, text string) string {
	content := truncate(text, directExcerptChars)
	if content == "" {
		content = "No content available"
	}

	return fmt.Sprintf(`Classify this document into ONE of these categories:
- invoice (invoices, factures, bills)
- payroll (payroll slips, fiches de paie, salary documents)
- contract (contracts, contrats, agreements)
- receipt (receipts, reçus)
- statement (bank statements, relevés bancaires)
- other (if none of the above)

Filename: %s

Document content preview:
%s

Return ONLY the category name in lowercase, nothing else.`, filename, content)
}

func buildTextDatePrompt(filename, text string) string {
	return fmt.Sprintf(`Extract the main date from this document.

Filename: %s

Document content (beginning):
%s

Instructions:
1. Look for dates like: invoice date, payment date, payroll period, contract date, billing date.
2. Ignore dates like: due date, company founding date.
3. If you see "December 2024" or "Décembre 2024" or "2024-12", return "2024-12-01".
4. If you see "15/12/2024" or "2024-12-15", return "2024-12-15".
5. Return ONLY the date in YYYY-MM-DD format.
6. If no clear date is found, return "NOT_FOUND".

Date:`, filename, truncate(text, dateExcerptChars))
}

const visionDatePrompt = `Look at this document image and extract the main date.

Instructions:
1. Find the document date (invoice date, payroll period, contract date).
2. Ignore other dates like due dates or company founding dates.
3. If you see "December 2024" or "Décembre 2024", return "2024-12-01".
4. If you see "15/12/2024" or "2024-12-15", return "2024-12-15".
5. Return ONLY the date in YYYY-MM-DD format.
6. If no clear date is found, return "NOT_FOUND".

Date:`
