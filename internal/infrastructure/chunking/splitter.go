package chunking

import "strings"

// Splitter cuts reference-document text into chunks for embedding.
// Paragraphs are packed together up to MaxChars; a paragraph longer
// than MaxChars is cut on a rune window so multibyte text stays valid.
type Splitter struct {
	MaxChars int
}

func NewSplitter(maxChars int) *Splitter {
	if maxChars <= 0 {
		maxChars = 900
	}
	return &Splitter{MaxChars: maxChars}
}

func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string
	var current strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			out = append(out, chunk)
		}
		current.Reset()
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len([]rune(para)) > s.MaxChars {
			flush()
			out = append(out, s.splitWindow(para)...)
			continue
		}

		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(para))+2 > s.MaxChars {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()
	return out
}

func (s *Splitter) splitWindow(text string) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes)/s.MaxChars+1)
	for start := 0; start < len(runes); start += s.MaxChars {
		end := start + s.MaxChars
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
	}
	return out
}
