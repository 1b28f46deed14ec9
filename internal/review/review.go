package review

import (
	"sort"
	"strings"
)

// Section names as they appear in generated review text.
const (
	SectionSummary    = "Summary"
	SectionStrengths  = "Strengths"
	SectionWeaknesses = "Weaknesses"
	SectionQuestions  = "Questions"
)

// BulletSections are the sections split into individually rated points, in
// the order they are rendered and validated.
var BulletSections = []string{SectionStrengths, SectionWeaknesses, SectionQuestions}

const notAvailable = "Review not available."

// ParsedReview holds the four sections of a generated review. Summary is at
// most one trimmed block; the other sections are ordered bullet points.
type ParsedReview struct {
	Summary    []string `json:"summary"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Questions  []string `json:"questions"`
}

func (p ParsedReview) Section(name string) []string {
	switch name {
	case SectionSummary:
		return p.Summary
	case SectionStrengths:
		return p.Strengths
	case SectionWeaknesses:
		return p.Weaknesses
	case SectionQuestions:
		return p.Questions
	}
	return nil
}

// SummaryText returns the summary block or "" when the review has none.
func (p ParsedReview) SummaryText() string {
	if len(p.Summary) > 0 {
		return p.Summary[0]
	}
	return ""
}

type markerHit struct {
	name  string
	start int
	end   int
}

// Parse splits review text into its four sections. A single ordered scan
// locates the first occurrence of each bold marker; a section's content runs
// from its marker to the next marker present in the text, or to the end of
// the text for the last one. Pure function of its input: it is called once at
// render time and again at submit time, and both calls must agree.
func Parse(text string) ParsedReview {
	var hits []markerHit
	for _, name := range []string{SectionSummary, SectionStrengths, SectionWeaknesses, SectionQuestions} {
		marker := "**" + name + "**"
		idx := strings.Index(text, marker)
		if idx < 0 {
			continue
		}
		hits = append(hits, markerHit{name: name, start: idx, end: idx + len(marker)})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	var parsed ParsedReview
	for i, hit := range hits {
		contentEnd := len(text)
		if i+1 < len(hits) {
			contentEnd = hits[i+1].start
		}
		content := strings.TrimSpace(text[hit.end:contentEnd])

		switch hit.name {
		case SectionSummary:
			// Kept as one block, dropped entirely when empty.
			if content != "" {
				parsed.Summary = append(parsed.Summary, content)
			}
		case SectionStrengths:
			parsed.Strengths = splitPoints(content)
		case SectionWeaknesses:
			parsed.Weaknesses = splitPoints(content)
		case SectionQuestions:
			parsed.Questions = splitPoints(content)
		}
	}
	return parsed
}

func splitPoints(content string) []string {
	var points []string
	for _, raw := range strings.Split(content, "\n-") {
		cleaned := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(raw), "-"))
		if cleaned != "" {
			points = append(points, cleaned)
		}
	}
	return points
}

// ExtractText pulls the review text out of a dataset payload. Payloads are
// either a plain string or an object carrying the text under
// "inference_review" (preferred) or "prediction". An absent payload extracts
// to empty text. The second return is false only for structurally non-text
// payloads (numbers, arrays), which the datasets should not contain but
// occasionally do.
func ExtractText(payload any) (string, bool) {
	switch v := payload.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case map[string]any:
		if s, ok := v["inference_review"].(string); ok && s != "" {
			return s, true
		}
		if s, ok := v["prediction"].(string); ok && s != "" {
			return s, true
		}
		return "", true
	default:
		return "", false
	}
}

// ParsePayload extracts and parses a dataset payload. Malformed (non-text)
// payloads yield a fixed placeholder summary instead of crashing the form.
func ParsePayload(payload any) ParsedReview {
	text, ok := ExtractText(payload)
	if !ok {
		return ParsedReview{Summary: []string{notAvailable}}
	}
	return Parse(text)
}
