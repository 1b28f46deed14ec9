// Package evalform builds the rating form shown for each blinded review slot
// and turns a completed form back into result records. Both directions run
// the same parser over the same payloads, so the controls rendered and the
// controls validated always line up.
package evalform

import (
	"fmt"

	"review-eval-app/internal/dataset"
	"review-eval-app/internal/results"
	"review-eval-app/internal/review"
)

// Sentinel is the default, non-submittable value of every rating control.
const Sentinel = "Select..."

// GradingOptions is the sentinel followed by the four agreement levels, in
// rating order.
var GradingOptions = []string{
	Sentinel,
	"Completely Disagree",
	"Mostly Disagree",
	"Mostly Agree",
	"Completely Agree",
}

// SlotLabels are the only review identifiers a rater ever sees.
var SlotLabels = [2]string{"A", "B"}

const noSummaryFallback = "No summary found."

// ValidOption reports whether value is the sentinel or a real agreement
// level.
func ValidOption(value string) bool {
	for _, opt := range GradingOptions {
		if value == opt {
			return true
		}
	}
	return false
}

// IsRated reports whether value is a real agreement level.
func IsRated(value string) bool {
	return value != "" && value != Sentinel && ValidOption(value)
}

// SummaryKey and PointKey derive the canonical control keys. They carry the
// variant identifier, so they stay server-side; clients address controls by
// slot instead.
func SummaryKey(paperID string, v dataset.Variant) string {
	return fmt.Sprintf("%s_%s_Summary", paperID, v)
}

func PointKey(paperID string, v dataset.Variant, section string, index int) string {
	return fmt.Sprintf("%s_%s_%s_%d", paperID, v, section, index)
}

// RatingLookup is the read side of the per-session rating store.
type RatingLookup interface {
	Rating(key string) string
}

type PointView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
	Value string `json:"value"`
}

type SectionView struct {
	Name   string      `json:"name"`
	Points []PointView `json:"points"`
}

// SlotView is everything the client needs to render one blinded review
// panel. It carries the slot label only, never the variant.
type SlotView struct {
	Slot         string        `json:"slot"`
	SummaryText  string        `json:"summary_text"`
	SummaryValue string        `json:"summary_value"`
	Sections     []SectionView `json:"sections"`
}

func currentValue(ratings RatingLookup, key string) string {
	if v := ratings.Rating(key); v != "" {
		return v
	}
	return Sentinel
}

// BuildSlot renders one slot: the summary block is always present (with a
// fallback message when the review has none), and each bullet section with
// at least one point gets a per-point control.
func BuildSlot(paperID, slot string, v dataset.Variant, payload any, ratings RatingLookup) SlotView {
	parsed := review.ParsePayload(payload)

	view := SlotView{
		Slot:         slot,
		SummaryText:  parsed.SummaryText(),
		SummaryValue: currentValue(ratings, SummaryKey(paperID, v)),
	}
	if view.SummaryText == "" {
		view.SummaryText = noSummaryFallback
	}

	for _, section := range review.BulletSections {
		points := parsed.Section(section)
		if len(points) == 0 {
			continue
		}
		sv := SectionView{Name: section}
		for i, text := range points {
			sv.Points = append(sv.Points, PointView{
				Index: i,
				Text:  text,
				Value: currentValue(ratings, PointKey(paperID, v, section, i)),
			})
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}

// MissingControl names an unrated control by its slot-facing address.
type MissingControl struct {
	Slot    string `json:"slot"`
	Section string `json:"section"`
	Index   int    `json:"index"`
}

// Collect validates a submission and assembles the result rows. Validation
// walks the two variants in their fixed identity order, re-parsing each
// payload; any unset control makes the whole submission incomplete and no
// records are returned. Missing controls are reported under their slot
// labels so the response stays blind.
func Collect(paperID, userID string, reviews map[dataset.Variant]any, order [2]dataset.Variant, ratings RatingLookup) ([]results.Record, []MissingControl) {
	slotFor := map[dataset.Variant]string{}
	for i, v := range order {
		slotFor[v] = SlotLabels[i]
	}

	var records []results.Record
	var missing []MissingControl

	for _, v := range dataset.Variants {
		parsed := review.ParsePayload(reviews[v])

		summaryValue := ratings.Rating(SummaryKey(paperID, v))
		if !IsRated(summaryValue) {
			missing = append(missing, MissingControl{Slot: slotFor[v], Section: review.SectionSummary, Index: 0})
		} else {
			records = append(records, results.Record{
				Timestamp:  results.Now(),
				User:       userID,
				PaperID:    paperID,
				ReviewType: string(v),
				Section:    review.SectionSummary,
				PointIndex: 0,
				PointText:  parsed.SummaryText(),
				Rating:     summaryValue,
			})
		}

		for _, section := range review.BulletSections {
			for i, text := range parsed.Section(section) {
				value := ratings.Rating(PointKey(paperID, v, section, i))
				if !IsRated(value) {
					missing = append(missing, MissingControl{Slot: slotFor[v], Section: section, Index: i})
					continue
				}
				records = append(records, results.Record{
					Timestamp:  results.Now(),
					User:       userID,
					PaperID:    paperID,
					ReviewType: string(v),
					Section:    section,
					PointIndex: i,
					PointText:  text,
					Rating:     value,
				})
			}
		}
	}

	if len(missing) > 0 {
		return nil, missing
	}
	return records, nil
}
