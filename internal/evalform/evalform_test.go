package evalform

import (
	"testing"

	"review-eval-app/internal/dataset"
)

const fullReview = "**Summary**\nA study.\n**Strengths**\n- Point 1\n- Point 2\n**Weaknesses**\n**Questions**\n- Q1"

type fakeRatings map[string]string

func (f fakeRatings) Rating(key string) string { return f[key] }

var forwardOrder = [2]dataset.Variant{dataset.Variant53, dataset.Variant55}

func TestBuildSlotFullReview(t *testing.T) {
	view := BuildSlot("p1", "A", dataset.Variant53, fullReview, fakeRatings{})

	if view.Slot != "A" {
		t.Errorf("slot is incorrect: %s", view.Slot)
	}
	if view.SummaryText != "A study." {
		t.Errorf("summary text is incorrect: %q", view.SummaryText)
	}
	if view.SummaryValue != Sentinel {
		t.Errorf("untouched summary control should default to the sentinel, got %q", view.SummaryValue)
	}
	// Weaknesses is empty and must not render a section.
	if len(view.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(view.Sections))
	}
	if view.Sections[0].Name != "Strengths" || len(view.Sections[0].Points) != 2 {
		t.Errorf("Strengths section is incorrect: %+v", view.Sections[0])
	}
	if view.Sections[1].Name != "Questions" || view.Sections[1].Points[0].Text != "Q1" {
		t.Errorf("Questions section is incorrect: %+v", view.Sections[1])
	}
}

func TestBuildSlotAbsentPayload(t *testing.T) {
	view := BuildSlot("p1", "B", dataset.Variant55, nil, fakeRatings{})

	if view.SummaryText != "No summary found." {
		t.Errorf("fallback summary text is incorrect: %q", view.SummaryText)
	}
	if len(view.Sections) != 0 {
		t.Errorf("absent payload should render no bullet sections: %+v", view.Sections)
	}
}

func TestBuildSlotShowsStoredValues(t *testing.T) {
	ratings := fakeRatings{
		SummaryKey("p1", dataset.Variant53):               "Mostly Agree",
		PointKey("p1", dataset.Variant53, "Strengths", 1): "Completely Disagree",
	}
	view := BuildSlot("p1", "A", dataset.Variant53, fullReview, ratings)

	if view.SummaryValue != "Mostly Agree" {
		t.Errorf("summary value is incorrect: %q", view.SummaryValue)
	}
	if view.Sections[0].Points[1].Value != "Completely Disagree" {
		t.Errorf("point value is incorrect: %q", view.Sections[0].Points[1].Value)
	}
	if view.Sections[0].Points[0].Value != Sentinel {
		t.Errorf("unrated point should default to the sentinel")
	}
}

func fullyRated(paperID string) fakeRatings {
	ratings := fakeRatings{}
	for _, v := range dataset.Variants {
		ratings[SummaryKey(paperID, v)] = "Mostly Agree"
	}
	ratings[PointKey(paperID, dataset.Variant53, "Strengths", 0)] = "Completely Agree"
	ratings[PointKey(paperID, dataset.Variant53, "Strengths", 1)] = "Mostly Disagree"
	ratings[PointKey(paperID, dataset.Variant53, "Questions", 0)] = "Completely Disagree"
	ratings[PointKey(paperID, dataset.Variant55, "Weaknesses", 0)] = "Mostly Agree"
	return ratings
}

func testReviews() map[dataset.Variant]any {
	return map[dataset.Variant]any{
		dataset.Variant53: fullReview,
		dataset.Variant55: map[string]any{"inference_review": "**Summary**\nOther.\n**Weaknesses**\n- W1"},
	}
}

func TestCollectComplete(t *testing.T) {
	records, missing := Collect("p1", "u1", testReviews(), forwardOrder, fullyRated("p1"))

	if len(missing) != 0 {
		t.Fatalf("nothing should be missing: %+v", missing)
	}
	// (1 summary + 2 strengths + 1 question) + (1 summary + 1 weakness)
	if len(records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(records))
	}

	if records[0].Section != "Summary" || records[0].PointIndex != 0 || records[0].PointText != "A study." {
		t.Errorf("summary record is incorrect: %+v", records[0])
	}
	if records[0].ReviewType != "5_3" {
		t.Errorf("records must be keyed by variant identity: %+v", records[0])
	}
	if records[2].Section != "Strengths" || records[2].PointIndex != 1 {
		t.Errorf("point indices must be 0-based per section: %+v", records[2])
	}
	if records[0].Timestamp == "" {
		t.Error("records must carry a timestamp")
	}
}

func TestCollectIncompleteReturnsNoRecords(t *testing.T) {
	ratings := fullyRated("p1")
	// Leave the last point of the second variant unset.
	delete(ratings, PointKey("p1", dataset.Variant55, "Weaknesses", 0))

	records, missing := Collect("p1", "u1", testReviews(), forwardOrder, ratings)
	if records != nil {
		t.Fatalf("incomplete submission must produce zero records, got %d", len(records))
	}
	if len(missing) != 1 {
		t.Fatalf("expected 1 missing control, got %+v", missing)
	}
	if missing[0].Slot != "B" || missing[0].Section != "Weaknesses" || missing[0].Index != 0 {
		t.Errorf("missing control is incorrect: %+v", missing[0])
	}
}

func TestCollectSentinelCountsAsUnset(t *testing.T) {
	ratings := fullyRated("p1")
	ratings[SummaryKey("p1", dataset.Variant53)] = Sentinel

	records, missing := Collect("p1", "u1", testReviews(), forwardOrder, ratings)
	if records != nil || len(missing) != 1 {
		t.Fatalf("sentinel value must invalidate the submission: %v, %+v", records, missing)
	}
	if missing[0].Slot != "A" || missing[0].Section != "Summary" {
		t.Errorf("missing control is incorrect: %+v", missing[0])
	}
}

func TestCollectReversedOrderReportsSlots(t *testing.T) {
	reversed := [2]dataset.Variant{dataset.Variant55, dataset.Variant53}
	ratings := fullyRated("p1")
	delete(ratings, PointKey("p1", dataset.Variant53, "Questions", 0))

	_, missing := Collect("p1", "u1", testReviews(), reversed, ratings)
	if len(missing) != 1 || missing[0].Slot != "B" {
		t.Errorf("variant 5_3 sits in slot B under the reversed order: %+v", missing)
	}
}

func TestValidOption(t *testing.T) {
	if !ValidOption(Sentinel) || !ValidOption("Mostly Agree") {
		t.Error("known options should validate")
	}
	if ValidOption("Strongly Agree") {
		t.Error("unknown option should not validate")
	}
	if IsRated(Sentinel) {
		t.Error("the sentinel is not a rating")
	}
}
