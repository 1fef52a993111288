package photogroup

import (
	"testing"

	"github.com/mkarlsen/divelog/internal/entities"
)

func photoAt(name, captureTime string) entities.ScannedPhoto {
	return entities.ScannedPhoto{FileName: name, CaptureTime: captureTime}
}

func TestClusterer_Group_SplitsOnGap(t *testing.T) {
	photos := []entities.ScannedPhoto{
		photoAt("a.jpg", "2024-01-17T10:00:00"),
		photoAt("b.jpg", "2024-01-17T10:20:00"),
		photoAt("c.jpg", "2024-01-17T12:00:00"),
		photoAt("d.jpg", "2024-01-17T12:10:00"),
	}

	groups, untimed := NewClusterer(60).Group(photos)

	if len(untimed) != 0 {
		t.Fatalf("expected no untimed photos, got %d", len(untimed))
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups[0].Photos) != 2 || groups[0].Photos[0].FileName != "a.jpg" {
		t.Errorf("unexpected first group: %+v", groups[0].Photos)
	}
	if len(groups[1].Photos) != 2 || groups[1].Photos[0].FileName != "c.jpg" {
		t.Errorf("unexpected second group: %+v", groups[1].Photos)
	}
	if groups[0].StartTime.Hour() != 10 || groups[0].EndTime.Minute() != 20 {
		t.Errorf("unexpected first group bounds: %v..%v", groups[0].StartTime, groups[0].EndTime)
	}
	if groups[1].Duration().Minutes() != 10 {
		t.Errorf("unexpected second group duration: %v", groups[1].Duration())
	}
}

func TestClusterer_Group_ExactGapSplits(t *testing.T) {
	// The boundary between groups has a gap >= threshold; within a group
	// every gap is strictly less.
	photos := []entities.ScannedPhoto{
		photoAt("a.jpg", "2024-01-17T10:00:00"),
		photoAt("b.jpg", "2024-01-17T11:00:00"),
	}

	groups, _ := NewClusterer(60).Group(photos)
	if len(groups) != 2 {
		t.Fatalf("a gap of exactly the threshold must split, got %d groups", len(groups))
	}

	groups, _ = NewClusterer(61).Group(photos)
	if len(groups) != 1 {
		t.Fatalf("a gap under the threshold must not split, got %d groups", len(groups))
	}
}

func TestClusterer_Group_SortsBeforeGrouping(t *testing.T) {
	photos := []entities.ScannedPhoto{
		photoAt("late.jpg", "2024-01-17T12:00:00"),
		photoAt("early.jpg", "2024-01-17T10:00:00"),
		photoAt("mid.jpg", "2024-01-17T10:05:00"),
	}

	groups, _ := NewClusterer(60).Group(photos)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Photos[0].FileName != "early.jpg" || groups[0].Photos[1].FileName != "mid.jpg" {
		t.Errorf("unexpected sort order: %+v", groups[0].Photos)
	}
}

func TestClusterer_Group_UntimedReturnedSeparately(t *testing.T) {
	photos := []entities.ScannedPhoto{
		photoAt("a.jpg", "2024-01-17T10:00:00"),
		photoAt("noexif.jpg", ""),
	}

	groups, untimed := NewClusterer(60).Group(photos)
	if len(groups) != 1 || len(groups[0].Photos) != 1 {
		t.Fatalf("untimed photo must not join a group")
	}
	if len(untimed) != 1 || untimed[0].FileName != "noexif.jpg" {
		t.Errorf("unexpected untimed set: %+v", untimed)
	}
}

func TestClusterer_Group_UnparseableTimeContinuesGroup(t *testing.T) {
	photos := []entities.ScannedPhoto{
		photoAt("a.jpg", "2024-01-17T10:00:00"),
		photoAt("noisy.jpg", "17/01/2024 10:01"), // malformed stored value
		photoAt("b.jpg", "2024-01-17T10:05:00"),
	}

	groups, untimed := NewClusterer(60).Group(photos)
	if len(untimed) != 0 {
		t.Fatalf("a present-but-malformed time is not untimed")
	}
	if len(groups) != 1 || len(groups[0].Photos) != 3 {
		t.Fatalf("malformed time must continue the current group, got %d groups", len(groups))
	}
}

func TestMatchGroups_OrdinalAssignment(t *testing.T) {
	groups := []entities.PhotoGroup{{}, {}}
	dives := []entities.ImportedDive{
		{ID: 30, Number: 3},
		{ID: 10, Number: 1},
		{ID: 20, Number: 2},
	}

	MatchGroups(groups, dives)

	if groups[0].SuggestedDiveNumber == nil || *groups[0].SuggestedDiveNumber != 1 {
		t.Errorf("group 0 should get dive 1, got %v", groups[0].SuggestedDiveNumber)
	}
	if groups[0].SuggestedDiveID == nil || *groups[0].SuggestedDiveID != 10 {
		t.Errorf("group 0 should get dive id 10, got %v", groups[0].SuggestedDiveID)
	}
	if groups[1].SuggestedDiveNumber == nil || *groups[1].SuggestedDiveNumber != 2 {
		t.Errorf("group 1 should get dive 2, got %v", groups[1].SuggestedDiveNumber)
	}
}

func TestMatchGroups_OverflowGroupsUnmatched(t *testing.T) {
	groups := []entities.PhotoGroup{{}, {}, {}}
	dives := []entities.ImportedDive{{ID: 1, Number: 1}, {ID: 2, Number: 2}}

	MatchGroups(groups, dives)

	if groups[2].SuggestedDiveID != nil {
		t.Errorf("group beyond the dive count must stay unmatched")
	}
}
