package classify

import (
	"context"
	"testing"

	"polytask/internal/model"
)

func TestKeywordClassifier_ExactTitleWins(t *testing.T) {
	examples := []Example{
		{Title: "Piano lesson!", Category: "Hobbies", Color: "#123456"},
	}
	got, err := NewKeywordClassifier().Categorize(context.Background(), "piano   LESSON", examples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Category != "Hobbies" || got.Color != "#123456" {
		t.Errorf("expected Hobbies/#123456, got %+v", got)
	}
}

func TestKeywordClassifier_SubjectKeywords(t *testing.T) {
	c := NewKeywordClassifier()
	ctx := context.Background()

	got, _ := c.Categorize(ctx, "Calculus problem set", nil)
	if got.Category != "Math" || got.Color != model.Palette[0] {
		t.Errorf("expected Math with first palette color, got %+v", got)
	}

	examples := []Example{{Title: "Lab write-up", Category: "Science", Color: "#59C9A5"}}
	got, _ = c.Categorize(ctx, "Physics homework", examples)
	if got.Category != "Science" || got.Color != "#59C9A5" {
		t.Errorf("expected existing Science color, got %+v", got)
	}

	// "Art" sorts before "Science", so it takes index 0.
	got, _ = c.Categorize(ctx, "Sketch portrait", examples)
	if got.Category != "Art" || got.Color != model.Palette[0] {
		t.Errorf("expected Art with palette[0], got %+v", got)
	}
}

func TestKeywordClassifier_WholeWordsOnly(t *testing.T) {
	got, _ := NewKeywordClassifier().Categorize(context.Background(), "Start software rewrite", nil)
	if got.Category != "Computer Science" {
		t.Errorf("expected Computer Science, got %+v", got)
	}
}

func TestKeywordClassifier_FallsBackToGeneral(t *testing.T) {
	got, _ := NewKeywordClassifier().Categorize(context.Background(), "Buy groceries", nil)
	if got.Category != model.CategoryGeneral || got.Color != GeneralColor {
		t.Errorf("expected General, got %+v", got)
	}
}

func TestCategoryColors_IgnoresPlaceholders(t *testing.T) {
	colors := CategoryColors([]Example{
		{Title: "a", Category: "General"},
		{Title: "b", Category: "Blocked", Color: "black"},
		{Title: "c", Category: "Zoology"},
		{Title: "d", Category: "Biology"},
	})
	if len(colors) != 2 {
		t.Fatalf("expected 2 categories, got %v", colors)
	}
	if colors["Biology"] != model.Palette[0] || colors["Zoology"] != model.Palette[1] {
		t.Errorf("unexpected palette assignment %v", colors)
	}
}

func TestGeneralClassifier(t *testing.T) {
	var c Classifier = GeneralClassifier{}
	got, err := c.Categorize(context.Background(), "Calculus", nil)
	if err != nil || got.Category != model.CategoryGeneral {
		t.Errorf("expected General, got %+v %v", got, err)
	}
}
