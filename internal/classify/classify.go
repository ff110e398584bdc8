// Package classify assigns a category and color to a task title.
package classify

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"polytask/internal/model"
)

// GeneralColor is the color of tasks left in the General category.
const GeneralColor = "#3b82f6"

// Example is an already categorized task used as a reference.
type Example struct {
	Title    string
	Category string
	Color    string
}

type Result struct {
	Category string
	Color    string
}

// Classifier maps a title to a category, given labeled examples.
type Classifier interface {
	Categorize(ctx context.Context, title string, examples []Example) (Result, error)
}

// GeneralClassifier files everything under General.
type GeneralClassifier struct{}

func (GeneralClassifier) Categorize(ctx context.Context, title string, examples []Example) (Result, error) {
	return Result{Category: model.CategoryGeneral, Color: GeneralColor}, nil
}

// subjects is checked in order; the first subject with a matching word wins.
var subjects = []struct {
	name  string
	words []string
}{
	{"Math", []string{"math", "calculus", "algebra", "geometry", "trigonometry", "statistics", "equation"}},
	{"Science", []string{"biology", "chemistry", "physics", "lab", "experiment", "bio", "chem"}},
	{"English", []string{"essay", "literature", "writing", "poem", "novel", "reading", "grammar"}},
	{"History", []string{"history", "historical", "war", "civilization", "ancient", "revolution"}},
	{"Computer Science", []string{"programming", "coding", "algorithm", "code", "software", "debug", "cs"}},
	{"Language", []string{"spanish", "french", "german", "chinese", "japanese", "language", "vocabulary"}},
	{"Art", []string{"art", "drawing", "painting", "sketch", "design", "creative"}},
	{"Music", []string{"music", "piano", "guitar", "song", "practice", "instrument"}},
	{"PE", []string{"gym", "exercise", "workout", "physical", "sports", "fitness"}},
	{"Social Studies", []string{"geography", "economics", "government", "politics", "society"}},
}

var nonWord = regexp.MustCompile(`[^a-z0-9\s]+`)

// Normalize lowercases s, drops punctuation and collapses whitespace.
func Normalize(s string) string {
	s = nonWord.ReplaceAllString(strings.ToLower(s), " ")
	return strings.Join(strings.Fields(s), " ")
}

// KeywordClassifier matches a title against the examples by exact normalized
// title, then against a table of subject keywords.
type KeywordClassifier struct{}

func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

func (k *KeywordClassifier) Categorize(ctx context.Context, title string, examples []Example) (Result, error) {
	colors := CategoryColors(examples)
	norm := Normalize(title)

	byTitle := make(map[string]string)
	for _, ex := range examples {
		if !usable(ex.Category) {
			continue
		}
		byTitle[Normalize(ex.Title)] = ex.Category
	}
	if cat, ok := byTitle[norm]; ok {
		return Result{Category: cat, Color: colors[cat]}, nil
	}

	subject := DetectSubject(norm)
	if subject == "" {
		return Result{Category: model.CategoryGeneral, Color: GeneralColor}, nil
	}
	if color, ok := colors[subject]; ok {
		return Result{Category: subject, Color: color}, nil
	}

	names := make([]string, 0, len(colors)+1)
	for name := range colors {
		names = append(names, name)
	}
	names = append(names, subject)
	sort.Strings(names)
	idx := sort.SearchStrings(names, subject)
	return Result{Category: subject, Color: model.Palette[idx%len(model.Palette)]}, nil
}

// DetectSubject returns the subject whose keyword appears as a word in title.
func DetectSubject(title string) string {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(Normalize(title)) {
		words[w] = struct{}{}
	}
	for _, s := range subjects {
		for _, w := range s.words {
			if _, ok := words[w]; ok {
				return s.name
			}
		}
	}
	return ""
}

// CategoryColors maps every usable example category to its color. Categories
// whose examples carry no color get a palette entry by sorted position.
func CategoryColors(examples []Example) map[string]string {
	colors := make(map[string]string)
	seen := make(map[string]struct{})
	for _, ex := range examples {
		if !usable(ex.Category) {
			continue
		}
		seen[ex.Category] = struct{}{}
		if ex.Color != "" {
			colors[ex.Category] = ex.Color
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if _, ok := colors[name]; !ok {
			colors[name] = model.Palette[i%len(model.Palette)]
		}
	}
	return colors
}

func usable(category string) bool {
	c := strings.TrimSpace(category)
	return c != "" && c != model.CategoryGeneral && !strings.EqualFold(c, model.CategoryBlocked)
}
