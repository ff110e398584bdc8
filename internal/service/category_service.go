package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"polytask/internal/classify"
	"polytask/internal/model"
	"polytask/internal/repository"
)

// CategoryService files uncategorized tasks and keeps category colors stable.
type CategoryService struct {
	tasks      TaskStore
	repo       *repository.CategoryRepository
	classifier classify.Classifier
}

func NewCategoryService(tasks TaskStore, repo *repository.CategoryRepository, classifier classify.Classifier) *CategoryService {
	if classifier == nil {
		classifier = classify.GeneralClassifier{}
	}
	return &CategoryService{tasks: tasks, repo: repo, classifier: classifier}
}

func (s *CategoryService) List(ctx context.Context, userID uint) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, userID)
}

// blockedTask reports whether t is blocked time, which is never recategorized.
func blockedTask(t model.Task) bool {
	return t.IsBlocked() || strings.Contains(strings.ToLower(t.Name), "blocked")
}

// Categorize asks the classifier for every uncategorized task of the user and
// stores the answer when it differs. It returns the number of tasks changed.
func (s *CategoryService) Categorize(ctx context.Context, userID uint) (int, error) {
	if userID == 0 {
		return 0, nil
	}
	tasks, err := s.tasks.List(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list tasks: %w", err)
	}

	var examples []classify.Example
	var pending []model.Task
	for _, t := range tasks {
		switch {
		case blockedTask(t):
		case t.IsUncategorized():
			pending = append(pending, t)
		default:
			examples = append(examples, classify.Example{Title: t.Name, Category: t.Category, Color: t.Color})
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	known := make(map[string]string)
	if s.repo != nil {
		stored, err := s.repo.ListByUser(ctx, userID)
		if err != nil {
			return 0, err
		}
		for _, c := range stored {
			if c.Color != "" {
				known[c.Name] = c.Color
			}
		}
	}

	changed := 0
	for _, t := range pending {
		res, err := s.classifier.Categorize(ctx, t.Name, examples)
		if err != nil {
			return changed, fmt.Errorf("categorize %s: %w", t.ID, err)
		}
		if res.Category == "" {
			continue
		}
		if color, ok := known[res.Category]; ok {
			res.Color = color
		} else if s.repo != nil && res.Category != model.CategoryGeneral {
			if _, err := s.repo.GetOrCreate(ctx, userID, res.Category, res.Color); err != nil {
				return changed, err
			}
			known[res.Category] = res.Color
		}

		if res.Category == t.Category && res.Color == t.Color {
			continue
		}
		patch := model.TaskPatch{Category: model.StringPtr(res.Category)}
		if res.Color != "" {
			patch.Color = model.StringPtr(res.Color)
		}
		if _, err := s.tasks.Update(ctx, userID, t.ID, patch); err != nil {
			return changed, fmt.Errorf("update category of %s: %w", t.ID, err)
		}
		examples = append(examples, classify.Example{Title: t.Name, Category: res.Category, Color: res.Color})
		changed++
	}
	log.Printf("[info] categorize user=%d updated=%d", userID, changed)
	return changed, nil
}

// SetColor changes the color of the user's category and repaints its open
// tasks. It returns the number of tasks repainted.
func (s *CategoryService) SetColor(ctx context.Context, userID uint, name, color string) (int, error) {
	name = strings.TrimSpace(name)
	color = strings.TrimSpace(color)
	if name == "" {
		return 0, invalid("category", "Category name is required")
	}
	if color == "" {
		return 0, invalid("color", "Color is required")
	}
	if strings.EqualFold(name, model.CategoryBlocked) {
		return 0, invalid("category", "Blocked time is always black")
	}
	if err := s.repo.SetColor(ctx, userID, name, color); err != nil {
		return 0, err
	}

	tasks, err := s.tasks.List(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list tasks: %w", err)
	}
	changed := 0
	for _, t := range tasks {
		if t.Complete || !strings.EqualFold(strings.TrimSpace(t.Category), name) || t.Color == color {
			continue
		}
		if _, err := s.tasks.Update(ctx, userID, t.ID, model.TaskPatch{Color: model.StringPtr(color)}); err != nil {
			return changed, fmt.Errorf("update task: %w", err)
		}
		changed++
	}
	log.Printf("[info] category color user=%d category=%s tasks=%d", userID, name, changed)
	return changed, nil
}
