package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"polytask/internal/model"
)

// ErrCategoryNotFound is returned when the user has no category by that name.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository remembers each user's category colors.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetOrCreate returns the user's category called name, creating it with color
// when missing. An existing category keeps its color.
func (r *CategoryRepository) GetOrCreate(ctx context.Context, userID uint, name, color string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}

	var category model.Category
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ? AND name = ?", userID, name).First(&category).Error
	switch {
	case err == nil:
		if category.Color == "" && color != "" {
			if err := db.Model(&category).Update("color", color).Error; err != nil {
				return nil, fmt.Errorf("set category color: %w", err)
			}
		}
		return &category, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		category = model.Category{UserID: userID, Name: name, Color: color}
		if err := db.Create(&category).Error; err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		return &category, nil
	default:
		return nil, fmt.Errorf("find category: %w", err)
	}
}

func (r *CategoryRepository) ListByUser(ctx context.Context, userID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// SetColor changes the color of the user's category.
func (r *CategoryRepository) SetColor(ctx context.Context, userID uint, name, color string) error {
	res := r.db.WithContext(ctx).Model(&model.Category{}).
		Where("user_id = ? AND LOWER(name) = LOWER(?)", userID, name).
		Update("color", color)
	if res.Error != nil {
		return fmt.Errorf("set category color: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	return nil
}
