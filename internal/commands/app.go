package commands

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"polytask/internal/classify"
	"polytask/internal/config"
	"polytask/internal/model"
	"polytask/internal/planner"
	"polytask/internal/repository"
	"polytask/internal/service"
)

// app holds the stores and services every command works with.
type app struct {
	cfg        config.Config
	db         *gorm.DB
	tasks      service.TaskStore
	users      *repository.UserRepository
	categories *service.CategoryService
	taskSvc    *service.TaskService
	blocks     *service.BlockService
	reminders  *service.ReminderService
}

func openApp(cfg config.Config) (*app, error) {
	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}

	var tasks service.TaskStore
	switch cfg.StoreDriver {
	case config.StoreDiskv:
		tasks = repository.NewDiskvTaskStore(cfg.DiskvPath)
	default:
		tasks = repository.NewTaskRepository(db)
	}

	categories := service.NewCategoryService(tasks, repository.NewCategoryRepository(db), classify.NewKeywordClassifier())
	return &app{
		cfg:        cfg,
		db:         db,
		tasks:      tasks,
		users:      repository.NewUserRepository(db),
		categories: categories,
		taskSvc:    service.NewTaskService(tasks, categories),
		blocks:     service.NewBlockService(tasks),
		reminders:  service.NewReminderService(tasks),
	}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// user resolves a Telegram account id to the stored user.
func (a *app) user(ctx context.Context, telegramID int64) (*model.User, error) {
	if telegramID == 0 {
		return nil, fmt.Errorf("--user is required")
	}
	user, err := a.users.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", telegramID, err)
	}
	return user, nil
}

func (a *app) session(userID uint, day time.Time) *planner.Session {
	s := planner.NewSession(a.tasks, userID, a.cfg.UndoCapacity, time.Now())
	s.SetDay(day)
	return s
}

// parseDay reads YYYY-MM-DD in local time; empty means today.
func parseDay(value string) (time.Time, error) {
	if value == "" {
		return model.StartOfDay(time.Now()), nil
	}
	day, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --day %q, expected YYYY-MM-DD", value)
	}
	return day, nil
}

func loadApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return openApp(cfg)
}
