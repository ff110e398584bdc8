package commands

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"

	"polytask/internal/bot"
	"polytask/internal/config"
	"polytask/internal/service"
)

func addBot(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the Telegram bot",
		Long: `Run the Telegram bot until interrupted.

TELEGRAM_TOKEN is required. The agenda is sent every REPORT_INTERVAL_HOURS
and floating tasks are placed into today at AUTOSCHEDULE_AT.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireToken(); err != nil {
				return err
			}
			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			scheduler := service.NewSchedulerService(time.Local)
			telegramBot, err := bot.New(cfg.TelegramToken, bot.Deps{
				Users:      a.users,
				Tasks:      a.tasks,
				TaskSvc:    a.taskSvc,
				Categories: a.categories,
				Blocks:     a.blocks,
				Reminders:  a.reminders,
				Scheduler:  scheduler,
			}, &cfg)
			if err != nil {
				return err
			}

			if err := telegramBot.ScheduleReports(cfg.ReportInterval); err != nil {
				return err
			}
			if cfg.AutoScheduleAt != "" {
				if _, err := scheduler.ScheduleDaily(cfg.AutoScheduleAt, func() {
					jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
					defer cancel()
					if err := telegramBot.AutoScheduleAll(jobCtx); err != nil {
						log.Printf("auto-schedule: %v", err)
					}
				}); err != nil {
					return err
				}
			}
			scheduler.Start()
			defer scheduler.Stop()

			log.Println("Polytask bot started.")
			if err := telegramBot.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Println("Shutdown complete.")
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
