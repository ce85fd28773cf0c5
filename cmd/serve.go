package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/studybot/internal/logger"
	"github.com/example/studybot/internal/notify"
	"github.com/example/studybot/internal/scheduler"
	"github.com/spf13/cobra"
)

var serveNow bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily planning daemon",
	Long: `Run in the background, generating and delivering a study plan at
the configured hour every day. Requires Telegram credentials for delivery.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores()
		if err != nil {
			return err
		}
		defer st.close()

		service := newService(st)
		log := logger.Get()

		var notifier scheduler.Notifier
		if cfg.TelegramToken != "" {
			tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
			if err != nil {
				return fmt.Errorf("failed to create Telegram notifier: %v", err)
			}
			notifier = tg
		} else {
			log.Warn("TELEGRAM_BOT_TOKEN is not set, plans will not be delivered")
		}

		sched := scheduler.New(service, notifier, cfg.HorizonDays, log)
		if err := sched.Start(cfg.PlanHour); err != nil {
			return fmt.Errorf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()

		if serveNow {
			if err := sched.RunDailyPlan(); err != nil {
				log.Errorf("initial plan run failed: %v", err)
			}
		}

		log.Info("studybot daemon started")

		// Ожидаем сигнала завершения
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info("shutting down")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveNow, "now", false, "Run one plan cycle immediately on startup")
}
