package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studybot/internal/excel"
	"github.com/example/studybot/internal/logger"
	"github.com/example/studybot/internal/notify"
	"github.com/spf13/cobra"
)

var (
	planDays   int
	planNotify bool
	planXLSX   string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Generate study plans for the coming days",
	Long: `Apply pending review events, then build one plan per day over the
horizon. Plans are persisted and printed; optionally delivered to Telegram
or exported to an Excel file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores()
		if err != nil {
			return err
		}
		defer st.close()

		service := newService(st)
		ctx := context.Background()

		// События применяем до планирования, иначе план строится на
		// устаревших датах повторения.
		result, err := service.ProcessEvents(ctx)
		if err != nil {
			return fmt.Errorf("failed to process review events: %v", err)
		}
		for _, rej := range result.Rejected {
			logger.Get().Warnf("event %s rejected: %v", rej.Event.ID, rej.Reason)
		}

		plans, err := service.GeneratePlan(ctx, time.Now(), planDays)
		if err != nil && plans == nil {
			return fmt.Errorf("failed to generate plans: %v", err)
		}
		if err != nil {
			logger.Get().Warnf("some plans were not persisted: %v", err)
		}

		fmt.Print(notify.FormatPlans(plans))

		if planXLSX != "" {
			if err := excel.ExportPlans(plans, planXLSX); err != nil {
				return fmt.Errorf("failed to export plans: %v", err)
			}
			fmt.Printf("Plans exported to %s\n", planXLSX)
		}

		if planNotify {
			tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
			if err != nil {
				return fmt.Errorf("failed to create Telegram notifier: %v", err)
			}
			if err := tg.SendPlans(plans); err != nil {
				return fmt.Errorf("failed to deliver plans: %v", err)
			}
			fmt.Println("Plans delivered to Telegram")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().IntVar(&planDays, "days", 1, "Number of days to plan")
	planCmd.Flags().BoolVar(&planNotify, "notify", false, "Deliver the plans to Telegram")
	planCmd.Flags().StringVar(&planXLSX, "xlsx", "", "Export the plans to an Excel file")
}
