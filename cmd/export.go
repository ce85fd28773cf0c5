package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studybot/internal/excel"
	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/pkg/models"
	"github.com/spf13/cobra"
)

var exportDays int

// planReader is satisfied by stores that can return previously saved plans.
type planReader interface {
	PlanForDate(ctx context.Context, date time.Time) (*models.DayPlan, error)
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export stored study plans to an Excel file",
	Long: `Export the stored plans for the coming days to an Excel file, one
sheet per day. Days without a stored plan are generated first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores()
		if err != nil {
			return err
		}
		defer st.close()

		ctx := context.Background()
		start := spaced_repetition.StartOfDay(time.Now())

		var plans []models.DayPlan
		if reader, ok := st.plans.(planReader); ok {
			for d := 0; d < exportDays; d++ {
				plan, err := reader.PlanForDate(ctx, start.AddDate(0, 0, d))
				if err != nil {
					return fmt.Errorf("failed to load stored plans: %v", err)
				}
				if plan == nil {
					plans = nil
					break
				}
				plans = append(plans, *plan)
			}
		}

		// Бэкенд без хранения планов или неполный горизонт: строим заново.
		if len(plans) < exportDays {
			service := newService(st)
			plans, err = service.GeneratePlan(ctx, time.Now(), exportDays)
			if err != nil && plans == nil {
				return fmt.Errorf("failed to generate plans: %v", err)
			}
		}

		if err := excel.ExportPlans(plans, args[0]); err != nil {
			return fmt.Errorf("failed to export plans: %v", err)
		}
		fmt.Printf("Exported %d day plans to %s\n", len(plans), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().IntVar(&exportDays, "days", 1, "Number of days to export")
}
