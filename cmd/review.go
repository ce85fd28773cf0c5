package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studybot/internal/workflow"
	"github.com/example/studybot/pkg/models"
	"github.com/spf13/cobra"
)

var reviewApply bool

var reviewCmd = &cobra.Command{
	Use:   "review [item-id quality]",
	Short: "Record a review result or apply pending review events",
	Long: `With an item id and a quality (incorrect, partial, correct, skipped),
record the outcome of reviewing that item. Without arguments, apply all
pending review events to the item schedules.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expects no arguments or <item-id> <quality>")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores()
		if err != nil {
			return err
		}
		defer st.close()

		service := newService(st)
		ctx := context.Background()

		if len(args) == 0 {
			return applyEvents(ctx, service)
		}

		quality, err := models.ParseQuality(args[1])
		if err != nil {
			return err
		}
		event, err := service.RecordReview(ctx, args[0], quality, time.Now())
		if err != nil {
			return fmt.Errorf("failed to record review: %v", err)
		}
		fmt.Printf("Recorded %s review for item %s (event %s)\n", quality, args[0], event.ID)

		if reviewApply {
			return applyEvents(ctx, service)
		}
		return nil
	},
}

func applyEvents(ctx context.Context, service *workflow.Service) error {
	result, err := service.ProcessEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply review events: %v", err)
	}
	for _, rej := range result.Rejected {
		fmt.Printf("Event %s rejected: %v\n", rej.Event.ID, rej.Reason)
	}
	for _, item := range result.Updated {
		fmt.Printf("Item %s rescheduled: next review %s (interval %d days)\n",
			item.ID, item.DueDate.Format("2006-01-02"), item.IntervalDays)
	}
	if len(result.Updated) == 0 && len(result.Rejected) == 0 {
		fmt.Println("No pending review events")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.Flags().BoolVar(&reviewApply, "apply", false, "Apply pending events immediately after recording")
}
