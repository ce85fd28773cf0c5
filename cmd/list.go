package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studybot/pkg/models"
	"github.com/spf13/cobra"
)

var listDue bool

// catalogReader is satisfied by stores that can enumerate the full catalog.
type catalogReader interface {
	AllItems(ctx context.Context) ([]models.Item, error)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked items",
	Long: `List the item catalog with each item's subject, review count and
next review date. With --due, only items due today or earlier are shown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores()
		if err != nil {
			return err
		}
		defer st.close()

		ctx := context.Background()

		var items []models.Item
		if listDue {
			items, err = st.items.DueItems(ctx, time.Now())
		} else {
			reader, ok := st.items.(catalogReader)
			if !ok {
				return fmt.Errorf("the configured backend cannot list the full catalog")
			}
			items, err = reader.AllItems(ctx)
		}
		if err != nil {
			return fmt.Errorf("failed to list items: %v", err)
		}

		if len(items) == 0 {
			fmt.Println("No items")
			return nil
		}
		for _, it := range items {
			due := "-"
			if !it.DueDate.IsZero() {
				due = it.DueDate.Format("2006-01-02")
			}
			fmt.Printf("%-36s  %-20s  reps %-3d  due %-10s  %s\n",
				it.ID, it.Subject, it.Repetitions, due, it.Question)
		}
		fmt.Printf("%d items\n", len(items))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listDue, "due", false, "Only items due today or earlier")
}
