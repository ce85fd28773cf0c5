package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/example/studybot/internal/ai"
	"github.com/spf13/cobra"
)

var gradeAnswer string

var gradeCmd = &cobra.Command{
	Use:   "grade <item-id>",
	Short: "Grade an answer with the AI assistant and record the result",
	Long: `Show an item's question, grade the learner's answer against the
reference answer using the configured AI model, and record the resulting
quality as a review event. The answer is taken from --answer or read from
stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		grader, err := ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		if err != nil {
			return err
		}

		st, err := openStores()
		if err != nil {
			return err
		}
		defer st.close()

		service := newService(st)
		ctx := context.Background()

		item, err := st.items.Item(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to load item: %v", err)
		}

		fmt.Printf("[%s] %s\n", item.Subject, item.Question)

		answer := gradeAnswer
		if answer == "" {
			fmt.Print("Your answer: ")
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read answer: %v", err)
			}
			answer = strings.TrimSpace(line)
		}
		if answer == "" {
			return fmt.Errorf("answer is empty")
		}

		eval, err := grader.Grade(ctx, item.Question, item.Answer, answer)
		if err != nil {
			return fmt.Errorf("grading failed: %v", err)
		}

		fmt.Printf("Verdict: %s\n", eval.Quality)
		if eval.Feedback != "" {
			fmt.Printf("Feedback: %s\n", eval.Feedback)
		}

		event, err := service.RecordReview(ctx, item.ID, eval.Quality, time.Now())
		if err != nil {
			return fmt.Errorf("failed to record review: %v", err)
		}
		fmt.Printf("Recorded as event %s\n", event.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gradeCmd)
	gradeCmd.Flags().StringVar(&gradeAnswer, "answer", "", "Answer text (read from stdin if omitted)")
}
