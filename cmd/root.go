package cmd

import (
	"fmt"
	"os"

	"github.com/example/studybot/internal/config"
	"github.com/example/studybot/internal/database"
	"github.com/example/studybot/internal/logger"
	"github.com/example/studybot/internal/notion"
	"github.com/example/studybot/internal/spaced_repetition"
	"github.com/example/studybot/internal/workflow"
	"github.com/spf13/cobra"
)

var cfg *config.AppConfig

var rootCmd = &cobra.Command{
	Use:   "studybot",
	Short: "Spaced repetition study planner",
	Long: `Studybot schedules quiz reviews with an SM-2 style algorithm and
builds balanced daily study plans across subjects.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %v", err)
		}
		logger.Init(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// stores groups the storage ports behind the configured backend.
type stores struct {
	items  workflow.ItemStore
	events workflow.EventStore
	plans  workflow.PlanStore
	close  func() error
}

func openStores() (*stores, error) {
	if cfg.StoreBackend == config.BackendNotion {
		client := notion.NewClient(cfg.NotionAPIKey)
		st := notion.NewStore(client, cfg.NotionQuizDB, cfg.NotionEventsDB, cfg.NotionPlansDB, logger.Get())
		return &stores{items: st, events: st, plans: st, close: func() error { return nil }}, nil
	}

	dsn := cfg.SQLitePath
	if cfg.DBType == "postgres" {
		dsn = cfg.PostgresURL
	}
	if err := database.Connect(cfg.DBType, dsn); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	return &stores{
		items:  database.NewItemRepository(),
		events: database.NewEventRepository(),
		plans:  database.NewPlanRepository(),
		close:  database.Close,
	}, nil
}

func newService(st *stores) *workflow.Service {
	sm2 := spaced_repetition.New(cfg.SchedulerConfig())
	return workflow.NewService(st.items, st.events, st.plans, sm2, cfg.PlanConstraints(), logger.Get())
}
