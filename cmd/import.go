package cmd

import (
	"context"
	"fmt"

	"github.com/example/studybot/internal/excel"
	"github.com/spf13/cobra"
)

var (
	importSheet    string
	importStartRow int
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import study items from an Excel or CSV file",
	Long: `Import items from a spreadsheet. Excel files use three columns:
subject, question, answer. CSV files use question,answer rows grouped under
subject header lines.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores()
		if err != nil {
			return err
		}
		defer st.close()

		importCfg := excel.DefaultImportConfig()
		importCfg.FilePath = args[0]
		importCfg.SheetName = importSheet
		importCfg.StartRow = importStartRow

		result, err := excel.ImportItems(context.Background(), st.items, importCfg)
		if err != nil {
			return fmt.Errorf("import failed: %v", err)
		}

		fmt.Printf("Processed %d rows: %d created, %d skipped\n",
			result.TotalProcessed, result.Created, result.Skipped)
		for _, e := range result.Errors {
			fmt.Println(" -", e)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importSheet, "sheet", "Sheet1", "Sheet name for Excel files")
	importCmd.Flags().IntVar(&importStartRow, "start-row", 2, "First data row (1-based)")
}
