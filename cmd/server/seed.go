package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/news-notes-api/internal/repository"
	"github.com/news-notes-api/internal/service"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load seed data",
}

var seedNewsCmd = &cobra.Command{
	Use:   "news FILE",
	Short: "Import news from an NDJSON file, one object per line",
	Long: `Import news from an NDJSON file. Each line holds one object:

  {"title": "...", "text": "...", "date": "2024-01-31"}

Invalid lines are skipped and reported with their line number.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeedNews,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.AddCommand(seedNewsCmd)
}

func runSeedNews(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	services := service.NewServices(repository.New(db), cfg, nil, log)
	result, err := services.Import.ImportNews(context.Background(), f)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
