// Package main provides the CLI entry point for roomsheet-go.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roomsheet/roomsheet-go/internal/config"
	"github.com/roomsheet/roomsheet-go/internal/logger"
	"github.com/roomsheet/roomsheet-go/internal/server"
	"github.com/roomsheet/roomsheet-go/pkg/roomsheet"
	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/aimap"
	"github.com/roomsheet/roomsheet-go/pkg/roomsheet/models"
)

var (
	outputPath string
	pretty     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "roomsheet [input.xlsx ...]",
		Short: "Extract rental listing records from spreadsheets",
		Long: `roomsheet-go extracts normalized rental listing records from Excel
files with inconsistent layouts and outputs JSON. When rule-based column
detection fails for a sheet, an optional Gemini-backed mapper takes over
(set GEMINI_API_KEY to enable it).`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExtract,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion service",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newEngine(cmd *cobra.Command, cfg *config.Config, log *zap.Logger) (*roomsheet.Engine, error) {
	mapper, err := aimap.NewMapper(cmd.Context(), cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	if err != nil {
		return nil, fmt.Errorf("init AI mapper: %w", err)
	}
	return roomsheet.NewEngine(
		roomsheet.WithLogger(log),
		roomsheet.WithColumnSuggester(mapper),
	), nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	engine, err := newEngine(cmd, cfg, log)
	if err != nil {
		return err
	}

	// Files are processed strictly one at a time; an unreadable workbook is
	// logged and the batch continues.
	allRecords := []models.RoomRecord{}
	for _, path := range args {
		records, err := engine.ProcessFile(cmd.Context(), path, filepath.Base(path))
		if err != nil {
			log.Error("file skipped", zap.String("file", path), zap.Error(err))
			continue
		}
		log.Info("file processed", zap.String("file", path), zap.Int("records", len(records)))
		allRecords = append(allRecords, records...)
	}

	var jsonData []byte
	if pretty {
		jsonData, err = json.MarshalIndent(allRecords, "", "  ")
	} else {
		jsonData, err = json.Marshal(allRecords)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, jsonData, 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Println(string(jsonData))
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer log.Sync()

	engine, err := newEngine(cmd, cfg, log)
	if err != nil {
		return err
	}

	srv := server.New(engine, log, cfg.Upload.Dir)
	log.Info("conversion service listening", zap.String("addr", cfg.HTTP.Addr))
	return http.ListenAndServe(cfg.HTTP.Addr, srv.Routes())
}
