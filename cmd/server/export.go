package main

import (
	"fmt"

	"hireflow/interview/internal/deadline"
	"hireflow/interview/internal/jobs"
	"hireflow/interview/internal/repositories"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportDir string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export finished interview transcripts once",
	Long:  `Write every finished, not yet exported interview transcript to a JSONL file and exit.`,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Export directory (defaults to TRANSCRIPT_EXPORT_DIR)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db)

	exporterConfig := exporterConfigFrom(cfg)
	if exportDir != "" {
		exporterConfig.ExportDir = exportDir
	}
	exporter := jobs.NewTranscriptExporter(
		repositories.NewSessionRepository(db),
		deadline.NewPolicy(cfg.InterviewDuration),
		exporterConfig,
		logger,
	)

	n, err := exporter.RunManual(cmd.Context())
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	logger.Info("export finished", zap.Int("sessions", n), zap.String("dir", exporterConfig.ExportDir))
	return nil
}
