package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iksnae/jarvis/internal"
	"github.com/iksnae/jarvis/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <prompt> [prompt...]",
	Short: "Ask questions and export the conversation to file",
	Long: `Run prompts in one conversation and export the result in various
formats (jsonl, md, yaml, json). With --format csv every table in the
transcript is written to its own CSV file (at most 100 rows each).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Validate the format before talking to the backend
		var exporter export.Exporter
		if format != "csv" {
			var err error
			exporter, err = export.NewExporter(format)
			if err != nil {
				return fmt.Errorf("%w; use csv to write each table to its own file", err)
			}
		}

		ctx := context.Background()
		session, _, err := newSession(ctx)
		if err != nil {
			return err
		}
		if err := runPrompts(ctx, session, args); err != nil {
			return err
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		state := session.Snapshot()
		if exporter == nil {
			written, err := writeTables(state.Transcript, outputDir)
			if err != nil {
				return err
			}
			internal.PrintSuccess(fmt.Sprintf("Export complete: %d table(s) written to %s", written, outputDir))
			return nil
		}

		record := internal.NewSession(state, session.SelectedContext(), time.Now())
		path := filepath.Join(outputDir, fmt.Sprintf("conversation_%s.%s", record.ID, exporter.Extension()))
		if err := writeSession(exporter, record, path); err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Export complete: %d message(s) written to %s", len(record.Messages), path))
		return nil
	},
}

func writeSession(exporter export.Exporter, record *internal.Session, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := exporter.Export(record, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		internal.LogWarn("Failed to close file %s: %v", path, err)
	}
	return nil
}

// writeTables writes every tabular message as table_<index>.csv
func writeTables(transcript []internal.DisplayMessage, dir string) (int, error) {
	written := 0
	for i, msg := range transcript {
		if !msg.IsTabular() {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("table_%d.csv", i))
		data, err := export.TableCSV(msg)
		if err != nil {
			return written, &internal.ExportError{Format: "csv", Path: path, Err: err}
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, &internal.ExportError{Format: "csv", Path: path, Err: err}
		}
		written++
	}
	return written, nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "md", "Export format (jsonl, md, yaml, json, csv)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
}
