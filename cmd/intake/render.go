package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"health-intake/internal/intake"
	"health-intake/internal/report"
)

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <record.json>",
		Short: "Render a saved record as a PDF report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			font, _ := cmd.Flags().GetString("font")

			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}

			log, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			renderer := report.NewRenderer(font, log)
			pdf, err := renderer.Render(cmd.Context(), rec)
			if err != nil {
				return err
			}
			if out == "" {
				out = renderer.FileName(rec)
			}
			if err := os.WriteFile(out, pdf, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("保存しました: "+out))
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "", "output path (defaults to HealthCheck_{name}_{time}.pdf)")
	cmd.Flags().String("font", "", "Japanese TrueType font to embed")
	return cmd
}

// readRecord loads a record saved by fill --save-record. Derived fields are
// recomputed so a hand-edited file cannot carry a stale BMI or judgment.
func readRecord(path string) (intake.PatientRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return intake.PatientRecord{}, fmt.Errorf("read record: %w", err)
	}
	rec := intake.NewPatientRecord()
	if err := json.Unmarshal(data, &rec); err != nil {
		return intake.PatientRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return intake.RestoreWizard(intake.StepReview, rec).Record(), nil
}

func writeRecord(path string, rec intake.PatientRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	return nil
}
