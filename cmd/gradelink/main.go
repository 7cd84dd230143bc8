// Package main provides the CLI entry point for gradelink-go.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/omahdaoui/gradelink-go/pkg/gradelink"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/detect"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/models"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/sheet"
)

var (
	sheetName  string
	configPath string
	pretty     bool
	logStyle   string
	outputPath string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gradelink",
		Short: "Write OCR-extracted marks into loosely structured gradesheets",
		Long: `gradelink-go infers which columns of a gradesheet hold student
identifiers, names and marks, links OCR-extracted records to the right
rows by fuzzy Arabic name matching, and writes the marks in.`,
	}

	rootCmd.PersistentFlags().StringVar(&sheetName, "sheet", "", "Sheet name (default: first sheet that detects as a gradesheet)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML threshold configuration file")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	rootCmd.PersistentFlags().StringVar(&logStyle, "log", "terminal", "Log style: terminal, json, noop")

	detectCmd := &cobra.Command{
		Use:   "detect [input.xlsx]",
		Short: "Infer and print the sheet's column structure",
		Args:  cobra.ExactArgs(1),
		RunE:  runDetect,
	}

	previewCmd := &cobra.Command{
		Use:   "preview [input.xlsx] [records.json]",
		Short: "Dry-run: show which rows and cells would receive marks",
		Args:  cobra.ExactArgs(2),
		RunE:  runPreview,
	}

	commitCmd := &cobra.Command{
		Use:   "commit [input.xlsx] [records.json]",
		Short: "Write the extracted marks into the sheet",
		Args:  cobra.ExactArgs(2),
		RunE:  runCommit,
	}
	commitCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output workbook path (default: save in place)")

	rootCmd.AddCommand(detectCmd, previewCmd, commitCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := openWorkbook(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	name, _, st, err := locate(f, cfg)
	if err != nil {
		return err
	}
	return printJSON(struct {
		Sheet     string                     `json:"sheet"`
		Structure *models.WorksheetStructure `json:"structure"`
	}{name, st})
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	records, err := loadRecords(args[1])
	if err != nil {
		return err
	}
	f, err := openWorkbook(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	_, grid, st, err := locate(f, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	res, err := gradelink.PreviewInsertion(ctx, records, st, grid, cfg)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func runCommit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	records, err := loadRecords(args[1])
	if err != nil {
		return err
	}
	f, err := openWorkbook(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	name, grid, st, err := locate(f, cfg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	w := sheet.NewWriter(f, name)
	out, err := gradelink.CommitInsertion(ctx, records, st, grid, w, cfg)
	if err != nil {
		return err
	}

	if outputPath != "" {
		err = f.SaveAs(outputPath)
	} else {
		err = f.Save()
	}
	if err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return printJSON(out)
}

// locate picks the target sheet: the named one, or the first that
// detects as a gradesheet.
func locate(f *excelize.File, cfg gradelink.Config) (string, models.Grid, *models.WorksheetStructure, error) {
	if sheetName != "" {
		grid, err := sheet.Load(f, sheetName)
		if err != nil {
			return "", nil, nil, err
		}
		st, err := gradelink.DetectStructure(grid, cfg)
		if err != nil {
			return "", nil, nil, err
		}
		return sheetName, grid, st, nil
	}
	return sheet.FindGradesheet(f, detect.NewDetector(cfg.Detect))
}

func openWorkbook(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return excelize.OpenFile(path)
}

func loadConfig() (gradelink.Config, error) {
	var cfg gradelink.Config
	var err error
	if configPath != "" {
		cfg, err = gradelink.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
	} else {
		cfg = gradelink.DefaultConfig()
	}
	cfg.Logger, err = newLogger(logStyle)
	return cfg, err
}

// loadRecords reads the OCR collaborator's output: an ordered JSON
// array of {"name": ..., "marks": {"fard1": 12.5, ...}} objects.
func loadRecords(path string) ([]models.ExtractedRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	var records []models.ExtractedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse records %s: %w", path, err)
	}
	return records, nil
}

func newLogger(style string) (*zap.Logger, error) {
	switch style {
	case "noop":
		return zap.NewNop(), nil
	case "json":
		return zap.NewProduction()
	case "terminal":
		return zap.NewDevelopment()
	}
	return nil, fmt.Errorf("invalid log style %q: must be terminal, json or noop", style)
}

func printJSON(v interface{}) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
