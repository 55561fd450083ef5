package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/draftworks/manualj-cli/internal/model"
	"github.com/draftworks/manualj-cli/internal/report"
)

var (
	analyzePDF      string
	analyzeZip      string
	analyzeProject  string
	analyzePages    []int
	analyzeScale    float64
	analyzeDeclared float64
	analyzeJSON     bool
	analyzeXLSX     string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a blueprint PDF and compute Manual-J loads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if _, err := os.Stat(analyzePDF); err != nil {
			return eris.Wrapf(err, "pdf not readable: %s", analyzePDF)
		}

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		req := model.AnalysisRequest{
			PDFPath:          analyzePDF,
			ZipCode:          analyzeZip,
			ProjectID:        analyzeProject,
			SpecificPages:    analyzePages,
			ScaleOverride:    analyzeScale,
			DeclaredAreaSqFt: analyzeDeclared,
		}

		result, err := p.Run(ctx, req)
		if err != nil {
			return eris.Wrap(err, "analyze")
		}

		if analyzeXLSX != "" && result.Success {
			if err := report.ExportXLSX(result, analyzeXLSX); err != nil {
				zap.L().Warn("xlsx export failed", zap.Error(err))
			}
		}

		if analyzeJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		if !result.Success {
			fmt.Fprintf(os.Stderr, "analysis did not complete (%s): %s\n", result.ErrorType, result.Error)
			if result.ErrorType == "needs_input" {
				fmt.Fprintf(os.Stderr, "required input: %s\n", result.InputType)
			}
			return eris.New("analysis failed")
		}

		fmt.Println(report.RenderSummary(result))
		fmt.Println(report.RenderLoadSchedule(result.Loads))
		for _, w := range result.Metadata.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s\n", w)
		}
		fmt.Printf("run %s saved\n", result.RunID)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzePDF, "pdf", "", "blueprint PDF path (required)")
	analyzeCmd.Flags().StringVar(&analyzeZip, "zip", "", "property ZIP code for design conditions")
	analyzeCmd.Flags().StringVar(&analyzeProject, "project", "", "project identifier")
	analyzeCmd.Flags().IntSliceVar(&analyzePages, "pages", nil, "0-indexed floor plan pages, pinned instead of classified")
	analyzeCmd.Flags().Float64Var(&analyzeScale, "scale", 0, "scale override in px/ft, skips detection")
	analyzeCmd.Flags().Float64Var(&analyzeDeclared, "declared-area", 0, "declared conditioned area in sqft, cross-checked")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the full result as JSON")
	analyzeCmd.Flags().StringVar(&analyzeXLSX, "xlsx", "", "also write the load schedule to this XLSX path")
	_ = analyzeCmd.MarkFlagRequired("pdf")
	rootCmd.AddCommand(analyzeCmd)
}
