package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/soaringjerry/clima/internal/output"
	"github.com/soaringjerry/clima/internal/services"
)

var (
	flagReportOut   string
	flagReportPrint bool
	flagSummaryJSON bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the HTML climate report to a file",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, log, err := buildReport(cmd.Context())
		if err != nil {
			return err
		}
		variant := services.ReportScreen
		if flagReportPrint {
			variant = services.ReportPrint
		}
		doc, err := services.RenderReportHTML(report, variant)
		if err != nil {
			return err
		}
		path := flagReportOut
		if path == "" {
			path = services.ReportFilename(report, variant)
		} else if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, services.ReportFilename(report, variant))
		}
		if err := os.WriteFile(path, doc, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		log.Info("report written", zap.String("path", path), zap.Int64("responses", report.TotalResponses))
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the report headline and area scores to the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		report, _, err := buildReport(cmd.Context())
		if err != nil {
			return err
		}
		if flagSummaryJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		if flagNoColor {
			output.SetNoColor(true)
		} else {
			output.AutoColor(os.Stdout)
		}
		return output.WriteSummary(cmd.OutOrStdout(), report)
	},
}

func init() {
	reportCmd.Flags().StringVarP(&flagReportOut, "out", "o", "", "Output file or directory (default: dated file name in the current directory)")
	reportCmd.Flags().BoolVar(&flagReportPrint, "print", false, "Render the print-friendly variant")
	summaryCmd.Flags().BoolVar(&flagSummaryJSON, "json", false, "Output the computed report as JSON")
	rootCmd.AddCommand(reportCmd, summaryCmd)
}

func buildReport(ctx context.Context) (*services.Report, *zap.Logger, error) {
	env, err := loadEnvironment()
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := env.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = closeStore() }()
	in, err := services.NewAnalyticsService(store, env.log).ReportInput(ctx)
	if err != nil {
		return nil, nil, err
	}
	return services.BuildReport(*in), env.log, nil
}
