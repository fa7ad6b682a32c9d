package main

import (
	"fmt"

	"github.com/NeuralTrust/ImageGuard/pkg/dependency_container"
	"github.com/NeuralTrust/ImageGuard/pkg/detectors/memory"
	"github.com/NeuralTrust/ImageGuard/pkg/report"
	"github.com/spf13/cobra"
)

var (
	moderateOut    string
	moderateDryRun bool
	moderateJSON   bool
)

var moderateCmd = &cobra.Command{
	Use:   "moderate <image>",
	Short: "Moderate one image and print the report",
	Long: `Runs the full detector pipeline on a local path or an http(s) URL.

With --dry-run every detector answers "clean" without calling any model, which
exercises ingestion, fusion and report output offline.`,
	Args: cobra.ExactArgs(1),
	RunE: runModerate,
}

func init() {
	moderateCmd.Flags().StringVarP(&moderateOut, "out", "o", "", "write the JSON report to this file")
	moderateCmd.Flags().BoolVar(&moderateDryRun, "dry-run", false, "use in-memory detectors instead of remote models")
	moderateCmd.Flags().BoolVar(&moderateJSON, "json", false, "print the JSON report instead of the summary")
	rootCmd.AddCommand(moderateCmd)
}

func runModerate(cmd *cobra.Command, args []string) error {
	logger := cliLogger(cmd.ErrOrStderr())

	cfg, err := loadConfig(moderateDryRun)
	if err != nil {
		return err
	}

	di := dependency_container.ContainerDI{Cfg: cfg, Logger: logger, Offline: moderateDryRun}
	if moderateDryRun {
		set := memory.NewSafeSet()
		di.Detectors = &set
	}
	container, err := dependency_container.NewContainer(di)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx := cmd.Context()
	imagePath, cleanup, err := container.Fetcher.Resolve(ctx, args[0])
	if err != nil {
		return err
	}
	defer cleanup()

	rep, err := container.Moderator.Moderate(ctx, imagePath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if moderateJSON {
		if err := report.WriteJSON(out, rep); err != nil {
			return err
		}
	} else {
		report.Print(out, rep)
	}

	if moderateOut != "" {
		if err := report.ExportJSON(moderateOut, rep); err != nil {
			return fmt.Errorf("failed to export report: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "report saved to %s\n", moderateOut)
	}
	return nil
}
