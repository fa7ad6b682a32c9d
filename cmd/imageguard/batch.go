package main

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/NeuralTrust/ImageGuard/pkg/dependency_container"
	"github.com/NeuralTrust/ImageGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ImageGuard/pkg/report"
	"github.com/spf13/cobra"
)

var (
	batchConcurrency int
	batchCSV         string
)

var batchCmd = &cobra.Command{
	Use:   "batch <list-file | image...>",
	Short: "Moderate many images and print one decision letter per image",
	Long: `Moderates every input independently. A single argument ending in .txt or
.list is read as a file with one path or URL per line; otherwise each argument is
an image. Output is "<input>\t<letter>" with A (accept), F (flag), R (reject) or
Error when the image could not be fetched.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "n", 0, "images moderated in parallel (defaults to pipeline.batch_concurrency)")
	batchCmd.Flags().StringVar(&batchCSV, "csv", "", "also write input, letter, decision and violations to this CSV file")
	rootCmd.AddCommand(batchCmd)
}

type batchRow struct {
	input  string
	report *moderation.Report
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := cliLogger(cmd.ErrOrStderr())

	inputs, err := batchInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%w: no images to moderate", errUsage)
	}

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}
	if batchConcurrency > 0 {
		cfg.Pipeline.BatchConcurrency = batchConcurrency
	}
	container, err := dependency_container.NewContainer(dependency_container.ContainerDI{Cfg: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer container.Close()

	ctx := cmd.Context()
	rows := make([]batchRow, len(inputs))
	var (
		paths   []string
		indexes []int
	)
	for i, input := range inputs {
		rows[i].input = input
		path, cleanup, err := container.Fetcher.Resolve(ctx, input)
		if err != nil {
			logger.WithError(err).WithField("input", input).Warn("failed to fetch image")
			continue
		}
		defer cleanup()
		paths = append(paths, path)
		indexes = append(indexes, i)
	}

	if len(paths) > 0 {
		reports, err := container.Moderator.ModerateBatch(ctx, paths)
		if err != nil {
			return err
		}
		for j, rep := range reports {
			rows[indexes[j]].report = rep
		}
	}

	out := cmd.OutOrStdout()
	for _, row := range rows {
		fmt.Fprintf(out, "%s\t%s\n", row.input, rowLetter(row))
	}
	if batchCSV != "" {
		return writeBatchCSV(batchCSV, rows)
	}
	return nil
}

func rowLetter(row batchRow) string {
	return report.Letter(row.report)
}

func batchInputs(args []string) ([]string, error) {
	if len(args) != 1 {
		return args, nil
	}
	ext := strings.ToLower(filepath.Ext(args[0]))
	if ext != ".txt" && ext != ".list" {
		return args, nil
	}
	f, err := os.Open(filepath.Clean(args[0]))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readInputList(f)
}

// readInputList skips blank lines and lines starting with #.
func readInputList(r io.Reader) ([]string, error) {
	var inputs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}
	return inputs, scanner.Err()
}

func writeBatchCSV(path string, rows []batchRow) error {
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := writeBatchRows(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeBatchRows(out io.Writer, rows []batchRow) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"input", "letter", "final_decision", "violations", "report_id"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{row.input, rowLetter(row), "", "", ""}
		if row.report != nil {
			record[2] = string(row.report.FinalDecision)
			record[3] = strings.Join(row.report.Violations.Strings(), ";")
			record[4] = row.report.ID.String()
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
