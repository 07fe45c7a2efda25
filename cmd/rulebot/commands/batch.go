// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-10
// Last Modified: 2026-10-16

package commands

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/similigh/rulebot/internal/core/config"
	"github.com/similigh/rulebot/internal/core/pipeline"
	"github.com/similigh/rulebot/internal/host/hosttest"
	"github.com/similigh/rulebot/internal/steps"
)

var (
	batchFile    string
	batchOutFile string
	batchFormat  string
	batchWorkers int
	batchPreset  string
)

// BatchResult represents the result of processing a single item
type BatchResult struct {
	Item   pipeline.Item
	Result *pipeline.Result
	Error  error
}

// JSONOutput represents the JSON output structure
type JSONOutput struct {
	ProcessedAt time.Time     `json:"processed_at"`
	TotalItems  int           `json:"total_items"`
	Successful  int           `json:"successful"`
	Failed      int           `json:"failed"`
	Results     []ResultEntry `json:"results"`
}

// ResultEntry represents a single result entry in JSON output
type ResultEntry struct {
	Item   pipeline.Item    `json:"item"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate multiple items from a JSON file",
	Long: `Evaluate multiple issues and pull requests in batch mode.
This command reads items from a JSON file and runs them through the pipeline
with dry-run forced. Item state comes from the file itself (its labels), so
no GitHub access is needed and nothing is written anywhere.

Use cases:
- Try a new rule set against historical items before enabling it
- Report which labels, mentions and editorial comments the bot would produce`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchFile, "file", "", "Path to JSON file containing an array of items (required)")
	batchCmd.Flags().StringVar(&batchOutFile, "out-file", "", "Output file path (stdout if not specified)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "", "Output format: json or csv (default: from --out-file, else json)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 1, "Number of concurrent workers")
	batchCmd.Flags().StringVar(&batchPreset, "preset", "", "Preset to run (default: derived from each item)")

	if err := batchCmd.MarkFlagRequired("file"); err != nil {
		fmt.Printf("Warning: Failed to mark file flag as required: %v\n", err)
	}
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	items, err := loadItems(batchFile)
	if err != nil {
		return fmt.Errorf("error loading items: %w", err)
	}
	logger.Debug("loaded items", "count", len(items), "file", batchFile)

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if batchPreset != "" {
		if _, ok := pipeline.GetPreset(batchPreset); !ok {
			return fmt.Errorf("unknown preset: %s", batchPreset)
		}
	}

	logger.Info("processing batch", "items", len(items), "workers", batchWorkers)
	results := processBatch(ctx, items, cfg, batchPreset, batchWorkers)

	format := resolveFormat(batchFormat, batchOutFile)
	w := cmd.OutOrStdout()
	if batchOutFile != "" {
		f, err := os.Create(batchOutFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := outputResults(w, results, format); err != nil {
		return fmt.Errorf("error outputting results: %w", err)
	}

	successful, failed := countResults(results)
	logger.Info("batch processing completed", "successful", successful, "failed", failed)
	return nil
}

// loadItems reads and parses a JSON file containing an array of items
func loadItems(filePath string) ([]pipeline.Item, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var items []pipeline.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no items found in file")
	}

	for i := range items {
		it := &items[i]
		if it.Org == "" || it.Repo == "" || it.Number == 0 || it.Title == "" {
			return nil, fmt.Errorf("item at index %d missing required fields (org, repo, number, title)", i)
		}
		defaultEvent(it)
	}

	return items, nil
}

// processBatch evaluates every item with at most workers running at once. Each item gets
// its own in-memory host seeded from the item. Execution is always dry-run.
func processBatch(ctx context.Context, items []pipeline.Item, cfg *config.Config, preset string, workers int) []BatchResult {
	if workers < 1 {
		workers = 1
	}
	compiled := compileRules(cfg)
	results := make([]BatchResult, len(items))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range items {
		i := i
		g.Go(func() error {
			item := items[i]
			fake := hosttest.New()
			fake.Put(item.Ref(), hosttest.Item{Title: item.Title, Labels: item.Labels})

			deps := buildDependencies(cfg, fake, compiled, true)
			res, err := steps.NewDispatcher(deps).Run(ctx, &item, cfg, preset, nil)

			results[i] = BatchResult{Item: items[i], Result: res, Error: err}
			if err != nil {
				logger.Warn("item failed", "item", item.Ref(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func countResults(results []BatchResult) (successful, failed int) {
	for _, r := range results {
		if r.Error == nil {
			successful++
		} else {
			failed++
		}
	}
	return successful, failed
}

func resolveFormat(format, outFile string) string {
	if format != "" {
		return format
	}
	if strings.ToLower(filepath.Ext(outFile)) == ".csv" {
		return "csv"
	}
	return "json"
}

// outputResults formats and writes results to w
func outputResults(w io.Writer, results []BatchResult, format string) error {
	var data []byte
	var err error

	switch format {
	case "csv":
		data, err = formatCSV(results)
	case "json":
		data, err = formatJSON(results)
	default:
		return fmt.Errorf("unsupported format: %s (use json or csv)", format)
	}
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	_, err = w.Write(data)
	return err
}

// formatJSON formats results as JSON
func formatJSON(results []BatchResult) ([]byte, error) {
	entries := make([]ResultEntry, len(results))
	for i, r := range results {
		entries[i] = ResultEntry{Item: r.Item, Result: r.Result}
		if r.Error != nil {
			entries[i].Error = r.Error.Error()
		}
	}

	successful, failed := countResults(results)
	output := JSONOutput{
		ProcessedAt: time.Now(),
		TotalItems:  len(results),
		Successful:  successful,
		Failed:      failed,
		Results:     entries,
	}

	return json.MarshalIndent(output, "", "  ")
}

var csvHeader = []string{
	"number",
	"org",
	"repo",
	"kind",
	"title",
	"author",
	"preset",
	"skipped",
	"skip_reason",
	"triggered_rules",
	"labels_to_add",
	"mentions",
	"normalized_title",
	"title_violations",
	"body_violations",
	"planned_actions",
	"error",
}

// formatCSV formats results as CSV
func formatCSV(results []BatchResult) ([]byte, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeader); err != nil {
		return nil, err
	}

	for _, r := range results {
		row := make([]string, len(csvHeader))
		row[0] = strconv.Itoa(r.Item.Number)
		row[1] = r.Item.Org
		row[2] = r.Item.Repo
		row[3] = string(r.Item.Kind)
		row[4] = r.Item.Title
		row[5] = r.Item.Author

		if r.Error != nil {
			row[16] = r.Error.Error()
		}
		if res := r.Result; res != nil {
			row[6] = res.Preset
			row[7] = strconv.FormatBool(res.Skipped)
			row[8] = res.SkipReason
			row[9] = strings.Join(res.TriggeredRules, ";")
			row[10] = strings.Join(res.LabelsToAdd, ";")
			row[11] = res.Mentions
			row[12] = res.NormalizedTitle
			row[13] = strings.Join(res.TitleViolations, ";")
			row[14] = strings.Join(res.BodyViolations, ";")
			planned := make([]string, len(res.Plan))
			for i, a := range res.Plan {
				planned[i] = a.String()
			}
			row[15] = strings.Join(planned, ";")
		}

		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return []byte(buf.String()), nil
}
