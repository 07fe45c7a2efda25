// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-16

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/similigh/rulebot/internal/core/pipeline"
	gh "github.com/similigh/rulebot/internal/integrations/github"
	"github.com/similigh/rulebot/internal/steps"
)

var (
	eventPath string
	eventName string
	itemFile  string
	preset    string
	noTUI     bool
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a single issue or pull request event",
	Long: `Process a single GitHub event through the rulebot pipeline.

Inside GitHub Actions the event is read from $GITHUB_EVENT_PATH and
$GITHUB_EVENT_NAME. Outside of it, pass --event and --event-name, or describe
the item directly with --item <file.json>.`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&eventPath, "event", os.Getenv("GITHUB_EVENT_PATH"), "Path to a webhook event payload")
	processCmd.Flags().StringVar(&eventName, "event-name", os.Getenv("GITHUB_EVENT_NAME"), "Webhook event name (issues, pull_request)")
	processCmd.Flags().StringVar(&itemFile, "item", "", "Path to an item JSON file (overrides --event)")
	processCmd.Flags().StringVar(&preset, "preset", "", "Preset to run (default: derived from the event)")
	processCmd.Flags().BoolVar(&noTUI, "no-tui", false, "Disable the progress UI")
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	item, err := loadItem(itemFile, eventName, eventPath)
	if errors.Is(err, gh.ErrUnsupportedEvent) {
		logger.Info("ignoring unsupported event", "event", eventName)
		return nil
	}
	if err != nil {
		return err
	}
	if preset != "" {
		if _, ok := pipeline.GetPreset(preset); !ok {
			return fmt.Errorf("unknown preset: %s", preset)
		}
	}

	client, err := newHost(ctx)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	d := steps.NewDispatcher(buildDependencies(cfg, client, compileRules(cfg), false))

	var res *pipeline.Result
	if isCI() || noTUI {
		logger.Info("processing", "item", item.Ref(), "event", item.EventType, "action", item.EventAction)
		res, err = d.Run(ctx, item, cfg, preset, nil)
	} else {
		res, err = runInteractive(ctx, d, item, cfg, preset)
	}
	if perr := printResult(cmd.OutOrStdout(), res); perr != nil && err == nil {
		err = perr
	}
	return err
}

// loadItem reads the item from an item JSON file, or else from a webhook payload.
// Items read from a file without an event default to "opened" for their kind.
func loadItem(itemPath, event, payloadPath string) (*pipeline.Item, error) {
	if itemPath != "" {
		data, err := os.ReadFile(itemPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read item file: %w", err)
		}
		var item pipeline.Item
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("failed to parse item JSON: %w", err)
		}
		defaultEvent(&item)
		return &item, nil
	}

	if payloadPath == "" || event == "" {
		return nil, errors.New("provide --item, or --event together with --event-name")
	}
	payload, err := os.ReadFile(payloadPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}
	return gh.ItemFromEvent(event, payload)
}

func defaultEvent(item *pipeline.Item) {
	if item.Kind == "" {
		item.Kind = pipeline.KindIssue
	}
	if item.EventType == "" {
		item.EventType = "issues"
		if item.IsPullRequest() {
			item.EventType = "pull_request"
		}
	}
	if item.EventAction == "" {
		item.EventAction = "opened"
	}
}
