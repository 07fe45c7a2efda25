// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/Kavirubc
// Created: 2026-02-02
// Last Modified: 2026-10-17

// Package config handles loading and merging rulebot configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values applied by applyDefaults.
const (
	DefaultMaxNewLabels     = 100
	DefaultNeedsTriageLabel = "needs-triage"
	DefaultAreaLabelPrefix  = "area/"
	DefaultExemptionLabel   = "kind/extension-proposal"
	DefaultConfigPath       = ".github/rulebot.yaml"
)

// Match kinds and scopes understood by the rule matcher.
const (
	MatchKindLiteral = "literal"
	MatchKindRegex   = "regex"

	ScopeTitle  = "title"
	ScopeBody   = "body"
	ScopeEither = "either"
	ScopeBoth   = "both"
)

// Config is the root configuration structure.
type Config struct {
	// Extends allows inheriting from a remote config (e.g., "org/repo@branch").
	Extends string `yaml:"extends,omitempty"`

	// Features toggles the individual bot capabilities.
	Features FeaturesConfig `yaml:"features"`

	// DryRun suppresses every mutating host call.
	DryRun bool `yaml:"dry_run,omitempty"`

	// BotUsers lists additional logins whose events are ignored.
	BotUsers []string `yaml:"bot_users,omitempty"`

	// Triage holds the triage rule set and label policy.
	Triage TriageConfig `yaml:"triage"`

	// Repositories lists the repositories this config applies to.
	Repositories []RepositoryConfig `yaml:"repositories,omitempty"`
}

// FeaturesConfig holds the named feature toggles.
type FeaturesConfig struct {
	CheckEditorialRules         bool `yaml:"check_editorial_rules"`
	TriageIssuesAndPullRequests bool `yaml:"triage_issues_and_pull_requests"`
}

// TriageConfig configures the triage flavor.
type TriageConfig struct {
	// MaxNewLabels caps how many labels a single run may add.
	MaxNewLabels int `yaml:"max_new_labels,omitempty"`

	// NeedsTriageLabel is applied when no rule classified the item.
	NeedsTriageLabel string `yaml:"needs_triage_label,omitempty"`

	// AreaLabelPrefix identifies "area" labels.
	AreaLabelPrefix string `yaml:"area_label_prefix,omitempty"`

	// ExemptionLabels suppress the needs-triage fallback when present on the item.
	ExemptionLabels []string `yaml:"exemption_labels,omitempty"`

	// Rules are evaluated in order.
	Rules []TriageRule `yaml:"rules,omitempty"`
}

// TriageRule is a configured text-match trigger.
type TriageRule struct {
	ID      string      `yaml:"id"`
	Match   MatchConfig `yaml:"match"`
	Labels  []string    `yaml:"labels,omitempty"`
	Notify  []string    `yaml:"notify,omitempty"`
	Comment string      `yaml:"comment,omitempty"`
}

// MatchConfig describes how a rule matches the item text.
type MatchConfig struct {
	Pattern       string `yaml:"pattern"`
	Kind          string `yaml:"kind,omitempty"`  // literal or regex
	Scope         string `yaml:"scope,omitempty"` // title, body, either or both
	CaseSensitive bool   `yaml:"case_sensitive,omitempty"`
}

// RepositoryConfig defines a repository and its settings.
type RepositoryConfig struct {
	Org     string `yaml:"org"`
	Repo    string `yaml:"repo"`
	Enabled bool   `yaml:"enabled"`
}

// Load reads a config file from the given path and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := parseRaw(data)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return cfg, nil
}

// Parse parses YAML content and applies defaults.
func Parse(data []byte) (*Config, error) {
	cfg, err := parseRaw(data)
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// parseRaw unmarshals without applying defaults. Environment variables are expanded in
// scalar values, except in match patterns where '$' is a regex anchor.
func parseRaw(data []byte) (*Config, error) {
	var cfg Config
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if root.Kind == 0 {
		return &cfg, nil
	}
	expandNode(&root)
	if err := root.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func expandNode(n *yaml.Node) {
	switch n.Kind {
	case yaml.ScalarNode:
		expanded := os.ExpandEnv(n.Value)
		if expanded != n.Value && n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) == 0 {
			// Re-resolve so "${FLAG}" can still decode into a bool or int.
			n.Tag = ""
		}
		n.Value = expanded
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == "pattern" {
				continue
			}
			expandNode(n.Content[i+1])
		}
	default:
		for _, c := range n.Content {
			expandNode(c)
		}
	}
}

// LoadWithInheritance loads a config and resolves the 'extends' chain.
// The fetcher function is used to retrieve remote configs.
func LoadWithInheritance(path string, fetcher func(ref string) ([]byte, error)) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := parseRaw(data)
	if err != nil {
		return nil, err
	}

	if cfg.Extends == "" {
		cfg.applyDefaults()
		return cfg, nil
	}

	parentData, err := fetcher(cfg.Extends)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch parent config '%s': %w", cfg.Extends, err)
	}

	parentCfg, err := parseRaw(parentData)
	if err != nil {
		return nil, fmt.Errorf("failed to parse parent config: %w", err)
	}

	// Merge: child overrides parent
	merged := mergeConfigs(parentCfg, cfg)
	merged.applyDefaults()

	return merged, nil
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	candidates := []string{
		".github/rulebot.yaml",
		".github/rulebot.yml",
		".rulebot.yaml",
		".rulebot.yml",
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.Triage.MaxNewLabels <= 0 {
		c.Triage.MaxNewLabels = DefaultMaxNewLabels
	}
	if c.Triage.NeedsTriageLabel == "" {
		c.Triage.NeedsTriageLabel = DefaultNeedsTriageLabel
	}
	if c.Triage.AreaLabelPrefix == "" {
		c.Triage.AreaLabelPrefix = DefaultAreaLabelPrefix
	}
	if c.Triage.ExemptionLabels == nil {
		c.Triage.ExemptionLabels = []string{DefaultExemptionLabel}
	}
	for i := range c.Triage.Rules {
		m := &c.Triage.Rules[i].Match
		if m.Kind == "" {
			m.Kind = MatchKindRegex
		}
		if m.Scope == "" {
			m.Scope = ScopeEither
		}
	}
}

// mergeConfigs merges a child config onto a parent config.
// Non-zero values in child override parent.
func mergeConfigs(parent, child *Config) *Config {
	result := *parent

	// Feature toggles and dry-run always take the child value so a child can switch a feature off.
	result.Features = child.Features
	result.DryRun = child.DryRun || parent.DryRun

	if len(child.BotUsers) > 0 {
		result.BotUsers = child.BotUsers
	}

	if child.Triage.MaxNewLabels != 0 {
		result.Triage.MaxNewLabels = child.Triage.MaxNewLabels
	}
	if child.Triage.NeedsTriageLabel != "" {
		result.Triage.NeedsTriageLabel = child.Triage.NeedsTriageLabel
	}
	if child.Triage.AreaLabelPrefix != "" {
		result.Triage.AreaLabelPrefix = child.Triage.AreaLabelPrefix
	}
	if child.Triage.ExemptionLabels != nil {
		result.Triage.ExemptionLabels = child.Triage.ExemptionLabels
	}

	// Rules: child completely overrides if non-empty
	if len(child.Triage.Rules) > 0 {
		result.Triage.Rules = child.Triage.Rules
	}

	// Repositories: child completely overrides if non-empty
	if len(child.Repositories) > 0 {
		result.Repositories = child.Repositories
	}

	return &result
}

// ParseExtendsRef parses "org/repo@branch" into components.
func ParseExtendsRef(ref string) (org, repo, branch, path string, err error) {
	// Format: org/repo@branch or org/repo@branch:path
	parts := strings.SplitN(ref, "@", 2)
	if len(parts) != 2 {
		return "", "", "", "", fmt.Errorf("invalid extends reference: %s (expected org/repo@branch)", ref)
	}

	orgRepo := strings.SplitN(parts[0], "/", 2)
	if len(orgRepo) != 2 {
		return "", "", "", "", fmt.Errorf("invalid extends reference: %s (expected org/repo)", ref)
	}

	org = orgRepo[0]
	repo = orgRepo[1]

	branchPath := strings.SplitN(parts[1], ":", 2)
	branch = branchPath[0]
	if len(branchPath) == 2 {
		path = branchPath[1]
	} else {
		path = DefaultConfigPath
	}

	return org, repo, branch, path, nil
}
