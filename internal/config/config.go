package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"github.com/derekprior/turnier/internal/topology"
	"github.com/derekprior/turnier/internal/tournament"
)

// Defaults applied when the schedule section leaves a value out.
const (
	DefaultMatchMinutes = 8
	DefaultBreakMinutes = 4
	DefaultStart        = "14:00"
	maxMinutes          = 60
)

// Date is a wrapper around time.Time for YAML date parsing. Any common
// date notation is accepted and read as UTC.
type Date struct {
	Time time.Time
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if strings.TrimSpace(value.Value) == "" {
		return nil
	}
	t, err := dateparse.ParseIn(value.Value, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", value.Value, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	if d.Time.IsZero() {
		return "", nil
	}
	return d.Time.Format("2006-01-02"), nil
}

// Event describes the tournament day itself.
type Event struct {
	Name string `yaml:"name"`
	Date Date   `yaml:"date"`
}

type Config struct {
	Event    Event                     `yaml:"tournament"`
	Teams    []string                  `yaml:"teams"`
	Schedule tournament.ScheduleConfig `yaml:"schedule"`
}

// LoadFromBytes parses YAML bytes into a Config and validates it.
func LoadFromBytes(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromFile reads and parses a YAML config file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromBytes(data)
}

// RenameTeam replaces oldName in the teams list of the config file at path.
// The rest of the document, comments included, is written back as parsed.
func RenameTeam(path, oldName, newName string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	teams := teamsNode(&doc)
	if teams == nil {
		return fmt.Errorf("%s has no teams list", path)
	}
	found := false
	for _, n := range teams.Content {
		if strings.TrimSpace(n.Value) == oldName {
			n.Value = newName
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%s has no team %q", path, oldName)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if _, err := LoadFromBytes(buf.Bytes()); err != nil {
		return fmt.Errorf("renamed config is invalid: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func teamsNode(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "teams" && root.Content[i+1].Kind == yaml.SequenceNode {
			return root.Content[i+1]
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Schedule.MatchMinutes == 0 {
		c.Schedule.MatchMinutes = DefaultMatchMinutes
	}
	if c.Schedule.BreakMinutes == 0 {
		c.Schedule.BreakMinutes = DefaultBreakMinutes
	}
	if c.Schedule.Start == "" {
		c.Schedule.Start = DefaultStart
	}
	for i, team := range c.Teams {
		c.Teams[i] = strings.TrimSpace(team)
	}
}

func (c *Config) validate() error {
	if len(c.Teams) == 0 {
		return fmt.Errorf("at least one team is required")
	}

	seen := make(map[string]bool)
	for i, team := range c.Teams {
		if team == "" {
			return fmt.Errorf("team %d has no name", i+1)
		}
		if seen[team] {
			return fmt.Errorf("team %q appears more than once", team)
		}
		seen[team] = true
	}

	if !topology.Supported(len(c.Teams)) {
		return fmt.Errorf("%d teams configured; only 8, 9 or 10 teams are supported: %w",
			len(c.Teams), tournament.ErrUnsupportedParticipantCount)
	}

	s := c.Schedule
	if s.MatchMinutes < 1 || s.MatchMinutes > maxMinutes {
		return fmt.Errorf("match duration must be between 1 and %d minutes, got %d", maxMinutes, s.MatchMinutes)
	}
	if s.BreakMinutes < 1 || s.BreakMinutes > maxMinutes {
		return fmt.Errorf("break duration must be between 1 and %d minutes, got %d", maxMinutes, s.BreakMinutes)
	}
	if _, err := time.Parse("15:04", s.Start); err != nil {
		return fmt.Errorf("start time %q must use 24-hour HH:MM format", s.Start)
	}

	switch s.KOMode {
	case "", tournament.ModeQuarterfinal, tournament.ModeSemifinal:
	default:
		return fmt.Errorf("unknown ko_mode %q (want %q or %q)", s.KOMode, tournament.ModeQuarterfinal, tournament.ModeSemifinal)
	}
	if s.KOMode != "" && len(c.Teams) != 8 {
		return fmt.Errorf("ko_mode only applies to 8 teams, got %d", len(c.Teams))
	}

	return nil
}
