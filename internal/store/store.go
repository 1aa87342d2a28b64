// Package store persists a running tournament as a single YAML state file.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/derekprior/turnier/internal/config"
	"github.com/derekprior/turnier/internal/tournament"
)

// State is everything needed to resume a tournament: the roster, the
// schedule settings and the match list with its results.
type State struct {
	Name    string                    `yaml:"name"`
	Date    config.Date               `yaml:"date"`
	Teams   []string                  `yaml:"teams"`
	Config  tournament.ScheduleConfig `yaml:"config"`
	Matches tournament.List           `yaml:"matches"`
}

// New starts a state from a loaded config and a generated match list.
func New(cfg *config.Config, matches tournament.List) *State {
	return &State{
		Name:    cfg.Event.Name,
		Date:    cfg.Event.Date,
		Teams:   append([]string(nil), cfg.Teams...),
		Config:  cfg.Schedule,
		Matches: matches,
	}
}

// Load reads a state file.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}
	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", path, err)
	}
	if len(s.Teams) == 0 {
		return nil, fmt.Errorf("state file %s has no teams", path)
	}
	return &s, nil
}

// Save writes the state next to path and renames it into place, so a
// crash never leaves a truncated file behind.
func Save(path string, s *State) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
