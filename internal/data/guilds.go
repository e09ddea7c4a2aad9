package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RosterMember is one member entry of guilds.yaml.
type RosterMember struct {
	CharID int32  `yaml:"char_id"`
	Name   string `yaml:"name"`
	Rank   int16  `yaml:"rank"`
}

// RosterGuild is one guild entry of guilds.yaml.
type RosterGuild struct {
	ID       int32          `yaml:"id"`
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"` // ordinary, safe, war
	LeaderID int32          `yaml:"leader_id"`
	Members  []RosterMember `yaml:"members"`
}

// LoadGuildRoster loads guilds.yaml. Used when guilds are not stored in the database.
func LoadGuildRoster(path string) ([]RosterGuild, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read guild roster: %w", err)
	}
	var guilds []RosterGuild
	if err := yaml.Unmarshal(raw, &guilds); err != nil {
		return nil, fmt.Errorf("parse guild roster: %w", err)
	}
	seen := make(map[int32]bool, len(guilds))
	for _, g := range guilds {
		if g.ID <= 0 {
			return nil, fmt.Errorf("guild roster: guild %q has invalid id %d", g.Name, g.ID)
		}
		if seen[g.ID] {
			return nil, fmt.Errorf("guild roster: duplicate guild id %d", g.ID)
		}
		seen[g.ID] = true
	}
	return guilds, nil
}
