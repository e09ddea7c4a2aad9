package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWorldTable(t *testing.T) {
	path := writeFile(t, "worlds.yaml", `
- name: overworld
  enabled: true
- name: nether
  enabled: false
  note: closed
- name: ""
  enabled: true
`)
	tbl, err := LoadWorldTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Count())
	assert.True(t, tbl.IsEnabled("overworld"))
	assert.False(t, tbl.IsEnabled("nether"))
	assert.False(t, tbl.IsEnabled("unknown"))

	tbl.SetEnabled("nether", true)
	tbl.SetEnabled("arena", false)
	assert.True(t, tbl.IsEnabled("nether"))
	assert.Equal(t, []string{"arena", "nether", "overworld"}, tbl.Names())
}

func TestLoadWorldTableErrors(t *testing.T) {
	_, err := LoadWorldTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadWorldTable(writeFile(t, "bad.yaml", "name: [unclosed"))
	assert.Error(t, err)
}

func TestLoadGuildRoster(t *testing.T) {
	path := writeFile(t, "guilds.yaml", `
- id: 1
  name: Ironhold
  type: ordinary
  leader_id: 100
  members:
    - { char_id: 100, name: Brannoc, rank: 10 }
    - { char_id: 101, name: Seli, rank: 9 }
- id: 90
  name: Spawn Keepers
  type: safe
`)
	guilds, err := LoadGuildRoster(path)
	require.NoError(t, err)
	require.Len(t, guilds, 2)
	assert.Equal(t, "Ironhold", guilds[0].Name)
	assert.Equal(t, RosterMember{CharID: 101, Name: "Seli", Rank: 9}, guilds[0].Members[1])
	assert.Equal(t, "safe", guilds[1].Type)
	assert.Empty(t, guilds[1].Members)
}

func TestLoadGuildRosterRejectsBadIDs(t *testing.T) {
	_, err := LoadGuildRoster(writeFile(t, "zero.yaml", "- id: 0\n  name: nobody\n"))
	assert.ErrorContains(t, err, "invalid id")

	_, err = LoadGuildRoster(writeFile(t, "dup.yaml", "- id: 3\n  name: a\n- id: 3\n  name: b\n"))
	assert.ErrorContains(t, err, "duplicate guild id 3")
}
