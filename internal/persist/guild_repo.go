package persist

import (
	"context"
)

// GuildRow represents a row from the guilds table.
type GuildRow struct {
	GuildID   int32
	GuildName string
	GuildType string
	LeaderID  int32
}

// GuildMemberRow represents a row from the guild_members table.
type GuildMemberRow struct {
	GuildID  int32
	CharID   int32
	CharName string
	Rank     int16
}

// GuildRepo reads the guild roster. Guild creation lives elsewhere.
type GuildRepo struct {
	db *DB
}

func NewGuildRepo(db *DB) *GuildRepo {
	return &GuildRepo{db: db}
}

// LoadAll loads all guilds and their members. Called at startup.
func (r *GuildRepo) LoadAll(ctx context.Context) ([]GuildRow, []GuildMemberRow, error) {
	guildRows, err := r.db.Pool.Query(ctx,
		`SELECT guild_id, guild_name, guild_type, leader_id FROM guilds ORDER BY guild_id`)
	if err != nil {
		return nil, nil, err
	}
	defer guildRows.Close()

	var guilds []GuildRow
	for guildRows.Next() {
		var g GuildRow
		if err := guildRows.Scan(&g.GuildID, &g.GuildName, &g.GuildType, &g.LeaderID); err != nil {
			return nil, nil, err
		}
		guilds = append(guilds, g)
	}
	if err := guildRows.Err(); err != nil {
		return nil, nil, err
	}

	memberRows, err := r.db.Pool.Query(ctx,
		`SELECT guild_id, char_id, char_name, rank FROM guild_members ORDER BY guild_id, char_id`)
	if err != nil {
		return nil, nil, err
	}
	defer memberRows.Close()

	var members []GuildMemberRow
	for memberRows.Next() {
		var m GuildMemberRow
		if err := memberRows.Scan(&m.GuildID, &m.CharID, &m.CharName, &m.Rank); err != nil {
			return nil, nil, err
		}
		members = append(members, m)
	}
	if err := memberRows.Err(); err != nil {
		return nil, nil, err
	}

	return guilds, members, nil
}

// dissolveStatements run in order inside one transaction. Territory rows go
// first so a crash between the roster and claim saves cannot leave claims
// owned by a guild that no longer exists.
var dissolveStatements = []string{
	`DELETE FROM guild_claims WHERE guild_id = $1`,
	`DELETE FROM guild_outposts WHERE guild_id = $1`,
	`DELETE FROM guild_outpost_quota WHERE guild_id = $1`,
	`DELETE FROM guild_members WHERE guild_id = $1`,
	`DELETE FROM guilds WHERE guild_id = $1`,
}

// DissolveGuild removes a guild together with its members and territory in a
// single transaction. The in-memory purge still runs on the next tick.
func (r *GuildRepo) DissolveGuild(ctx context.Context, guildID int32) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, stmt := range dissolveStatements {
		if _, err := tx.Exec(ctx, stmt, guildID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
