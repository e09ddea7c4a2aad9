package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ClaimRepo stores the claim grid and outpost registry in PostgreSQL.
type ClaimRepo struct {
	db *DB
}

func NewClaimRepo(db *DB) *ClaimRepo {
	return &ClaimRepo{db: db}
}

// LoadAll loads every claim, outpost center, and quota. Called at startup.
func (r *ClaimRepo) LoadAll(ctx context.Context) (*ClaimSnapshot, error) {
	snap := &ClaimSnapshot{}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT world, x, z, guild_id FROM guild_claims ORDER BY world, x, z`)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	snap.Claims, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (ClaimRow, error) {
		var c ClaimRow
		err := row.Scan(&c.World, &c.X, &c.Z, &c.GuildID)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan claims: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx,
		`SELECT guild_id, world, x, z FROM guild_outposts ORDER BY guild_id, world, x, z`)
	if err != nil {
		return nil, fmt.Errorf("query outposts: %w", err)
	}
	snap.Outposts, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (OutpostRow, error) {
		var o OutpostRow
		err := row.Scan(&o.GuildID, &o.World, &o.X, &o.Z)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan outposts: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx,
		`SELECT guild_id, allowance, founded FROM guild_outpost_quota ORDER BY guild_id`)
	if err != nil {
		return nil, fmt.Errorf("query quotas: %w", err)
	}
	snap.Quotas, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (QuotaRow, error) {
		var q QuotaRow
		err := row.Scan(&q.GuildID, &q.Allowance, &q.Founded)
		return q, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan quotas: %w", err)
	}

	return snap, nil
}

// SaveAll replaces the stored state with snap in a single transaction.
func (r *ClaimRepo) SaveAll(ctx context.Context, snap *ClaimSnapshot) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("claims begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"guild_claims", "guild_outposts", "guild_outpost_quota"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"guild_claims"},
		[]string{"world", "x", "z", "guild_id"},
		pgx.CopyFromSlice(len(snap.Claims), func(i int) ([]any, error) {
			c := snap.Claims[i]
			return []any{c.World, c.X, c.Z, c.GuildID}, nil
		}),
	); err != nil {
		return fmt.Errorf("copy claims: %w", err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"guild_outposts"},
		[]string{"guild_id", "world", "x", "z"},
		pgx.CopyFromSlice(len(snap.Outposts), func(i int) ([]any, error) {
			o := snap.Outposts[i]
			return []any{o.GuildID, o.World, o.X, o.Z}, nil
		}),
	); err != nil {
		return fmt.Errorf("copy outposts: %w", err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"guild_outpost_quota"},
		[]string{"guild_id", "allowance", "founded"},
		pgx.CopyFromSlice(len(snap.Quotas), func(i int) ([]any, error) {
			q := snap.Quotas[i]
			return []any{q.GuildID, q.Allowance, q.Founded}, nil
		}),
	); err != nil {
		return fmt.Errorf("copy quotas: %w", err)
	}

	return tx.Commit(ctx)
}
