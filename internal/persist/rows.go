package persist

// ClaimRow is one row of guild_claims.
type ClaimRow struct {
	World   string `json:"world"`
	X       int32  `json:"x"`
	Z       int32  `json:"z"`
	GuildID int32  `json:"guild_id"`
}

// OutpostRow is one row of guild_outposts.
type OutpostRow struct {
	GuildID int32  `json:"guild_id"`
	World   string `json:"world"`
	X       int32  `json:"x"`
	Z       int32  `json:"z"`
}

// QuotaRow is one row of guild_outpost_quota.
type QuotaRow struct {
	GuildID   int32 `json:"guild_id"`
	Allowance int32 `json:"allowance"`
	Founded   int32 `json:"founded"`
}

// ClaimSnapshot is the full persisted claim state.
type ClaimSnapshot struct {
	Claims   []ClaimRow   `json:"claims"`
	Outposts []OutpostRow `json:"outposts"`
	Quotas   []QuotaRow   `json:"quotas"`
}
