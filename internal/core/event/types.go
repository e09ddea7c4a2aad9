package event

// GuildDeleted is emitted when a guild is removed from the roster.
// Every claim, outpost center, and quota of the guild is purged.
type GuildDeleted struct {
	GuildID int32
}

