package system

// ClaimResult is the outcome of a single-cell claim attempt.
type ClaimResult uint8

const (
	ClaimSuccess ClaimResult = iota
	ClaimNotInGuild
	ClaimNotAdmin
	ClaimWorldDisabled
	ClaimAlreadyClaimedByOther
	ClaimTooCloseToOthers
	ClaimMaxLimitReached
	ClaimNotConnected
	ClaimOutpostsLimitReached
	ClaimOutpostRangeExceeded
)

var claimResultNames = [...]string{
	ClaimSuccess:               "SUCCESS",
	ClaimNotInGuild:            "NOT_IN_GUILD",
	ClaimNotAdmin:              "NOT_ADMIN",
	ClaimWorldDisabled:         "WORLD_DISABLED",
	ClaimAlreadyClaimedByOther: "ALREADY_CLAIMED_BY_OTHER",
	ClaimTooCloseToOthers:      "TOO_CLOSE_TO_OTHERS",
	ClaimMaxLimitReached:       "MAX_LIMIT_REACHED",
	ClaimNotConnected:          "NOT_CONNECTED",
	ClaimOutpostsLimitReached:  "OUTPOSTS_LIMIT_REACHED",
	ClaimOutpostRangeExceeded:  "OUTPOST_RANGE_EXCEEDED",
}

func (r ClaimResult) String() string {
	if int(r) < len(claimResultNames) {
		return claimResultNames[r]
	}
	return "UNKNOWN"
}

// UnclaimResult is the outcome of a single-cell unclaim attempt.
type UnclaimResult uint8

const (
	UnclaimSuccess UnclaimResult = iota
	UnclaimNotPlayerInGuild
	UnclaimNotAdmin
	UnclaimWorldDisabled
	UnclaimNotClaimed
	UnclaimNotOwned
	UnclaimDisconnectsTerritory
)

var unclaimResultNames = [...]string{
	UnclaimSuccess:              "SUCCESS",
	UnclaimNotPlayerInGuild:     "NOT_PLAYER_IN_GUILD",
	UnclaimNotAdmin:             "NOT_ADMIN",
	UnclaimWorldDisabled:        "WORLD_DISABLED",
	UnclaimNotClaimed:           "NOT_CLAIMED",
	UnclaimNotOwned:             "NOT_OWNED",
	UnclaimDisconnectsTerritory: "DISCONNECTS_TERRITORY",
}

func (r UnclaimResult) String() string {
	if int(r) < len(unclaimResultNames) {
		return unclaimResultNames[r]
	}
	return "UNKNOWN"
}

// BulkClaimResult counts the cells visited by a bulk claim.
type BulkClaimResult struct {
	Total    int
	Claimed  int
	Skipped  int  // owned by another guild
	TooLarge bool // rejected before any cell was visited
}

// BulkUnclaimResult counts the cells visited by a bulk unclaim.
type BulkUnclaimResult struct {
	Total    int
	Removed  int
	TooLarge bool
}
