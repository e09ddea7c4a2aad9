package handler

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/l1jgo/territory/internal/core/event"
	"github.com/l1jgo/territory/internal/system"
	"github.com/l1jgo/territory/internal/world"
	"go.uber.org/zap"
)

// HandleCommand processes a "." prefixed operator command and writes its
// output to out. Returns true if the text was a command (consumed).
func HandleCommand(out io.Writer, text string, deps *Deps) bool {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, ".") {
		return false
	}

	parts := strings.Fields(text[1:]) // strip leading "."
	if len(parts) == 0 {
		return true
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help":
		cmdHelp(out)
	case "claim":
		cmdClaim(out, args, deps)
	case "unclaim":
		cmdUnclaim(out, args, deps)
	case "bulkclaim":
		cmdBulkClaim(out, args, deps)
	case "bulkunclaim":
		cmdBulkUnclaim(out, args, deps)
	case "cleararea":
		cmdClearArea(out, args, deps)
	case "owner":
		cmdOwner(out, args, deps)
	case "analyze":
		cmdAnalyze(out, args, deps)
	case "whatif":
		cmdWhatIf(out, args, deps)
	case "map":
		cmdMap(out, args, deps)
	case "grant":
		cmdGrant(out, args, deps)
	case "quota":
		cmdQuota(out, args, deps)
	case "world":
		cmdWorld(out, args, deps)
	case "guilddelete":
		cmdGuildDelete(out, args, deps)
	case "save":
		cmdSave(out, deps)
	default:
		cmdMsg(out, "unknown command: ."+cmd+"  (try .help)")
	}

	return true
}

// ScanCommands forwards non-empty lines from r to lines until r is exhausted,
// then closes lines.
func ScanCommands(r io.Reader, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines <- line
		}
	}
}

// --- Helpers ---

func cmdMsg(out io.Writer, msg string) {
	fmt.Fprintln(out, msg)
}

func cmdMsgf(out io.Writer, format string, a ...any) {
	cmdMsg(out, fmt.Sprintf(format, a...))
}

func parseInt32s(args []string) ([]int32, error) {
	vals := make([]int32, len(args))
	for i, a := range args {
		v, err := strconv.ParseInt(a, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", a)
		}
		vals[i] = int32(v)
	}
	return vals, nil
}

// parseRect reads "<x1> <z1> <x2> <z2>".
func parseRect(args []string) (world.Rect, error) {
	if len(args) != 4 {
		return world.Rect{}, fmt.Errorf("need 4 coordinates")
	}
	v, err := parseInt32s(args)
	if err != nil {
		return world.Rect{}, err
	}
	return world.Rect{X1: v[0], Z1: v[1], X2: v[2], Z2: v[3]}, nil
}

func cmdTooLarge(out io.Writer, rect world.Rect, deps *Deps) {
	cmdMsgf(out, "area of %d cells exceeds max_bulk_area %d", rect.Area(), deps.Config.Claims.MaxBulkArea)
}

// --- Commands ---

func cmdHelp(out io.Writer) {
	cmdMsg(out, "=== territory commands ===")
	cmdMsg(out, ".claim <player> <world> <x> <z>  - claim a chunk as a player")
	cmdMsg(out, ".unclaim <player> <world> <x> <z>  - release a chunk as a player")
	cmdMsg(out, ".bulkclaim <guild> <world> <x1> <z1> <x2> <z2>  - claim a rectangle, no rules")
	cmdMsg(out, ".bulkunclaim <guild> <world> <x1> <z1> <x2> <z2>  - release a guild's chunks in a rectangle")
	cmdMsg(out, ".cleararea <world> <x1> <z1> <x2> <z2>  - release every chunk in a rectangle")
	cmdMsg(out, ".owner <world> <x> <z>  - show a chunk's owner")
	cmdMsg(out, ".analyze <guild> <world>  - list territory components")
	cmdMsg(out, ".whatif <guild> <world> <x> <z>  - components after removing a chunk")
	cmdMsg(out, ".map <guild> <world> <x> <z> [radius] [rx rz]  - occupancy map")
	cmdMsg(out, ".grant <guild> <n>  - raise outpost allowance")
	cmdMsg(out, ".quota <guild>  - show claims and outposts")
	cmdMsg(out, ".world [name] [on|off]  - list or toggle claim worlds")
	cmdMsg(out, ".guilddelete <guild>  - delete a guild and purge its territory")
	cmdMsg(out, ".save  - write claims now")
}

func cmdClaim(out io.Writer, args []string, deps *Deps) {
	if len(args) != 4 {
		cmdMsg(out, "usage: .claim <player> <world> <x> <z>")
		return
	}
	v, err := parseInt32s([]string{args[0], args[2], args[3]})
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	res := deps.Claims.Claim(v[0], args[1], v[1], v[2])
	cmdMsgf(out, "claim %s %d,%d: %s", args[1], v[1], v[2], res)
}

func cmdUnclaim(out io.Writer, args []string, deps *Deps) {
	if len(args) != 4 {
		cmdMsg(out, "usage: .unclaim <player> <world> <x> <z>")
		return
	}
	v, err := parseInt32s([]string{args[0], args[2], args[3]})
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	res := deps.Claims.Unclaim(v[0], args[1], v[1], v[2])
	cmdMsgf(out, "unclaim %s %d,%d: %s", args[1], v[1], v[2], res)
}

func cmdBulkClaim(out io.Writer, args []string, deps *Deps) {
	if len(args) != 6 {
		cmdMsg(out, "usage: .bulkclaim <guild> <world> <x1> <z1> <x2> <z2>")
		return
	}
	guild, err := parseInt32s(args[:1])
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	rect, err := parseRect(args[2:])
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	res := deps.Claims.BulkClaim(guild[0], args[1], rect)
	if res.TooLarge {
		cmdTooLarge(out, rect, deps)
		return
	}
	cmdMsgf(out, "bulk claim: total=%d claimed=%d skipped=%d", res.Total, res.Claimed, res.Skipped)
}

func cmdBulkUnclaim(out io.Writer, args []string, deps *Deps) {
	if len(args) != 6 {
		cmdMsg(out, "usage: .bulkunclaim <guild> <world> <x1> <z1> <x2> <z2>")
		return
	}
	guild, err := parseInt32s(args[:1])
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	rect, err := parseRect(args[2:])
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	res := deps.Claims.BulkUnclaim(guild[0], args[1], rect)
	if res.TooLarge {
		cmdTooLarge(out, rect, deps)
		return
	}
	cmdMsgf(out, "bulk unclaim: total=%d removed=%d", res.Total, res.Removed)
}

func cmdClearArea(out io.Writer, args []string, deps *Deps) {
	if len(args) != 5 {
		cmdMsg(out, "usage: .cleararea <world> <x1> <z1> <x2> <z2>")
		return
	}
	rect, err := parseRect(args[1:])
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	res := deps.Claims.BulkUnclaimArea(args[0], rect)
	if res.TooLarge {
		cmdTooLarge(out, rect, deps)
		return
	}
	cmdMsgf(out, "clear area: total=%d removed=%d", res.Total, res.Removed)
}

func cmdOwner(out io.Writer, args []string, deps *Deps) {
	if len(args) != 3 {
		cmdMsg(out, "usage: .owner <world> <x> <z>")
		return
	}
	v, err := parseInt32s(args[1:])
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	owner, ok := deps.Claims.OwnerOf(args[0], v[0], v[1])
	if !ok {
		cmdMsgf(out, "%s %d,%d is unclaimed", args[0], v[0], v[1])
		return
	}
	name := "?"
	if g := deps.World.Guilds.GetGuild(owner); g != nil {
		name = g.Name
	}
	cmdMsgf(out, "%s %d,%d is owned by guild %d (%s)", args[0], v[0], v[1], owner, name)
}

func cmdAnalyze(out io.Writer, args []string, deps *Deps) {
	if len(args) != 2 {
		cmdMsg(out, "usage: .analyze <guild> <world>")
		return
	}
	guild, err := parseInt32s(args[:1])
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	for _, line := range system.FormatReport(deps.Claims.Analyze(guild[0], args[1])) {
		cmdMsg(out, line)
	}
}

func cmdWhatIf(out io.Writer, args []string, deps *Deps) {
	if len(args) != 4 {
		cmdMsg(out, "usage: .whatif <guild> <world> <x> <z>")
		return
	}
	v, err := parseInt32s([]string{args[0], args[2], args[3]})
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	before := deps.Claims.Analyze(v[0], args[1])
	after := deps.Claims.AnalyzeAfterRemoval(v[0], args[1], v[1], v[2])
	for _, line := range system.FormatReport(after) {
		cmdMsg(out, line)
	}
	if after.Count() > before.Count() {
		cmdMsgf(out, "removal would split the territory (%d → %d components)", before.Count(), after.Count())
	}
}

func cmdMap(out io.Writer, args []string, deps *Deps) {
	if len(args) != 4 && len(args) != 5 && len(args) != 7 {
		cmdMsg(out, "usage: .map <guild> <world> <x> <z> [radius] [rx rz]")
		return
	}
	nums := append([]string{args[0]}, args[2:]...)
	v, err := parseInt32s(nums)
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	radius := 0
	if len(v) >= 4 {
		radius = int(v[3])
	}
	var removed *world.Cell
	if len(v) == 6 {
		removed = &world.Cell{World: args[1], X: v[4], Z: v[5]}
	}
	for _, row := range deps.Claims.RenderMap(v[0], args[1], v[1], v[2], radius, removed) {
		cmdMsg(out, row)
	}
}

func cmdGrant(out io.Writer, args []string, deps *Deps) {
	if len(args) != 2 {
		cmdMsg(out, "usage: .grant <guild> <n>")
		return
	}
	v, err := parseInt32s(args)
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	if v[1] <= 0 {
		cmdMsg(out, "grant amount must be positive")
		return
	}
	total := deps.Claims.GrantOutposts(v[0], int(v[1]))
	cmdMsgf(out, "guild %d outpost allowance is now %d", v[0], total)
}

func cmdQuota(out io.Writer, args []string, deps *Deps) {
	if len(args) != 1 {
		cmdMsg(out, "usage: .quota <guild>")
		return
	}
	v, err := parseInt32s(args)
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	founded, allowance := deps.Claims.OutpostQuota(v[0])
	cmdMsgf(out, "guild %d: %d/%d claims, %d/%d outposts",
		v[0], deps.Claims.ClaimCount(v[0]), deps.Config.Claims.MaxClaimsPerGuild, founded, allowance)
}

func cmdWorld(out io.Writer, args []string, deps *Deps) {
	switch len(args) {
	case 0:
		for _, name := range deps.Worlds.Names() {
			state := "off"
			if deps.Worlds.IsEnabled(name) {
				state = "on"
			}
			cmdMsgf(out, "%s: %s", name, state)
		}
	case 1:
		state := "off"
		if deps.Worlds.IsEnabled(args[0]) {
			state = "on"
		}
		cmdMsgf(out, "%s: %s", args[0], state)
	case 2:
		switch strings.ToLower(args[1]) {
		case "on":
			deps.Worlds.SetEnabled(args[0], true)
		case "off":
			deps.Worlds.SetEnabled(args[0], false)
		default:
			cmdMsg(out, "usage: .world <name> on|off")
			return
		}
		deps.Log.Info("world claims toggled", zap.String("world", args[0]), zap.String("state", args[1]))
		cmdMsgf(out, "%s: %s", args[0], strings.ToLower(args[1]))
	default:
		cmdMsg(out, "usage: .world [name] [on|off]")
	}
}

func cmdGuildDelete(out io.Writer, args []string, deps *Deps) {
	if len(args) != 1 {
		cmdMsg(out, "usage: .guilddelete <guild>")
		return
	}
	v, err := parseInt32s(args)
	if err != nil {
		cmdMsg(out, err.Error())
		return
	}
	guildID := v[0]
	if deps.GuildRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := deps.GuildRepo.DissolveGuild(ctx, guildID); err != nil {
			deps.Log.Error("dissolve guild failed", zap.Int32("guild", guildID), zap.Error(err))
			cmdMsgf(out, "guild %d could not be deleted: %v", guildID, err)
			return
		}
	}
	known := deps.World.Guilds.RemoveGuild(guildID)
	event.Emit(deps.Bus, event.GuildDeleted{GuildID: guildID})
	if !known {
		cmdMsgf(out, "guild %d not in roster; purging territory anyway", guildID)
		return
	}
	cmdMsgf(out, "guild %d deleted; territory purge queued", guildID)
}

func cmdSave(out io.Writer, deps *Deps) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := deps.Persist.Flush(ctx); err != nil {
		deps.Log.Error("manual save failed", zap.Error(err))
		cmdMsgf(out, "save failed: %v", err)
		return
	}
	cmdMsg(out, "claims saved")
}
