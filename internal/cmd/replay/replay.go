// Package replay wires the replay command: it rebuilds a stored battle from
// its journal and prints a localized summary.
package replay

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	entrypoint "github.com/louisbranch/warlord/internal/platform/cmd"
	apperrors "github.com/louisbranch/warlord/internal/platform/errors"
	"github.com/louisbranch/warlord/internal/platform/i18n/catalog"
	"github.com/louisbranch/warlord/internal/services/battle/domain/battle"
	"github.com/louisbranch/warlord/internal/services/battle/journal"
	"github.com/louisbranch/warlord/internal/services/battle/storage"
	"github.com/louisbranch/warlord/internal/services/battle/storage/sqlite"
	"golang.org/x/text/message"
)

// Config holds replay command configuration.
type Config struct {
	DBPath   string `env:"BATTLE_DB_PATH"   envDefault:"warlord.db"`
	BattleID string `env:"REPLAY_BATTLE_ID"`
	Locale   string `env:"LOCALE"           envDefault:"en-US"`
	// UntilSeq stops the replay after an event; zero replays everything.
	UntilSeq uint64 `env:"REPLAY_UNTIL_SEQ"`
	// Limit caps how many battles are listed when no battle id is given.
	Limit int `env:"REPLAY_LIST_LIMIT" envDefault:"20"`
}

// ParseConfig parses environment defaults and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args, bindFlags); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "sqlite journal path")
	fs.StringVar(&cfg.BattleID, "battle", cfg.BattleID, "battle to replay (empty lists recent battles)")
	fs.StringVar(&cfg.Locale, "locale", cfg.Locale, "locale for the summary")
	fs.Uint64Var(&cfg.UntilSeq, "until", cfg.UntilSeq, "stop after this event sequence (0 = all)")
	fs.IntVar(&cfg.Limit, "limit", cfg.Limit, "battles to list")
}

// Run executes the replay command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return errors.New("battle db path is required")
	}
	store, err := sqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open battle store: %w", err)
	}
	defer store.Close()

	if strings.TrimSpace(cfg.BattleID) == "" {
		return listBattles(ctx, store, cfg.Limit, out)
	}
	return summarize(ctx, store, cfg, out)
}

func listBattles(ctx context.Context, store storage.BattleStore, limit int, out io.Writer) error {
	records, err := store.ListBattles(ctx, limit)
	if err != nil {
		return fmt.Errorf("list battles: %w", err)
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, record := range records {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", record.BattleID, record.Location, record.EntryEdge, record.CreatedAt.UTC().Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func summarize(ctx context.Context, store storage.Store, cfg Config, out io.Writer) error {
	record, err := store.GetBattle(ctx, cfg.BattleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound := apperrors.WithMetadata(apperrors.CodeBattleNotFound, err.Error(), map[string]string{"BattleID": cfg.BattleID})
			return errors.New(apperrors.UserMessage(notFound, cfg.Locale))
		}
		return fmt.Errorf("get battle: %w", err)
	}
	result, err := journal.Replay(ctx, store, record.BattleID, journal.Options{UntilSeq: cfg.UntilSeq})
	if err != nil {
		return fmt.Errorf("replay battle %s: %w", record.BattleID, err)
	}
	return writeSummary(out, catalog.Default().Printer(cfg.Locale), record.BattleID, result)
}

// writeSummary prints the battle header followed by one row per creature.
func writeSummary(out io.Writer, p *message.Printer, battleID string, result journal.Result) error {
	b := result.Battle
	p.Fprintf(out, "battle.summary.header", battleID, b.Terrain().String(), b.Location())
	fmt.Fprintln(out)
	p.Fprintf(out, "battle.summary.round", b.Round(), battle.MaxRounds, p.Sprintf("battle.phase."+b.Phase().String()))
	fmt.Fprintln(out)
	fmt.Fprintln(out, p.Sprintf("battle.outcome."+b.Outcome().String()))
	p.Fprintf(out, "battle.summary.events", result.Applied)
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, c := range b.Creatures() {
		p.Fprintf(w, "battle.summary.creature",
			p.Sprintf("battle.side."+c.Side.String()),
			c.Kind.String(),
			hexLabel(p, c),
			c.Wounds,
			c.Strength(),
		)
		fmt.Fprintln(w)
	}
	return w.Flush()
}

func hexLabel(p *message.Printer, c battle.Creature) string {
	switch {
	case c.Removed():
		return p.Sprintf("battle.summary.removed")
	case !c.OnBoard():
		return p.Sprintf("battle.summary.entry")
	default:
		return strconv.Itoa(c.Hex)
	}
}
