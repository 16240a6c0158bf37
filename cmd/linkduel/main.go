// Command linkduel is the reference client for the link-replication
// protocol. It plays the role the browser shell plays in production:
// it holds this player's current link in a local file, applies local
// actions to the game state, and prints the share link to paste to the
// opponent. There is no server anywhere; the link is the game.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"linkduel/internal/app"
	"linkduel/internal/bot"
	"linkduel/internal/codec"
	"linkduel/internal/config"
	"linkduel/internal/domain"
	"linkduel/internal/notify"
	"linkduel/internal/storage"
	urlsync "linkduel/internal/sync"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: linkduel [-config path] [-v] <command> [args]

commands:
  new       start a game        -name, -opponent, -mode (round-by-round|deck)
  apply     adopt a pasted link or token
  select    choose your board   -board, -size
  practice  let the built-in bot answer and resolve the current round
  complete  record a resolved round  -round, -winner, -pp, -op
  status    show phase, round, and scores
  share     print the share link; -notify posts it to Discord
  reset     start over, keeping your profile
`)
}

func run(args []string) error {
	global := flag.NewFlagSet("linkduel", flag.ContinueOnError)
	configPath := global.String("config", "", "path to config file")
	verbose := global.Bool("v", false, "verbose logging")
	global.Usage = usage
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		usage()
		return errors.New("missing command")
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if !*verbose {
		log = log.Level(zerolog.WarnLevel)
	}

	path := *configPath
	if path == "" {
		path = filepath.Join(defaultDataDir(), "config.json")
	}
	if err := config.LoadGameConfig(path); err != nil {
		return err
	}
	cfg := config.GetGameConfig()

	cli := &client{
		cfg:      cfg,
		log:      log,
		fragment: storage.NewFileFragment(filepath.Join(cfg.DataDir, "current_link")),
		backups:  storage.NewFS(cfg.DataDir),
	}
	return cli.dispatch(global.Arg(0), global.Args()[1:])
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".linkduel"
	}
	return filepath.Join(home, ".linkduel")
}

type client struct {
	cfg      *config.GameConfig
	log      zerolog.Logger
	fragment *storage.FileFragment
	backups  *storage.FS
}

func (c *client) dispatch(command string, args []string) error {
	switch command {
	case "new":
		return c.cmdNew(args)
	case "apply":
		return c.cmdApply(args)
	case "select":
		return c.cmdSelect(args)
	case "practice":
		return c.cmdPractice(args)
	case "complete":
		return c.cmdComplete(args)
	case "status":
		return c.cmdStatus()
	case "share":
		return c.cmdShare(args)
	case "reset":
		return c.cmdReset()
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// controller builds the sync controller over the link file.
func (c *client) controller() *urlsync.Controller {
	return urlsync.NewController(c.fragment, urlsync.Options{
		Debounce:     c.cfg.Debounce(),
		ShareBaseURL: c.cfg.ShareBaseURL,
		Logger:       c.log,
	})
}

// load mounts the controller and wraps whatever it adopted in a
// container. A missing or empty link yields a fresh container.
func (c *client) load() (*app.Container, *urlsync.Controller, error) {
	ctl := c.controller()
	ctl.Mount()
	if err := ctl.Err(); err != nil {
		return nil, nil, err
	}
	return app.NewContainer(ctl.GameState(), c.cfg.TotalRounds), ctl, nil
}

func (c *client) cmdNew(args []string) error {
	fs := flag.NewFlagSet("new", flag.ContinueOnError)
	name := fs.String("name", "player", "your display name")
	oppName := fs.String("opponent", "", "opponent display name")
	mode := fs.String("mode", string(domain.ModeRoundByRound), "game mode")
	if err := fs.Parse(args); err != nil {
		return err
	}

	gameMode := domain.GameMode(*mode)
	if gameMode != domain.ModeRoundByRound && gameMode != domain.ModeDeck {
		return fmt.Errorf("unknown mode %q", *mode)
	}

	var opponent *domain.Opponent
	if *oppName != "" {
		opponent = &domain.Opponent{ID: uuid.NewString(), Name: *oppName}
	}

	profile := domain.UserProfile{ID: uuid.NewString(), Name: *name}
	state := app.NewGameState(profile, opponent, gameMode)

	ctl := c.controller()
	defer ctl.Close()
	if err := ctl.UpdateURLImmediate(state); err != nil {
		return err
	}

	url, err := ctl.ShareURL(state)
	if err != nil {
		return err
	}
	fmt.Println("game created:", state.GameID)
	fmt.Println("share link:", url)
	return nil
}

func (c *client) cmdApply(args []string) error {
	if len(args) != 1 {
		return errors.New("apply needs exactly one link or token")
	}
	token := args[0]
	if i := strings.LastIndexByte(token, '#'); i >= 0 {
		token = token[i+1:]
	}

	incoming, err := codec.Decode(token)
	if err != nil {
		return fmt.Errorf("could not read game link: %w", err)
	}

	container, ctl, err := c.load()
	if err != nil {
		return err
	}
	defer ctl.Close()

	// Staleness guard: a link targeting a round the local log already
	// resolved is a replay. It is refused outright; the local log never
	// loses a completed round to a partial one.
	local := container.State()
	if local != nil && local.GameID == incoming.GameID {
		incomingRound := domain.CurrentRound(incoming)
		if replay, ok := domain.DetectReplay(local, incomingRound); ok {
			name := replay.OpponentName
			if name == "" {
				name = "your opponent"
			}
			fmt.Printf("round %d with %s is already completed — this link has already been played.\n", replay.Round, name)
			fmt.Println("run 'linkduel status' to get back to your current game.")
			return nil
		}
	}

	state, _ := container.LoadState(incoming)
	if err := ctl.UpdateURLImmediate(state); err != nil {
		return err
	}

	v := container.View()
	fmt.Printf("link applied: game %s, round %d, phase %s\n", state.GameID, v.CurrentRound, v.Phase.Kind)
	return nil
}

func (c *client) cmdSelect(args []string) error {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	boardID := fs.String("board", "", "board id to play")
	size := fs.Int("size", 4, "board size")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *boardID == "" {
		return errors.New("select needs -board")
	}
	if *size < domain.MinBoardSize {
		return fmt.Errorf("board size %d below minimum %d", *size, domain.MinBoardSize)
	}

	container, ctl, err := c.load()
	if err != nil {
		return err
	}
	defer ctl.Close()
	if ctl.GameState() == nil {
		return errors.New("no game in progress: run 'linkduel new' first")
	}

	state, _ := container.SelectBoard(domain.SidePlayer, domain.Board{ID: *boardID, Size: *size})
	if err := ctl.UpdateURLImmediate(state); err != nil {
		return err
	}

	return c.printShare(ctl, container)
}

func (c *client) cmdPractice(args []string) error {
	fs := flag.NewFlagSet("practice", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	container, ctl, err := c.load()
	if err != nil {
		return err
	}
	defer ctl.Close()

	if ctl.GameState() == nil {
		return errors.New("no game in progress: run 'linkduel new' first")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	agent := bot.NewAgent(nil)
	state := container.State()

	player := domain.PlayerSelectedBoard(state)
	if player == nil {
		return errors.New("select your board first")
	}

	opponent, err := agent.ChooseBoard(ctx, state)
	if err != nil {
		return err
	}

	round := domain.CurrentRound(state)
	entry, err := agent.ResolveRound(ctx, round, *player, opponent)
	if err != nil {
		return err
	}

	state, events := container.CompleteRound(entry)
	if err := ctl.UpdateURLImmediate(state); err != nil {
		return err
	}
	c.backupIfOver(state, events)

	fmt.Printf("round %d resolved: %s (%d-%d)\n", round, entry.Winner, entry.PlayerPoints, entry.OpponentPoints)
	return c.cmdStatus()
}

func (c *client) cmdComplete(args []string) error {
	fs := flag.NewFlagSet("complete", flag.ContinueOnError)
	round := fs.Int("round", 0, "round number")
	winner := fs.String("winner", "", "round winner: player|opponent|tie")
	pp := fs.Int("pp", 0, "player points")
	op := fs.Int("op", 0, "opponent points")
	if err := fs.Parse(args); err != nil {
		return err
	}

	w := domain.Winner(*winner)
	if w != domain.WinnerPlayer && w != domain.WinnerOpponent && w != domain.WinnerTie {
		return fmt.Errorf("unknown winner %q", *winner)
	}
	if *pp < 0 || *op < 0 {
		return errors.New("points must be non-negative")
	}

	container, ctl, err := c.load()
	if err != nil {
		return err
	}
	defer ctl.Close()
	if ctl.GameState() == nil {
		return errors.New("no game in progress: run 'linkduel new' first")
	}

	state := container.State()
	r := *round
	if r == 0 {
		r = domain.CurrentRound(state)
	}

	entry := domain.RoundEntry{
		Round:          r,
		Winner:         w,
		PlayerPoints:   *pp,
		OpponentPoints: *op,
	}
	if b := domain.PlayerSelectedBoard(state); b != nil {
		entry.PlayerBoard = b.Clone()
	}
	if b := domain.OpponentSelectedBoard(state); b != nil {
		entry.OpponentBoard = b.Clone()
	}
	if entry.PlayerBoard == nil || entry.OpponentBoard == nil {
		return fmt.Errorf("round %d does not have both boards yet", r)
	}

	state, events := container.CompleteRound(entry)
	if err := ctl.UpdateURLImmediate(state); err != nil {
		return err
	}
	c.backupIfOver(state, events)

	return c.printShare(ctl, container)
}

func (c *client) cmdStatus() error {
	container, ctl, err := c.load()
	if err != nil {
		return err
	}
	defer ctl.Close()

	if ctl.GameState() == nil {
		fmt.Println("no game in progress: run 'linkduel new' or paste a link with 'linkduel apply'")
		return nil
	}
	v := container.View()

	fmt.Printf("game:   %s (%s)\n", v.State.GameID, v.State.Mode)
	fmt.Printf("phase:  %s", v.Phase.Kind)
	if v.Phase.Round > 0 {
		fmt.Printf(" (round %d)", v.Phase.Round)
	}
	if v.Phase.Winner != "" {
		fmt.Printf(" winner: %s", v.Phase.Winner)
	}
	fmt.Println()
	fmt.Printf("round:  %d of %d\n", v.CurrentRound, container.TotalRounds())
	fmt.Printf("score:  you %d — opponent %d\n", v.PlayerScore, v.OpponentScore)
	if v.PlayerSelectedBoard != nil {
		fmt.Printf("your board in: %s\n", v.PlayerSelectedBoard.ID)
	}
	if v.OpponentSelectedBoard != nil {
		fmt.Printf("opponent board in: %s\n", v.OpponentSelectedBoard.ID)
	}
	return nil
}

func (c *client) cmdShare(args []string) error {
	fs := flag.NewFlagSet("share", flag.ContinueOnError)
	toDiscord := fs.Bool("notify", false, "post the link to the configured Discord webhook")
	if err := fs.Parse(args); err != nil {
		return err
	}

	container, ctl, err := c.load()
	if err != nil {
		return err
	}
	defer ctl.Close()

	if ctl.GameState() == nil {
		return errors.New("no game to share")
	}
	state := container.State()

	url, err := ctl.ShareURL(state)
	if err != nil {
		return err
	}
	fmt.Println(url)

	if *toDiscord {
		opponentName := ""
		if state.Opponent != nil {
			opponentName = state.Opponent.Name
		}
		d := notify.NewDiscord(c.cfg.DiscordWebhookURL, nil, c.log)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		msg := notify.TurnMessage(opponentName, domain.CurrentRound(state), url)
		if err := d.Send(ctx, msg); err != nil {
			return fmt.Errorf("share link printed, but notification failed: %w", err)
		}
		fmt.Println("notified Discord")
	}
	return nil
}

func (c *client) cmdReset() error {
	container, ctl, err := c.load()
	if err != nil {
		return err
	}
	defer ctl.Close()

	state, _ := container.ResetGame()
	if err := ctl.UpdateURLImmediate(state); err != nil {
		return err
	}
	fmt.Println("game reset; new game id:", state.GameID)
	return nil
}

// printShare shows the new phase and the link to send onward.
func (c *client) printShare(ctl *urlsync.Controller, container *app.Container) error {
	v := container.View()
	url, err := ctl.ShareURL(v.State)
	if err != nil {
		return err
	}
	fmt.Printf("phase: %s", v.Phase.Kind)
	if v.Phase.Round > 0 {
		fmt.Printf(" (round %d)", v.Phase.Round)
	}
	fmt.Println()
	fmt.Println("send this to your opponent:", url)
	return nil
}

// backupIfOver snapshots the finished game to disk.
func (c *client) backupIfOver(state *domain.GameState, events []app.Event) {
	for _, e := range events {
		if e.Kind == app.EventGameOver {
			if err := c.backups.Save(state); err != nil {
				c.log.Warn().Err(err).Msg("game backup failed")
			}
			return
		}
	}
}
