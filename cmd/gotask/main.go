package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ldi/gotask/internal/auth"
	"github.com/ldi/gotask/internal/db"
	"github.com/ldi/gotask/internal/local"
	"github.com/ldi/gotask/internal/mcp"
	"github.com/ldi/gotask/internal/persist"
	"github.com/ldi/gotask/internal/planner"
	"github.com/ldi/gotask/internal/remote"
	"github.com/ldi/gotask/internal/server"
	"github.com/ldi/gotask/internal/tasks"
	"github.com/ldi/gotask/internal/ui"
	"github.com/ldi/gotask/internal/ui/components"
	"github.com/ldi/gotask/internal/week"
	"github.com/ldi/gotask/pkg/models"
	"google.golang.org/api/option"
)

const (
	defaultDBPath       = ".gotask/gotask.db"
	defaultSnapshotPath = ".gotask/snapshot.jsonl"
)

var (
	dbPath       string
	snapshotPath string
	configPath   string
	verbose      bool
)

const usage = `Usage: gotask [flags] <command> [arguments]

Running ` + "`gotask`" + ` with no command opens the menu.

Commands:
  init [dir]              Create .gotask/ with database, config and settings
  add <text> [flags]      Add a task (--date, --important, --pin, --color, --bold, --italic, --highlight)
  list                    Print the week board
  board                   Interactive week board
  done|pin|star|dup <id>  Toggle completion, pin, importance, or copy a task
  move <id> <day-key>     Move a task to a weekday name or a future date key
  edit <id> <text>        Replace a task's text
  rm <id...>              Delete tasks
  login <user-id>         Sign in and reconcile with the remote store
  logout                  Sign out and clear local tasks
  status                  Show sync status
  mcp                     Serve MCP tools on stdio
  web [--port]            Serve the HTTP API and board
  db export|import [path] Write or merge the task snapshot

Flags:`

func main() {
	if err := execute(os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func execute(args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("gotask", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&dbPath, "db-path", defaultDBPath, "Path to database file")
	fs.StringVar(&snapshotPath, "snapshot-path", defaultSnapshotPath, "Path to snapshot file")
	fs.StringVar(&configPath, "config", "", "Path to config file (default: config.json beside the database)")
	fs.BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		selected, err := ui.RunMenu(menuSummary())
		if err != nil {
			return fmt.Errorf("failed to run menu: %w", err)
		}
		if selected == "" {
			return nil
		}
		return run(selected, []string{})
	}
	return run(fs.Arg(0), fs.Args()[1:])
}

func run(command string, args []string) error {
	switch command {
	case "init":
		return runInit(args)
	case "add":
		return runAdd(args)
	case "list":
		return runList(args)
	case "board":
		return runBoard(args)
	case "done":
		return runDone(args)
	case "pin":
		return runPin(args)
	case "star":
		return runStar(args)
	case "dup":
		return runDup(args)
	case "move":
		return runMove(args)
	case "rm":
		return runRemove(args)
	case "edit":
		return runEdit(args)
	case "login":
		return runLogin(args)
	case "logout":
		return runLogout(args)
	case "status":
		return runStatus(args)
	case "mcp":
		return runMCP(args)
	case "web":
		return runWeb(args)
	case "db":
		return runDB(args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func newLogger() *log.Logger {
	return log.New(os.Stderr, "gotask: ", log.LstdFlags)
}

// app is an open planner session with the resources behind it.
type app struct {
	cfg      Config
	db       *db.DB
	remoteDB *db.DB
	planner  *planner.Planner
}

// openApp opens the databases and starts a session for cfg.UserID. The
// Firestore client is only built when signedIn is set, since it may need a
// browser authorization.
func openApp(ctx context.Context, cfg Config, signedIn bool) (*app, error) {
	logger := newLogger()

	database, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := database.Init(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	database.EnableAutoSnapshot(snapshotPath, logger)

	a := &app{cfg: cfg, db: database}
	rs, err := a.openRemote(ctx, logger, signedIn)
	if err != nil {
		a.Close()
		return nil, err
	}

	kv := local.New(database)
	store := tasks.NewStore()
	coord := persist.New(store, kv, persist.Options{
		Remote:      rs,
		Logger:      logger,
		Verbose:     verbose,
		PushTimeout: time.Duration(cfg.PushTimeout),
		Locale:      week.ParseLocale(cfg.Locale),
	})
	a.planner = planner.New(store, coord, kv, planner.Options{
		AutoSaveInterval: time.Duration(cfg.AutoSaveInterval),
		Logger:           logger,
	})
	if err := a.planner.Open(ctx, cfg.UserID); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// openRemote builds the per-user store named by the config. It returns nil
// when the session never syncs.
func (a *app) openRemote(ctx context.Context, logger *log.Logger, signedIn bool) (remote.Store, error) {
	switch a.cfg.Remote {
	case RemoteSQLite:
		if a.cfg.RemoteDBPath == "" || a.cfg.RemoteDBPath == dbPath {
			return remote.NewSQLStore(a.db), nil
		}
		rdb, err := db.Open(a.cfg.RemoteDBPath)
		if err != nil {
			return nil, err
		}
		if err := rdb.Init(ctx); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("failed to initialize remote database: %w", err)
		}
		a.remoteDB = rdb
		return remote.NewSQLStore(rdb), nil

	case RemoteFirestore:
		if !signedIn {
			return nil, nil
		}
		client, err := auth.GetClient(ctx, auth.Options{
			CredentialsPath: a.cfg.CredentialsPath,
			TokenPath:       a.cfg.TokenPath,
			Logger:          logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to authorize firestore client: %w", err)
		}
		return remote.NewFirestoreStore(ctx, a.cfg.ProjectID, option.WithHTTPClient(client))
	}
	return nil, nil
}

// Close flushes pending writes and closes the databases.
func (a *app) Close() {
	if a.planner != nil {
		a.planner.Close()
	}
	if a.remoteDB != nil {
		a.remoteDB.Close()
	}
	a.db.Close()
}

// menuSummary peeks at the stored board without starting a session, so no
// retention or sync runs before a command is picked.
func menuSummary() ui.MenuSummary {
	if _, err := os.Stat(dbPath); err != nil {
		return ui.MenuSummary{}
	}
	cfg, err := loadConfig()
	if err != nil {
		return ui.MenuSummary{}
	}
	database, err := db.Open(dbPath)
	if err != nil {
		return ui.MenuSummary{}
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.Init(ctx); err != nil {
		return ui.MenuSummary{}
	}
	kv := local.New(database)
	list, err := kv.LoadTasks(ctx)
	if err != nil {
		return ui.MenuSummary{}
	}
	settings, err := kv.LoadSettings(ctx)
	if err != nil {
		settings = models.DefaultSettings()
	}
	return ui.SummarizeTasks(list, time.Now(), week.ParseLocale(settings.Language), cfg.UserID)
}

// withApp opens a session, runs fn and closes the session.
func withApp(fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg, cfg.UserID != "")
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// resolveID accepts a full task id or a unique prefix of one.
func resolveID(p *planner.Planner, ref string) (string, error) {
	if _, ok := p.Task(ref); ok {
		return ref, nil
	}
	var match string
	for _, t := range models.WithoutTutorial(p.Tasks()) {
		if strings.HasPrefix(t.ID, ref) {
			if match != "" {
				return "", fmt.Errorf("task id %q is ambiguous", ref)
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no task matches %q", ref)
	}
	return match, nil
}

// parseInterspersed parses flags that may follow positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func printTask(action string, t models.Task) {
	fmt.Printf("✓ %s %s %q\n", action, shortID(t.ID), t.Text)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runInit(args []string) error {
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	gotaskDir := filepath.Join(targetDir, ".gotask")
	if err := os.MkdirAll(gotaskDir, 0755); err != nil {
		return fmt.Errorf("failed to create .gotask directory: %w", err)
	}
	fmt.Println("✓ Created .gotask/ directory")

	gitignorePath := filepath.Join(gotaskDir, ".gitignore")
	if err := os.WriteFile(gitignorePath, []byte("gotask.db*\nremote.db*\ntoken.json\n"), 0644); err != nil {
		return fmt.Errorf("failed to create .gitignore: %w", err)
	}
	fmt.Println("✓ Created .gotask/.gitignore")

	// Default paths if not overridden by flags
	if dbPath == defaultDBPath {
		dbPath = filepath.Join(gotaskDir, "gotask.db")
	}
	if snapshotPath == defaultSnapshotPath {
		snapshotPath = filepath.Join(gotaskDir, "snapshot.jsonl")
	}

	cfgPath := resolveConfigPath()
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		if err := saveConfig(cfgPath, defaultConfig()); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote default config to %s\n", cfgPath)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	fmt.Printf("✓ Initialized database at %s\n", dbPath)

	if _, ok, err := database.Get(ctx, db.KeySettings); err != nil {
		return err
	} else if !ok {
		settings := models.DefaultSettings()
		settings.Language = week.ParseLocale(cfg.Locale).Language()
		if err := local.New(database).SaveSettings(ctx, settings); err != nil {
			return err
		}
		fmt.Printf("✓ Saved default settings (language %s)\n", settings.Language)
	}

	// Check if snapshot exists and import it
	if _, err := os.Stat(snapshotPath); err == nil {
		n, err := database.ImportSnapshot(ctx, snapshotPath)
		if err != nil {
			return fmt.Errorf("failed to import snapshot: %w", err)
		}
		fmt.Printf("✓ Imported %d task(s) from %s\n", n, snapshotPath)
	}

	fmt.Println("✓ gotask initialized successfully")
	return nil
}

func runAdd(args []string) error {
	addFlags := flag.NewFlagSet("add", flag.ContinueOnError)
	date := addFlags.String("date", "", "Day as YYYY-MM-DD (default today)")
	important := addFlags.Bool("important", false, "Mark as important")
	pinned := addFlags.Bool("pin", false, "Pin the task")
	color := addFlags.String("color", "", "Text color, e.g. #ff0000")
	bold := addFlags.Bool("bold", false, "Bold text")
	italic := addFlags.Bool("italic", false, "Italic text")
	highlight := addFlags.String("highlight", "", "Highlight color")
	positional, err := parseInterspersed(addFlags, args)
	if err != nil {
		return err
	}
	if len(positional) == 0 {
		return errors.New("usage: gotask add <text> [--date YYYY-MM-DD] [--important] [--pin] [--color C] [--bold] [--italic] [--highlight C]")
	}

	return withApp(func(ctx context.Context, a *app) error {
		in := planner.NewTask{
			Text:           strings.Join(positional, " "),
			Important:      *important,
			Pinned:         *pinned,
			Color:          *color,
			Highlight:      *highlight != "",
			HighlightColor: *highlight,
		}
		if *bold {
			in.FontWeight = models.FontWeightBold
		}
		if *italic {
			in.FontStyle = models.FontStyleItalic
		}
		if *date != "" {
			d, err := a.planner.ParseDate(*date)
			if err != nil {
				return err
			}
			in.Date = d
		}

		t, err := a.planner.AddTask(ctx, in)
		if err != nil {
			return err
		}
		printTask("Added", t)
		return nil
	})
}

func runList(args []string) error {
	listFlags := flag.NewFlagSet("list", flag.ContinueOnError)
	width := listFlags.Int("width", 60, "Width of the day boxes")
	showIDs := listFlags.Bool("ids", true, "Show task ids")
	if err := listFlags.Parse(args); err != nil {
		return err
	}

	return withApp(func(ctx context.Context, a *app) error {
		board := a.planner.Board()
		b := components.NewWeekBoard(board.Blocks, *width)
		b.Tutorial = board.Tutorial
		b.Today = board.Today
		b.ShowIDs = *showIDs
		fmt.Println(b.View())
		return nil
	})
}

func runBoard(args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		return ui.RunBoard(ctx, a.planner)
	})
}

// taskAction resolves the single id argument and applies fn to it.
func taskAction(name string, args []string, fn func(ctx context.Context, p *planner.Planner, id string) (models.Task, error)) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: gotask %s <id>", name)
	}
	return withApp(func(ctx context.Context, a *app) error {
		id, err := resolveID(a.planner, args[0])
		if err != nil {
			return err
		}
		t, err := fn(ctx, a.planner, id)
		if err != nil {
			return err
		}
		printTask(strings.ToUpper(name[:1])+name[1:], t)
		return nil
	})
}

func runDone(args []string) error {
	return taskAction("done", args, func(ctx context.Context, p *planner.Planner, id string) (models.Task, error) {
		return p.ToggleCompleted(ctx, id)
	})
}

func runPin(args []string) error {
	return taskAction("pin", args, func(ctx context.Context, p *planner.Planner, id string) (models.Task, error) {
		return p.TogglePin(ctx, id)
	})
}

func runStar(args []string) error {
	return taskAction("star", args, func(ctx context.Context, p *planner.Planner, id string) (models.Task, error) {
		return p.ToggleImportant(ctx, id)
	})
}

func runDup(args []string) error {
	return taskAction("dup", args, func(ctx context.Context, p *planner.Planner, id string) (models.Task, error) {
		return p.Duplicate(ctx, id)
	})
}

func runMove(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: gotask move <id> <day-key>")
	}
	dayKey := strings.Join(args[1:], " ")
	return taskAction("move", args[:1], func(ctx context.Context, p *planner.Planner, id string) (models.Task, error) {
		return p.Reschedule(ctx, id, dayKey)
	})
}

func runEdit(args []string) error {
	if len(args) < 2 {
		return errors.New("usage: gotask edit <id> <text>")
	}
	text := strings.Join(args[1:], " ")
	return taskAction("edit", args[:1], func(ctx context.Context, p *planner.Planner, id string) (models.Task, error) {
		return p.EditTask(ctx, id, models.TaskPatch{Text: &text})
	})
}

func runRemove(args []string) error {
	if len(args) == 0 {
		return errors.New("usage: gotask rm <id...>")
	}
	return withApp(func(ctx context.Context, a *app) error {
		ids := make([]string, 0, len(args))
		for _, ref := range args {
			id, err := resolveID(a.planner, ref)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		n, err := a.planner.Delete(ctx, ids...)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Deleted %d task(s)\n", n)
		return nil
	})
}

func runLogin(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: gotask login <user-id>")
	}
	userID := strings.TrimSpace(args[0])

	ctx := context.Background()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	err = a.planner.Login(ctx, userID)
	a.Close()
	if err != nil {
		return err
	}
	if err := setConfigUser(userID); err != nil {
		return err
	}
	fmt.Printf("✓ Signed in as %s\n", userID)
	return nil
}

func runLogout(args []string) error {
	err := withApp(func(ctx context.Context, a *app) error {
		return a.planner.Logout(ctx)
	})
	if err != nil {
		return err
	}
	if err := setConfigUser(""); err != nil {
		return err
	}
	fmt.Println("✓ Signed out, local tasks cleared")
	return nil
}

func setConfigUser(userID string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.UserID = userID
	return saveConfig(resolveConfigPath(), cfg)
}

func runStatus(args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		st := a.planner.Status()
		w := a.planner.Week()
		settings := a.planner.Settings()

		fmt.Println("gotask Status")
		fmt.Println("=============")
		fmt.Println(components.SyncStatus{Status: st}.View())
		fmt.Printf("Week:     %s - %s\n", w[0].ShortDate, w[6].ShortDate)
		fmt.Printf("Tasks:    %d\n", st.Tasks)
		fmt.Printf("Remote:   %s\n", remoteLabel(a.cfg.Remote))
		fmt.Printf("Language: %s\n", settings.Language)
		fmt.Printf("Database: %s\n", dbPath)
		return nil
	})
}

func remoteLabel(r string) string {
	if r == RemoteNone {
		return "none"
	}
	return r
}

func runMCP(args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		s := mcp.NewServer(a.planner)
		return mcp.Serve(s)
	})
}

func runWeb(args []string) error {
	webFlags := flag.NewFlagSet("web", flag.ContinueOnError)
	port := webFlags.String("port", "8000", "Port to listen on")
	if err := webFlags.Parse(args); err != nil {
		return err
	}

	return withApp(func(ctx context.Context, a *app) error {
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.NewServer(a.planner)
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Printf("Serving on http://localhost:%s\n", *port)
		if err := srv.Start(fmt.Sprintf(":%s", *port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}

func runDB(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: gotask db <command> [arguments]")
		fmt.Println("\nCommands:")
		fmt.Println("  export [path]   Write the task snapshot")
		fmt.Println("  import [path]   Merge a task snapshot into the database")
		return nil
	}

	command := args[0]
	path := snapshotPath
	if len(args) > 1 {
		path = args[1]
	}

	database, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx := context.Background()
	if err := database.Init(ctx); err != nil {
		return err
	}

	switch command {
	case "export":
		if err := database.ExportSnapshot(ctx, path); err != nil {
			return err
		}
		fmt.Printf("✓ Exported snapshot to %s\n", path)
		return nil
	case "import":
		n, err := database.ImportSnapshot(ctx, path)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Imported %d task(s) from %s\n", n, path)
		return nil
	default:
		return fmt.Errorf("unknown db command: %s", command)
	}
}
