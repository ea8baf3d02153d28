package main

import (
	"bytes"
	"context"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ldi/gotask/internal/db"
	"github.com/ldi/gotask/internal/local"
	"github.com/ldi/gotask/pkg/models"
)

func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()
	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		done <- buf.String()
	}()

	runErr := fn()
	w.Close()
	os.Stdout = oldStdout
	return <-done, runErr
}

type cliEnv struct {
	t        *testing.T
	dir      string
	dbFile   string
	snapshot string
}

func newCLIEnv(t *testing.T) *cliEnv {
	dir := filepath.Join(t.TempDir(), ".gotask")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create .gotask dir: %v", err)
	}
	return &cliEnv{
		t:        t,
		dir:      dir,
		dbFile:   filepath.Join(dir, "gotask.db"),
		snapshot: filepath.Join(dir, "snapshot.jsonl"),
	}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var stderr bytes.Buffer
	full := append([]string{"--db-path", e.dbFile, "--snapshot-path", e.snapshot}, args...)
	return captureOutput(e.t, func() error {
		return execute(full, &stderr)
	})
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func (e *cliEnv) tasks() []models.Task {
	e.t.Helper()
	database, err := db.Open(e.dbFile)
	if err != nil {
		e.t.Fatalf("failed to open db: %v", err)
	}
	defer database.Close()
	list, err := local.New(database).LoadTasks(context.Background())
	if err != nil {
		e.t.Fatalf("LoadTasks failed: %v", err)
	}
	return list
}

func (e *cliEnv) only() models.Task {
	e.t.Helper()
	list := e.tasks()
	if len(list) != 1 {
		e.t.Fatalf("expected 1 task, got %d: %+v", len(list), list)
	}
	return list[0]
}

func TestAddAndList(t *testing.T) {
	e := newCLIEnv(t)

	out := e.mustRun("add", "buy", "milk", "--important", "--bold", "--highlight", "#ffcc00")
	if !strings.Contains(out, `Added`) || !strings.Contains(out, `"buy milk"`) {
		t.Errorf("unexpected add output: %s", out)
	}

	task := e.only()
	if task.Text != "buy milk" || !task.Important || task.FontWeight != models.FontWeightBold {
		t.Errorf("unexpected task: %+v", task)
	}
	if !task.Highlight || task.HighlightColor != "#ffcc00" {
		t.Errorf("expected highlight, got %+v", task)
	}

	out = e.mustRun("list", "--width", "80")
	if !strings.Contains(out, "buy milk") || !strings.Contains(out, task.ID) {
		t.Errorf("expected task with id in list output:\n%s", out)
	}
	if !strings.Contains(out, "Segunda") || !strings.Contains(out, "Domingo") {
		t.Errorf("expected localized weekday names in list output:\n%s", out)
	}

	if _, err := e.run("add"); err == nil {
		t.Error("expected usage error for add without text")
	}
	if _, err := e.run("add", "late", "--date", "2000-01-03"); err == nil {
		t.Error("expected error for a date before the current week")
	}
	if _, err := e.run("add", "x", "--date", "soon"); err == nil {
		t.Error("expected error for an unparseable date")
	}
}

func TestTaskCommands(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "write report")
	id := e.only().ID
	prefix := id[:6]

	e.mustRun("done", prefix)
	if !e.only().Completed {
		t.Error("expected task completed")
	}
	e.mustRun("done", id)
	if e.only().Completed {
		t.Error("expected done to toggle back")
	}

	e.mustRun("star", prefix)
	e.mustRun("pin", prefix)
	task := e.only()
	if !task.Important || !task.Pinned {
		t.Errorf("expected important and pinned, got %+v", task)
	}

	e.mustRun("edit", prefix, "write", "final", "report")
	if got := e.only().Text; got != "write final report" {
		t.Errorf("expected edited text, got %q", got)
	}

	e.mustRun("move", id, "Domingo")
	if got := e.only().Date.Weekday().String(); got != "Sunday" {
		t.Errorf("expected task on Sunday, got %s", got)
	}
	if _, err := e.run("move", id, "someday"); err == nil {
		t.Error("expected error for unknown day key")
	}

	e.mustRun("dup", id)
	list := e.tasks()
	if len(list) != 2 {
		t.Fatalf("expected duplicate, got %d tasks", len(list))
	}

	if _, err := e.run("rm", "zzzz-missing"); err == nil {
		t.Error("expected error for unknown id")
	}
	out := e.mustRun("rm", list[0].ID, list[1].ID)
	if !strings.Contains(out, "Deleted 2 task(s)") {
		t.Errorf("unexpected rm output: %s", out)
	}
	if len(e.tasks()) != 0 {
		t.Error("expected all tasks deleted")
	}

	if _, err := os.Stat(e.snapshot); err != nil {
		t.Errorf("expected auto snapshot to be written: %v", err)
	}
}

func TestLoginLogoutWithSQLiteRemote(t *testing.T) {
	e := newCLIEnv(t)
	remotePath := filepath.Join(e.dir, "remote.db")
	if err := os.WriteFile(filepath.Join(e.dir, "config.json"), []byte(`{"remote":"sqlite","remote_db_path":"`+remotePath+`"}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	e.mustRun("add", "offline task")
	out := e.mustRun("login", "u1")
	if !strings.Contains(out, "Signed in as u1") {
		t.Errorf("unexpected login output: %s", out)
	}

	remoteTasks := func() []models.Task {
		rdb, err := db.Open(remotePath)
		if err != nil {
			t.Fatalf("failed to open remote db: %v", err)
		}
		defer rdb.Close()
		list, err := rdb.ListUserTasks(context.Background(), "u1")
		if err != nil {
			t.Fatalf("ListUserTasks failed: %v", err)
		}
		return list
	}
	if got := remoteTasks(); len(got) != 1 || got[0].Text != "offline task" {
		t.Fatalf("expected local task pushed on sign-in, got %+v", got)
	}

	e.mustRun("add", "synced task")
	if got := remoteTasks(); len(got) != 2 {
		t.Errorf("expected 2 remote tasks after add, got %d", len(got))
	}

	out = e.mustRun("status")
	if !strings.Contains(out, "user u1") || !strings.Contains(out, "Remote:   sqlite") {
		t.Errorf("unexpected status output:\n%s", out)
	}

	e.mustRun("logout")
	if len(e.tasks()) != 0 {
		t.Error("expected local tasks cleared on logout")
	}
	if got := remoteTasks(); len(got) != 2 {
		t.Errorf("expected remote tasks kept after logout, got %d", len(got))
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.UserID != "" {
		t.Errorf("expected user cleared from config, got %q", cfg.UserID)
	}

	e.mustRun("login", "u1")
	if got := e.tasks(); len(got) != 2 {
		t.Errorf("expected remote tasks restored on sign-in, got %d", len(got))
	}
}

func TestDBExportImport(t *testing.T) {
	e := newCLIEnv(t)
	e.mustRun("add", "keep me")

	exportPath := filepath.Join(e.dir, "export.jsonl")
	out := e.mustRun("db", "export", exportPath)
	if !strings.Contains(out, "Exported snapshot") {
		t.Errorf("unexpected export output: %s", out)
	}

	other := newCLIEnv(t)
	out = other.mustRun("db", "import", exportPath)
	if !strings.Contains(out, "Imported 1 task(s)") {
		t.Errorf("unexpected import output: %s", out)
	}
	if other.only().Text != "keep me" {
		t.Errorf("expected imported task")
	}

	if _, err := e.run("db", "vacuum"); err == nil {
		t.Error("expected error for unknown db command")
	}
}

func TestExecuteErrors(t *testing.T) {
	var stderr bytes.Buffer
	err := execute([]string{"work"}, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unknown command: work") {
		t.Fatalf("expected unknown command error, got: %v", err)
	}

	stderr.Reset()
	err = execute([]string{"--help"}, &stderr)
	if err != flag.ErrHelp {
		t.Fatalf("expected help error, got: %v", err)
	}
	for _, want := range []string{"with no command opens the menu", "-db-path", "-snapshot-path", "-config", "move <id> <day-key>"} {
		if !strings.Contains(stderr.String(), want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}

func TestParseInterspersed(t *testing.T) {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	important := fs.Bool("important", false, "")
	date := fs.String("date", "", "")

	positional, err := parseInterspersed(fs, []string{"buy", "--important", "milk", "--date", "2024-06-07", "now"})
	if err != nil {
		t.Fatalf("parseInterspersed failed: %v", err)
	}
	if strings.Join(positional, " ") != "buy milk now" {
		t.Errorf("unexpected positional args: %v", positional)
	}
	if !*important || *date != "2024-06-07" {
		t.Errorf("flags not parsed: important=%v date=%q", *important, *date)
	}
}

func TestMenuSummary(t *testing.T) {
	e := newCLIEnv(t)
	dbPath = filepath.Join(e.dir, "missing.db")
	if s := menuSummary(); s.Ready {
		t.Errorf("expected no board for missing database, got %+v", s)
	}

	e.mustRun("add", "write report")
	e.mustRun("add", "call bank")
	s := menuSummary()
	if !s.Ready {
		t.Fatal("expected board after add")
	}
	if s.Open != 2 || s.DueToday != 2 {
		t.Errorf("expected 2 open and 2 due today, got %+v", s)
	}
	if s.UserID != "" {
		t.Errorf("expected offline summary, got user %q", s.UserID)
	}
}
