// Package planner is the application facade used by the CLI, the tool
// server and the HTTP API.
package planner

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ldi/gotask/internal/bucket"
	"github.com/ldi/gotask/internal/persist"
	"github.com/ldi/gotask/internal/tasks"
	"github.com/ldi/gotask/internal/tutorial"
	"github.com/ldi/gotask/internal/week"
	"github.com/ldi/gotask/pkg/models"
)

const DefaultAutoSaveInterval = 2 * time.Second

type Options struct {
	Now              func() time.Time
	AutoSaveInterval time.Duration
	Logger           *log.Logger
}

type Planner struct {
	store     *tasks.Store
	coord     *persist.Coordinator
	flag      tutorial.Flag
	selection *Selection
	logger    *log.Logger
	now       func() time.Time
	interval  time.Duration

	mu       sync.Mutex
	seeder   *tutorial.Seeder
	locale   week.Locale
	settings models.Settings
	drafts   map[string]*draft
}

// draft accumulates autosave patches for one task.
type draft struct {
	patch models.TaskPatch
	deb   *persist.Debouncer
}

func New(store *tasks.Store, coord *persist.Coordinator, flag tutorial.Flag, opts Options) *Planner {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.AutoSaveInterval <= 0 {
		opts.AutoSaveInterval = DefaultAutoSaveInterval
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, "gotask: ", log.LstdFlags)
	}
	p := &Planner{
		store:     store,
		coord:     coord,
		flag:      flag,
		selection: NewSelection(),
		logger:    opts.Logger,
		now:       opts.Now,
		interval:  opts.AutoSaveInterval,
		locale:    week.DefaultLocale,
		settings:  models.DefaultSettings(),
		drafts:    make(map[string]*draft),
	}
	p.seeder = tutorial.NewSeeder(store, flag, p.locale, opts.Now)
	return p
}

// Open loads settings, starts the persistence session for userID ("" for
// offline) and seeds the onboarding task on first run.
func (p *Planner) Open(ctx context.Context, userID string) error {
	settings, err := p.coord.Settings(ctx)
	if err != nil {
		p.logger.Printf("using default settings: %v", err)
		settings = models.DefaultSettings()
	}
	p.applySettings(settings)

	if err := p.coord.Start(ctx, userID); err != nil {
		if p.coord.State() != persist.StateReady {
			return err
		}
		p.logger.Printf("session started with errors: %v", err)
	}

	if _, err := p.tutorial().Seed(ctx); err != nil {
		p.logger.Printf("tutorial: %v", err)
	}
	return nil
}

// Close flushes autosave drafts and pending pushes.
func (p *Planner) Close() {
	p.FlushAutoSave()
	p.coord.Close()
}

func (p *Planner) applySettings(s models.Settings) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = s
	p.locale = week.ParseLocale(s.Language)
	p.seeder = tutorial.NewSeeder(p.store, p.flag, p.locale, p.now)
}

func (p *Planner) tutorial() *tutorial.Seeder {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seeder
}

func (p *Planner) Locale() week.Locale {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.locale
}

// Week is the current week for the planner's clock and locale.
func (p *Planner) Week() week.Week {
	return week.Compute(p.now(), p.Locale())
}

// Tasks returns the collection, tutorial included when shown.
func (p *Planner) Tasks() []models.Task {
	return p.store.Tasks()
}

func (p *Planner) Task(id string) (models.Task, bool) {
	return p.store.Get(id)
}

// Board is the projected display structure.
type Board struct {
	Week     week.Week      `json:"week"`
	Today    string         `json:"today"`
	Blocks   []bucket.Block `json:"blocks"`
	Tutorial *models.Task   `json:"tutorial,omitempty"`
}

func (p *Planner) Board() Board {
	w := p.Week()
	list := p.store.Tasks()
	blocks := bucket.Build(list, w, p.Locale())
	for i := range blocks {
		blocks[i].Tasks = bucket.SortForDisplay(blocks[i].Tasks)
	}
	b := Board{Week: w, Blocks: blocks}
	if day, ok := w.Find(p.now()); ok {
		b.Today = day.DisplayKey
	}
	if t, ok := p.store.Get(models.TutorialTaskID); ok {
		b.Tutorial = &t
	}
	return b
}

// DateLayout is the date format accepted by ParseDate.
const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD date as midnight in the week's location.
func (p *Planner) ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), p.Week().Location())
	if err != nil {
		return time.Time{}, &models.ValidationError{Field: "date", Reason: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s)}
	}
	return d, nil
}

// NewTask is the input for AddTask. A zero Date means today.
type NewTask struct {
	Text           string
	Date           time.Time
	Important      bool
	Pinned         bool
	Color          string
	FontStyle      models.FontStyle
	FontWeight     models.FontWeight
	Highlight      bool
	HighlightColor string
}

func (p *Planner) checkText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &models.ValidationError{Field: "text", Reason: "must not be empty"}
	}
	return nil
}

func (p *Planner) checkDate(d time.Time) error {
	w := p.Week()
	if w.DateOf(d).Before(w.Start()) {
		return &models.ValidationError{Field: "date", Reason: "is before the current week"}
	}
	return nil
}

func (p *Planner) AddTask(ctx context.Context, in NewTask) (models.Task, error) {
	if err := p.checkText(in.Text); err != nil {
		return models.Task{}, err
	}
	now := p.now()
	if in.Date.IsZero() {
		in.Date = now
	}
	if err := p.checkDate(in.Date); err != nil {
		return models.Task{}, err
	}
	if in.Color == "" {
		in.Color = models.DefaultColor
	}
	if in.Highlight && in.HighlightColor == "" {
		in.HighlightColor = models.DefaultHighlightColor
	}

	t := models.Task{
		ID:             p.store.NewID(),
		Text:           strings.TrimSpace(in.Text),
		Date:           in.Date,
		Important:      in.Important,
		Pinned:         in.Pinned,
		Color:          in.Color,
		FontStyle:      in.FontStyle,
		FontWeight:     in.FontWeight,
		Highlight:      in.Highlight,
		HighlightColor: in.HighlightColor,
		CreatedAt:      now,
	}
	if err := t.Validate(); err != nil {
		return models.Task{}, err
	}
	_, err := p.store.Add(ctx, t)
	return t, err
}

func (p *Planner) lookup(id string) (models.Task, error) {
	t, ok := p.store.Get(id)
	if !ok {
		return models.Task{}, &models.ValidationError{Field: "id", Reason: fmt.Sprintf("unknown task %q", id)}
	}
	return t, nil
}

func (p *Planner) checkPatch(patch models.TaskPatch) error {
	if patch.Text != nil {
		if err := p.checkText(*patch.Text); err != nil {
			return err
		}
	}
	if patch.Date != nil {
		if err := p.checkDate(*patch.Date); err != nil {
			return err
		}
	}
	probe := models.Task{ID: "probe", Text: "probe"}
	return patch.Apply(probe).Validate()
}

// EditTask applies patch. Edits to the onboarding task are ignored.
func (p *Planner) EditTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	t, err := p.lookup(id)
	if err != nil || t.IsTutorial() {
		return t, err
	}
	if err := p.checkPatch(patch); err != nil {
		return t, err
	}
	if patch.Text != nil {
		trimmed := strings.TrimSpace(*patch.Text)
		patch.Text = &trimmed
	}
	if _, err := p.store.Update(ctx, id, patch); err != nil {
		return p.mustGet(id), err
	}
	return p.mustGet(id), nil
}

func (p *Planner) mustGet(id string) models.Task {
	t, _ := p.store.Get(id)
	return t
}

// AutoSave queues patch for id and applies the merged patches once edits
// pause for the autosave interval. It reports whether the patch was queued.
// Blank text and disabled autosave are skipped.
func (p *Planner) AutoSave(id string, patch models.TaskPatch) bool {
	p.mu.Lock()
	enabled := p.settings.AutoSave
	p.mu.Unlock()
	if !enabled || id == models.TutorialTaskID {
		return false
	}
	if patch.Text != nil && strings.TrimSpace(*patch.Text) == "" {
		return false
	}
	if _, ok := p.store.Get(id); !ok {
		return false
	}

	p.mu.Lock()
	d, ok := p.drafts[id]
	if !ok {
		d = &draft{deb: persist.NewDebouncer(p.interval)}
		p.drafts[id] = d
	}
	d.patch = d.patch.Merge(patch)
	p.mu.Unlock()

	d.deb.Trigger(func() { p.commitDraft(id) })
	return true
}

func (p *Planner) commitDraft(id string) {
	p.mu.Lock()
	d, ok := p.drafts[id]
	if ok {
		delete(p.drafts, id)
	}
	p.mu.Unlock()
	if !ok || d.patch.IsEmpty() {
		return
	}
	if _, err := p.EditTask(context.Background(), id, d.patch); err != nil {
		p.logger.Printf("autosave %s: %v", id, err)
	}
}

// FlushAutoSave applies every queued draft now.
func (p *Planner) FlushAutoSave() {
	p.mu.Lock()
	pending := make([]*draft, 0, len(p.drafts))
	for _, d := range p.drafts {
		pending = append(pending, d)
	}
	p.mu.Unlock()

	for _, d := range pending {
		d.deb.Flush()
	}
}

func (p *Planner) SetCompleted(ctx context.Context, id string, done bool) (models.Task, error) {
	return p.EditTask(ctx, id, models.TaskPatch{Completed: &done})
}

func (p *Planner) ToggleCompleted(ctx context.Context, id string) (models.Task, error) {
	t, err := p.lookup(id)
	if err != nil {
		return t, err
	}
	return p.SetCompleted(ctx, id, !t.Completed)
}

func (p *Planner) ToggleImportant(ctx context.Context, id string) (models.Task, error) {
	t, err := p.lookup(id)
	if err != nil {
		return t, err
	}
	important := !t.Important
	return p.EditTask(ctx, id, models.TaskPatch{Important: &important})
}

func (p *Planner) TogglePin(ctx context.Context, id string) (models.Task, error) {
	t, err := p.lookup(id)
	if err != nil || t.IsTutorial() {
		return t, err
	}
	if _, err := p.store.TogglePin(ctx, id); err != nil {
		return p.mustGet(id), err
	}
	return p.mustGet(id), nil
}

// Duplicate copies a task under a new id. The onboarding task is not copied.
func (p *Planner) Duplicate(ctx context.Context, id string) (models.Task, error) {
	t, err := p.lookup(id)
	if err != nil {
		return t, err
	}
	if t.IsTutorial() {
		return models.Task{}, &models.ValidationError{Field: "id", Reason: "the tutorial task cannot be duplicated"}
	}
	return p.store.Duplicate(ctx, t)
}

// Delete removes ids, skipping the onboarding task. It returns how many
// tasks were removed.
func (p *Planner) Delete(ctx context.Context, ids ...string) (int, error) {
	var drop []string
	for _, id := range ids {
		if id == models.TutorialTaskID {
			continue
		}
		if _, ok := p.store.Get(id); ok {
			drop = append(drop, id)
		}
	}
	if len(drop) == 0 {
		return 0, nil
	}
	_, err := p.store.Delete(ctx, drop...)
	return len(drop), err
}

// Reschedule moves a task to the day named by dayKey: a weekday display key
// or a locale day key. Dropping a task on its own day is a no-op.
func (p *Planner) Reschedule(ctx context.Context, id, dayKey string) (models.Task, error) {
	t, err := p.lookup(id)
	if err != nil || t.IsTutorial() {
		return t, err
	}

	w := p.Week()
	loc := p.Locale()
	if key, _ := bucket.KeyFor(t, w, loc); key == dayKey {
		return t, nil
	}

	var target time.Time
	if day, ok := w.ByKey(dayKey); ok {
		target = day.Date
	} else {
		target, err = loc.ParseDayKey(dayKey, w.Location())
		if err != nil {
			return t, &models.ValidationError{Field: "day", Reason: fmt.Sprintf("unknown day %q", dayKey)}
		}
	}
	return p.EditTask(ctx, id, models.TaskPatch{Date: &target})
}

// ToggleSelected flips id in the session's selection.
func (p *Planner) ToggleSelected(session, id string) (bool, error) {
	if _, err := p.lookup(id); err != nil {
		return false, err
	}
	if id == models.TutorialTaskID {
		return false, nil
	}
	return p.selection.Toggle(session, id), nil
}

// ToggleDaySelected selects or deselects every task in the day's bucket.
func (p *Planner) ToggleDaySelected(session, dayKey string) bool {
	groups := bucket.Group(p.store.Tasks(), p.Week(), p.Locale())
	var ids []string
	for _, t := range groups[dayKey] {
		ids = append(ids, t.ID)
	}
	return p.selection.ToggleAll(session, ids)
}

func (p *Planner) Selected(session string) []string {
	return p.selection.Peek(session)
}

func (p *Planner) ClearSelection(session string) {
	p.selection.Clear(session)
}

// DeleteSelected removes the session's selection and clears it.
func (p *Planner) DeleteSelected(ctx context.Context, session string) (int, error) {
	return p.Delete(ctx, p.selection.GetAndClear(session)...)
}

func (p *Planner) Settings() models.Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

func (p *Planner) UpdateSettings(ctx context.Context, s models.Settings) (models.Settings, error) {
	if err := s.Validate(); err != nil {
		return p.Settings(), err
	}
	if err := p.coord.UpdateSettings(ctx, s); err != nil {
		return p.Settings(), err
	}
	p.applySettings(s)
	return s, nil
}

func (p *Planner) DismissTutorial(ctx context.Context) error {
	return p.tutorial().Dismiss(ctx)
}

func (p *Planner) Login(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return &models.ValidationError{Field: "user_id", Reason: "must not be empty"}
	}
	return p.coord.SetUser(ctx, userID)
}

// Logout flushes drafts, then clears the session's stored tasks.
func (p *Planner) Logout(ctx context.Context) error {
	p.FlushAutoSave()
	return p.coord.SetUser(ctx, "")
}

func (p *Planner) Status() persist.Status {
	return p.coord.Status()
}

// Flush waits for queued remote pushes.
func (p *Planner) Flush() {
	p.FlushAutoSave()
	p.coord.Flush()
}
