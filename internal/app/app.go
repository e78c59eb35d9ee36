// Package app wires the stores, the edit machine, the guard and the feed
// refresher into one controller the embedding UI talks to.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"studycal/internal/auth"
	"studycal/internal/config"
	"studycal/internal/editor"
	"studycal/internal/event"
	"studycal/internal/feed"
	"studycal/internal/grid"
	"studycal/internal/guard"
	appLog "studycal/internal/log"
	"studycal/internal/model"
	"studycal/internal/session"
	"studycal/internal/slot"
	"studycal/internal/syllabus"
)

// App is the application controller. Construct with New, then Load, then
// optionally Attach a grid surface and Start the feed scheduler.
type App struct {
	cfg *config.Config
	loc *time.Location

	slots   slot.Store
	Events  *event.Store
	Session *session.Store
	Editor  *editor.Machine
	Upload  *syllabus.Client

	fetcher *feed.Fetcher
	cron    *cron.Cron

	surface     grid.Surface
	occurrences []model.Occurrence
	access      guard.Decision
}

// New builds the object graph from config. Nothing is read from storage
// yet; call Load next.
func New(cfg *config.Config) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("app: invalid timezone %q: %w", cfg.Timezone, err)
	}

	slots, err := slot.Open(slot.Driver(cfg.Storage), cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("app: open storage: %w", err)
	}

	events := event.NewStore(slots)
	sessions := session.New(slots, auth.NewClient(cfg.AuthBaseURL, cfg.RequestTimeout()))

	a := &App{
		cfg:     cfg,
		loc:     loc,
		slots:   slots,
		Events:  events,
		Session: sessions,
		Editor:  editor.NewMachine(events, loc),
		Upload:  syllabus.NewClient(cfg.SyllabusBaseURL, 0),
		fetcher: feed.NewFetcher(slots, cfg.RequestTimeout()),
		cron:    cron.New(),
	}

	// Re-evaluate protected-view access on every session change.
	guard.Watch(sessions, func(d guard.Decision) {
		a.access = d
		appLog.Debug("calendar access re-evaluated", "decision", d.String())
	})

	return a, nil
}

// Load initializes both stores from their durable slots. Reads happen
// before any mutation is possible.
func (a *App) Load() {
	a.Events.Load()
	a.Session.Load()
	a.render()
}

// CalendarAccess is the guard decision for the calendar and upload views.
func (a *App) CalendarAccess() guard.Decision { return a.access }

// Location is the display timezone everything is entered and rendered in.
func (a *App) Location() *time.Location { return a.loc }

// Attach connects the rendering surface and pushes the current entries.
func (a *App) Attach(s grid.Surface) {
	a.surface = s
	a.render()
}

// Start schedules periodic feed refreshes and runs one immediately when
// feeds are configured.
func (a *App) Start(ctx context.Context) error {
	if len(a.cfg.Feeds) == 0 {
		return nil
	}
	if _, err := a.cron.AddFunc(a.cfg.RefreshCron, func() {
		if err := a.RefreshFeeds(ctx); err != nil {
			appLog.Error("scheduled feed refresh failed", err)
		}
	}); err != nil {
		return fmt.Errorf("app: bad refresh schedule %q: %w", a.cfg.RefreshCron, err)
	}
	a.cron.Start()

	if err := a.RefreshFeeds(ctx); err != nil {
		appLog.Error("initial feed refresh failed", err)
	}
	return nil
}

// Stop halts the scheduler and closes storage.
func (a *App) Stop() {
	a.cron.Stop()
	if err := a.slots.Close(); err != nil {
		appLog.Error("failed to close storage", err)
	}
}

// OnDateClick is the grid's date-click callback.
func (a *App) OnDateClick(dateStr string, allDay bool) {
	a.Editor.OpenForDate(dateStr, allDay)
}

// OnAddEvent is the explicit "add event" action.
func (a *App) OnAddEvent() {
	a.Editor.OpenNew()
}

// OnEventClick is the grid's event-click callback. Feed occurrences are
// read-only and do not open the modal.
func (a *App) OnEventClick(id string) {
	a.Editor.OpenForEvent(id)
}

// SubmitModal submits the modal and re-renders on success. The
// ValidationError passes through so the UI can keep the form open with a
// message.
func (a *App) SubmitModal() error {
	if err := a.Editor.Submit(); err != nil {
		return err
	}
	a.render()
	return nil
}

// CancelModal closes the modal without changes.
func (a *App) CancelModal() {
	a.Editor.Cancel()
}

// DeleteFromModal deletes the event under edit after confirmation and
// re-renders when a delete happened.
func (a *App) DeleteFromModal(confirm func() bool) bool {
	deleted := a.Editor.Delete(confirm)
	if deleted {
		a.render()
	}
	return deleted
}

// AddPlanToCalendar stores the events derived from a processed syllabus.
func (a *App) AddPlanToCalendar(res *syllabus.Result) int {
	events := syllabus.PlanEvents(res)
	for _, ev := range events {
		a.Events.Add(ev)
	}
	if len(events) > 0 {
		a.render()
	}
	return len(events)
}

// RefreshFeeds fetches, parses and expands all configured feeds, then
// re-renders. Individual feed failures are logged; the call only errors
// when every source failed.
func (a *App) RefreshFeeds(ctx context.Context) error {
	sources := make([]feed.Source, 0, len(a.cfg.Feeds))
	for _, fc := range a.cfg.Feeds {
		sources = append(sources, feed.Source{ID: fc.ID, Name: fc.Name, URL: fc.URL})
	}
	if len(sources) == 0 {
		return nil
	}

	results, errs := a.fetcher.FetchAll(ctx, sources)
	if len(results) == 0 && len(errs) > 0 {
		return fmt.Errorf("app: all %d feeds failed, first error: %w", len(errs), errs[0])
	}

	now := time.Now().In(a.loc)
	cfg := feed.ExpandConfig{
		DisplayLocation: a.loc,
		RangeStart:      now.AddDate(0, -1, 0),
		RangeEnd:        now.AddDate(0, 0, a.cfg.HorizonDays),
	}

	occurrences := make([]model.Occurrence, 0)
	for _, res := range results {
		parsed, err := feed.Parse(res.Source, res.Body)
		if err != nil {
			continue
		}
		expanded, err := feed.Expand(parsed, cfg)
		if err != nil {
			appLog.Error("feed expansion failed", err, "id", res.Source.ID)
			continue
		}
		occurrences = append(occurrences, expanded...)
	}

	a.occurrences = occurrences
	a.render()
	return nil
}

// Occurrences returns the current feed overlay.
func (a *App) Occurrences() []model.Occurrence {
	out := make([]model.Occurrence, len(a.occurrences))
	copy(out, a.occurrences)
	return out
}

// render pushes the combined entry list to the attached surface.
func (a *App) render() {
	if a.surface == nil {
		return
	}

	events := a.Events.List()
	entries := make([]grid.Entry, 0, len(events)+len(a.occurrences))
	for _, ev := range events {
		entries = append(entries, grid.EventEntry(ev))
	}
	for _, occ := range a.occurrences {
		entries = append(entries, grid.OccurrenceEntry(occ))
	}
	a.surface.SetEntries(entries)
}
