// Package search drives a lookup from user intent to a rendered forecast.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"weather-lookup/datasource"
	"weather-lookup/geolocation"
	"weather-lookup/history"
	"weather-lookup/models"
)

// DefaultDebounce is the quiet period before an edited query is searched
const DefaultDebounce = 600 * time.Millisecond

// Options tunes an Orchestrator
type Options struct {
	// Debounce <= 0 disables automatic searches; QueryStable can still be called directly
	Debounce time.Duration
	Locate   geolocation.Options
	// OnChange, when set, receives the state after every finished attempt
	OnChange func(State)
}

// DefaultOptions matches the interactive behaviour
func DefaultOptions() Options {
	return Options{Debounce: DefaultDebounce, Locate: geolocation.DefaultOptions}
}

// Orchestrator owns the search state machine. Attempts never overlap: a new
// attempt is refused with ErrBusy while one is outstanding.
type Orchestrator struct {
	resolver  datasource.Resolver
	forecasts datasource.ForecastSource
	locator   geolocation.Locator
	history   *history.History
	opts      Options
	logger    *slog.Logger
	tracer    trace.Tracer
	debouncer *Debouncer
	queryLog  rate.Sometimes

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	state  State
	closed bool
	// lower-cased query most recently auto-searched, cleared by any edit
	lastAuto string
	// last value delivered by the debouncer that has not yet been searched
	stable    string
	hasStable bool
}

// NewOrchestrator wires the collaborators. A nil locator means the device
// has no geolocation capability.
func NewOrchestrator(resolver datasource.Resolver, forecasts datasource.ForecastSource, locator geolocation.Locator, hist *history.History, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	o := &Orchestrator{
		resolver:  resolver,
		forecasts: forecasts,
		locator:   locator,
		history:   hist,
		opts:      opts,
		logger:    logger.With(slog.String("component", "search")),
		tracer:    otel.Tracer("SearchOrchestrator"),
		queryLog:  rate.Sometimes{Interval: time.Second},
		ctx:       ctx,
		cancel:    cancel,
		state:     State{Status: StatusIdle},
	}
	if opts.Debounce > 0 {
		o.debouncer = NewDebouncer(opts.Debounce, func(q string) {
			if !o.track() {
				return
			}
			defer o.wg.Done()
			if err := o.QueryStable(o.ctx, q); err != nil && !isGuard(err) {
				o.logger.DebugContext(o.ctx, "auto search failed", slog.Any("error", err))
			}
		})
	}
	return o
}

// State returns a snapshot of the current state
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// History returns the remembered lookups, most recent first
func (o *Orchestrator) History() []models.HistoryEntry {
	return o.history.Entries()
}

// ClearHistory forgets every remembered lookup
func (o *Orchestrator) ClearHistory(ctx context.Context) error {
	return o.history.Clear(ctx)
}

// SetQuery records an edit of the query text and restarts the quiet period
func (o *Orchestrator) SetQuery(q string) {
	o.mu.Lock()
	o.state.Query = q
	o.lastAuto = ""
	o.hasStable = false
	o.mu.Unlock()

	o.queryLog.Do(func() {
		o.logger.Debug("query edited", slog.Int("length", len(q)))
	})
	if o.debouncer != nil {
		o.debouncer.Trigger(q)
	}
}

// Search runs a manual resolve-then-fetch for the current query.
// It returns ErrQueryTooShort or ErrBusy without touching the state, otherwise
// the attempt's failure, if any.
func (o *Orchestrator) Search(ctx context.Context) error {
	o.mu.Lock()
	name := strings.TrimSpace(o.state.Query)
	if !searchable(name) {
		o.mu.Unlock()
		return ErrQueryTooShort
	}
	if o.state.Loading {
		o.mu.Unlock()
		return ErrBusy
	}
	id := o.begin(EntryManual, false)
	o.mu.Unlock()

	return o.searchByName(ctx, EntryManual, id, name)
}

// QueryStable is called once the query has stopped changing. It searches q
// unless it is too short, an attempt is outstanding, or the same query
// (case-insensitively) was already auto-searched since the last edit.
func (o *Orchestrator) QueryStable(ctx context.Context, q string) error {
	name := strings.TrimSpace(q)

	if !searchable(name) {
		return ErrQueryTooShort
	}

	o.mu.Lock()
	if o.state.Loading || o.state.Locating {
		// held until the outstanding attempt finishes
		o.stable, o.hasStable = q, true
		o.mu.Unlock()
		return ErrBusy
	}
	o.hasStable = false
	if o.lastAuto == strings.ToLower(name) {
		o.mu.Unlock()
		return nil
	}
	o.lastAuto = strings.ToLower(name)
	id := o.begin(EntryAuto, false)
	o.mu.Unlock()

	return o.searchByName(ctx, EntryAuto, id, name)
}

// Locate searches the forecast for the device position
func (o *Orchestrator) Locate(ctx context.Context) error {
	o.mu.Lock()
	if o.state.Loading {
		o.mu.Unlock()
		return ErrBusy
	}
	if o.locator == nil {
		o.state.Message = UserMessage(geolocation.ErrUnsupported, MsgUnexpectedLocation)
		o.state.Status = StatusError
		o.state.Place, o.state.Forecast = nil, nil
		snapshot := o.state.clone()
		o.mu.Unlock()
		recordAttempt(EntryGeolocation, geolocation.ErrUnsupported)
		o.notify(snapshot)
		return geolocation.ErrUnsupported
	}
	id := o.begin(EntryGeolocation, true)
	o.mu.Unlock()

	ctx, span := o.startSpan(ctx, EntryGeolocation, id)
	defer span.End()
	logger := o.logger.With(slog.String("method", "Locate"), slog.String("attempt", id))

	pos, err := o.locator.Locate(ctx, o.opts.Locate)
	if err != nil {
		logger.WarnContext(ctx, "failed to acquire position", slog.Any("error", err))
		return o.fail(ctx, span, EntryGeolocation, id, fmt.Errorf("failed to acquire position: %w", err), MsgUnexpectedLocation)
	}

	place := models.PlaceAt(pos.Latitude, pos.Longitude)
	o.setPlace(id, place)
	o.history.Add(ctx, models.EntryFor(place))

	snap, err := o.forecasts.FetchByCoordinates(ctx, pos.Latitude, pos.Longitude, models.AutoTimezone)
	if err != nil {
		return o.fail(ctx, span, EntryGeolocation, id, fmt.Errorf("failed to fetch forecast: %w", err), MsgUnexpectedLocation)
	}

	logger.InfoContext(ctx, "forecast ready for current position")
	return o.succeed(span, EntryGeolocation, id, place, snap)
}

// Replay repeats a remembered lookup. Entries with coordinates skip name
// resolution. The query text becomes the entry name without starting an
// automatic search.
func (o *Orchestrator) Replay(ctx context.Context, entry models.HistoryEntry) error {
	if entry.Name == "" {
		return nil
	}

	o.mu.Lock()
	if o.state.Loading {
		o.mu.Unlock()
		return ErrBusy
	}
	if o.debouncer != nil {
		o.debouncer.Stop()
	}
	o.state.Query = entry.Name
	o.lastAuto = strings.ToLower(strings.TrimSpace(entry.Name))
	o.hasStable = false
	id := o.begin(EntryReplay, false)
	o.mu.Unlock()

	if !entry.HasCoordinates() {
		return o.searchByName(ctx, EntryReplay, id, entry.Name)
	}

	ctx, span := o.startSpan(ctx, EntryReplay, id)
	defer span.End()

	place := models.Place{
		Name:      entry.Name,
		Country:   entry.Country,
		Latitude:  *entry.Latitude,
		Longitude: *entry.Longitude,
		Timezone:  models.AutoTimezone,
	}
	o.setPlace(id, place)

	snap, err := o.forecasts.FetchByCoordinates(ctx, place.Latitude, place.Longitude, models.AutoTimezone)
	if err != nil {
		return o.fail(ctx, span, EntryReplay, id, fmt.Errorf("failed to fetch forecast: %w", err), MsgUnexpected)
	}

	o.history.Add(ctx, entry)
	return o.succeed(span, EntryReplay, id, place, snap)
}

// Reset clears the query and any result, and cancels a pending automatic search
func (o *Orchestrator) Reset() {
	if o.debouncer != nil {
		o.debouncer.Stop()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.state = State{Status: StatusIdle}
	o.lastAuto = ""
	o.hasStable = false
}

// Close stops the scheduler and waits for background attempts to return
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	if o.debouncer != nil {
		o.debouncer.Stop()
	}
	o.cancel()
	o.wg.Wait()
}

// begin moves to Loading for a new attempt. Caller holds o.mu.
func (o *Orchestrator) begin(entry Entry, locating bool) string {
	id := uuid.NewString()
	o.state.Status = StatusLoading
	o.state.Loading = true
	o.state.Locating = locating
	o.state.Message = ""
	o.state.Place = nil
	o.state.Forecast = nil
	o.state.AttemptID = id
	o.state.Entry = entry
	return id
}

func (o *Orchestrator) startSpan(ctx context.Context, entry Entry, id string) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, "Orchestrator."+string(entry), trace.WithAttributes(
		attribute.String("attempt.id", id),
		attribute.String("attempt.entry", string(entry)),
	))
}

func (o *Orchestrator) searchByName(ctx context.Context, entry Entry, id, name string) error {
	ctx, span := o.startSpan(ctx, entry, id)
	defer span.End()
	span.SetAttributes(attribute.String("query", name))

	logger := o.logger.With(slog.String("method", "searchByName"), slog.String("attempt", id), slog.String("entry", string(entry)))

	place, err := o.resolver.Resolve(ctx, name)
	if err != nil {
		return o.fail(ctx, span, entry, id, fmt.Errorf("failed to resolve %q: %w", name, err), MsgUnexpected)
	}

	o.setPlace(id, place)
	o.history.Add(ctx, models.EntryFor(place))

	snap, err := o.forecasts.FetchByPlace(ctx, place)
	if err != nil {
		return o.fail(ctx, span, entry, id, fmt.Errorf("failed to fetch forecast for %s: %w", place.Name, err), MsgUnexpected)
	}

	logger.InfoContext(ctx, "forecast ready",
		slog.String("place", place.Name),
		slog.String("country", place.Country))
	return o.succeed(span, entry, id, place, snap)
}

func (o *Orchestrator) setPlace(id string, place models.Place) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.AttemptID == id {
		o.state.Place = &place
	}
}

func (o *Orchestrator) succeed(span trace.Span, entry Entry, id string, place models.Place, snap models.ForecastSnapshot) error {
	span.SetStatus(codes.Ok, "forecast ready")
	o.finish(entry, id, func(s *State) {
		s.Status = StatusSuccess
		s.Place = &place
		s.Forecast = &snap
	}, nil)
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, span trace.Span, entry Entry, id string, err error, fallback string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, "search attempt failed")
	o.logger.ErrorContext(ctx, "search attempt failed",
		slog.String("attempt", id),
		slog.String("entry", string(entry)),
		slog.Any("error", err))

	o.finish(entry, id, func(s *State) {
		s.Status = StatusError
		s.Place = nil
		s.Forecast = nil
		s.Message = UserMessage(err, fallback)
	}, err)
	return err
}

// finish applies the outcome unless a Reset happened meanwhile, then
// re-evaluates a stable query that was held back by this attempt.
func (o *Orchestrator) finish(entry Entry, id string, apply func(*State), err error) {
	recordAttempt(entry, err)

	o.mu.Lock()
	current := o.state.AttemptID == id
	if current {
		apply(&o.state)
		o.state.Loading = false
		o.state.Locating = false
	}
	snapshot := o.state.clone()
	pending, q := o.hasStable, o.stable
	o.mu.Unlock()

	if current {
		o.notify(snapshot)
	}

	if pending && o.track() {
		go func() {
			defer o.wg.Done()
			if err := o.QueryStable(o.ctx, q); err != nil && !isGuard(err) {
				o.logger.Debug("deferred auto search failed", slog.Any("error", err))
			}
		}()
	}
}

// track registers a background attempt with Close, or reports false once closing
func (o *Orchestrator) track() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	o.wg.Add(1)
	return true
}

func (o *Orchestrator) notify(s State) {
	if o.opts.OnChange != nil {
		o.opts.OnChange(s)
	}
}

func isGuard(err error) bool {
	return errors.Is(err, ErrQueryTooShort) || errors.Is(err, ErrBusy)
}
