package googlecalendar

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	stcalendar "github.com/mattismoel/stineplan/pkg/calendar"
	"github.com/mattismoel/stineplan/pkg/stine"
	"github.com/mattismoel/stineplan/util"
)

const (
	DefaultCalendarID = "primary"

	timeZone  = "Europe/Berlin"
	cancelled = "cancelled"

	// Upper bound of concurrent writes to the Calendar API.
	writeLimit = 8
)

type GoogleCalendar struct {
	Service *calendar.Service
	ID      string
	Logger  *slog.Logger
}

func NewGoogleCalendar(ctx context.Context, client *http.Client, calendarID string, opts ...option.ClientOption) (*GoogleCalendar, error) {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}
	service, err := calendar.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("could not create calendar service: %w", err)
	}
	return &GoogleCalendar{Service: service, ID: calendarID, Logger: slog.Default()}, nil
}

// EventsFromModules returns the Google events of every occurrence inside the
// window, keyed by event ID.
func EventsFromModules(modules []stine.Module, cfg stcalendar.Config) map[string]*calendar.Event {
	events := make(map[string]*calendar.Event)
	for _, o := range stcalendar.Occurrences(modules, cfg) {
		events[o.ID] = &calendar.Event{
			Id:          o.ID,
			Summary:     o.Summary(),
			Description: fmt.Sprintf("%s (%s)", o.Module.Name, o.Module.ShortName),
			Start:       &calendar.EventDateTime{DateTime: o.Start().Format(time.RFC3339), TimeZone: timeZone},
			End:         &calendar.EventDateTime{DateTime: o.End().Format(time.RFC3339), TimeZone: timeZone},
			Status:      "confirmed",
		}
	}
	return events
}

// Plan holds the writes that bring a calendar in line with the schedule.
type Plan struct {
	Insert []*calendar.Event
	Update []*calendar.Event
	Delete []string // Event IDs
}

func (p Plan) Empty() bool {
	return len(p.Insert) == 0 && len(p.Update) == 0 && len(p.Delete) == 0
}

// NewPlan compares the wanted events with those already in the calendar.
// Missing events are inserted, changed or cancelled ones are updated, and
// events that are no longer wanted are deleted. Every list is sorted by ID.
func NewPlan(want, have map[string]*calendar.Event) Plan {
	var plan Plan
	extras, missing := util.CompareMaps(want, have)

	for _, id := range util.SortedKeys(missing) {
		plan.Insert = append(plan.Insert, missing[id])
	}
	for _, id := range util.SortedKeys(want) {
		existing, ok := have[id]
		if !ok {
			continue
		}
		if existing.Status == cancelled || !sameEvent(want[id], existing) {
			plan.Update = append(plan.Update, want[id])
		}
	}
	for _, id := range util.SortedKeys(extras) {
		if extras[id].Status != cancelled {
			plan.Delete = append(plan.Delete, id)
		}
	}
	return plan
}

func sameEvent(a, b *calendar.Event) bool {
	return a.Summary == b.Summary &&
		a.Description == b.Description &&
		sameTime(a.Start, b.Start) &&
		sameTime(a.End, b.End)
}

func sameTime(a, b *calendar.EventDateTime) bool {
	if a == nil || b == nil {
		return a == b
	}
	ta, errA := time.Parse(time.RFC3339, a.DateTime)
	tb, errB := time.Parse(time.RFC3339, b.DateTime)
	if errA != nil || errB != nil {
		return a.DateTime == b.DateTime
	}
	return ta.Equal(tb)
}

func window(cfg stcalendar.Config) (time.Time, time.Time) {
	start := util.RoundDateToDay(cfg.StartDate)
	return start, start.AddDate(0, 0, cfg.DayCount)
}

// list calls fn with every event of the calendar that was created by this
// tool, following all result pages.
func (c *GoogleCalendar) list(ctx context.Context, call *calendar.EventsListCall, fn func(*calendar.Event)) error {
	pageToken := ""
	for {
		if pageToken != "" {
			call.PageToken(pageToken)
		}
		r, err := call.Context(ctx).Do()
		if err != nil {
			return err
		}
		for _, item := range r.Items {
			if strings.HasPrefix(item.Id, stcalendar.IDPrefix) {
				fn(item)
			}
		}

		pageToken = r.NextPageToken
		if pageToken == "" {
			return nil
		}
	}
}

// GetEvents returns the events of this tool inside the window of cfg,
// including cancelled ones, keyed by event ID.
func (c *GoogleCalendar) GetEvents(ctx context.Context, cfg stcalendar.Config) (map[string]*calendar.Event, error) {
	start, end := window(cfg)
	call := c.Service.Events.List(c.ID).
		ShowDeleted(true).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339))

	events := make(map[string]*calendar.Event)
	err := c.list(ctx, call, func(e *calendar.Event) {
		events[e.Id] = e
	})
	if err != nil {
		return nil, fmt.Errorf("could not list events: %w", err)
	}
	return events, nil
}

// UpdateCalendar runs the writes of the plan. It stops at the first failed
// write.
func (c *GoogleCalendar) UpdateCalendar(ctx context.Context, plan Plan) error {
	startTime := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(writeLimit)

	for _, e := range plan.Insert {
		e := e
		g.Go(func() error {
			if _, err := c.Service.Events.Insert(c.ID, e).Context(ctx).Do(); err != nil {
				return fmt.Errorf("could not insert %s: %w", e.Id, err)
			}
			return nil
		})
	}
	for _, e := range plan.Update {
		e := e
		g.Go(func() error {
			if _, err := c.Service.Events.Update(c.ID, e.Id, e).Context(ctx).Do(); err != nil {
				return fmt.Errorf("could not update %s: %w", e.Id, err)
			}
			return nil
		})
	}
	for _, id := range plan.Delete {
		id := id
		g.Go(func() error {
			if err := c.Service.Events.Delete(c.ID, id).Context(ctx).Do(); err != nil {
				return fmt.Errorf("could not delete %s: %w", id, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	c.Logger.Info("updated Google Calendar",
		"inserted", len(plan.Insert),
		"updated", len(plan.Update),
		"deleted", len(plan.Delete),
		"took", time.Since(startTime))
	return nil
}

// Sync brings the calendar in line with the schedule inside the window.
func (c *GoogleCalendar) Sync(ctx context.Context, modules []stine.Module, cfg stcalendar.Config) (Plan, error) {
	if err := cfg.Validate(); err != nil {
		return Plan{}, err
	}
	have, err := c.GetEvents(ctx, cfg)
	if err != nil {
		return Plan{}, err
	}
	plan := NewPlan(EventsFromModules(modules, cfg), have)
	if plan.Empty() {
		c.Logger.Info("nothing to do, Google Calendar is up to date")
		return plan, nil
	}
	return plan, c.UpdateCalendar(ctx, plan)
}

// Clear deletes every event this tool created, leaving other events intact.
func (c *GoogleCalendar) Clear(ctx context.Context) (int, error) {
	var ids []string
	err := c.list(ctx, c.Service.Events.List(c.ID), func(e *calendar.Event) {
		if e.Status != cancelled {
			ids = append(ids, e.Id)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("could not list events: %w", err)
	}

	if err := c.UpdateCalendar(ctx, Plan{Delete: ids}); err != nil {
		return 0, err
	}
	return len(ids), nil
}
