package client

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const eventsKey = "events"

func attendeesKey(eventID string) string {
	return "attendees/" + eventID
}

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a user-visible message raised by mutations, standing in for the
// dashboard's toast layer.
type Notice struct {
	Level   NoticeLevel
	Message string
}

type entry struct {
	data  interface{}
	stale bool
}

// Cache mirrors server state for one client session. Reads are deduplicated
// per key; event creation applies an optimistic write with snapshot/rollback.
// It has an explicit lifecycle: build one with NewCache per session and drop
// it when the session ends.
type Cache struct {
	api      *Client
	onNotice func(Notice)

	mu       sync.Mutex
	entries  map[string]*entry
	inflight map[string]context.CancelFunc
	group    singleflight.Group

	// createMu serializes optimistic event creation so the rollback of one
	// mutation can never interleave with the optimistic apply of another.
	createMu sync.Mutex
}

// NewCache builds a session cache over the given API client. onNotice may be
// nil when the caller has no notification surface.
func NewCache(api *Client, onNotice func(Notice)) *Cache {
	return &Cache{
		api:      api,
		onNotice: onNotice,
		entries:  map[string]*entry{},
		inflight: map[string]context.CancelFunc{},
	}
}

func (c *Cache) notify(n Notice) {
	if c.onNotice != nil {
		c.onNotice(n)
	}
}

// Events returns the cached event list when fresh, otherwise fetches it.
// Concurrent callers share a single fetch.
func (c *Cache) Events(ctx context.Context) ([]Event, error) {
	c.mu.Lock()
	if e, ok := c.entries[eventsKey]; ok && !e.stale {
		events := cloneEvents(e.data.([]Event))
		c.mu.Unlock()
		return events, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(eventsKey, func() (interface{}, error) {
		return c.fetchEvents(ctx)
	})
	if err != nil {
		return nil, err
	}
	return cloneEvents(v.([]Event)), nil
}

func (c *Cache) fetchEvents(ctx context.Context) ([]Event, error) {
	fctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.inflight[eventsKey] = cancel
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.inflight, eventsKey)
		c.mu.Unlock()
		cancel()
	}()

	events, err := c.api.ListEvents(fctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// An optimistic write may have cancelled this fetch after the response
	// arrived but before we got the lock; the write holds the mutex while
	// cancelling, so checking here is race-free. Dropping the result keeps
	// the provisional entry intact.
	if fctx.Err() != nil {
		c.mu.Unlock()
		return nil, fctx.Err()
	}
	c.entries[eventsKey] = &entry{data: events}
	c.mu.Unlock()
	return events, nil
}

// Attendees returns the cached attendee list for the event when fresh,
// otherwise fetches it. Concurrent callers share a single fetch.
func (c *Cache) Attendees(ctx context.Context, eventID string) ([]Attendee, error) {
	key := attendeesKey(eventID)

	c.mu.Lock()
	if e, ok := c.entries[key]; ok && !e.stale {
		attendees := cloneAttendees(e.data.([]Attendee))
		c.mu.Unlock()
		return attendees, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		fctx, cancel := context.WithCancel(ctx)
		c.mu.Lock()
		c.inflight[key] = cancel
		c.mu.Unlock()
		defer func() {
			c.mu.Lock()
			delete(c.inflight, key)
			c.mu.Unlock()
			cancel()
		}()

		attendees, err := c.api.ListAttendees(fctx, eventID)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// Same late-cancellation window as fetchEvents: a result whose fetch
		// was cancelled must not land in the cache.
		if fctx.Err() != nil {
			c.mu.Unlock()
			return nil, fctx.Err()
		}
		c.entries[key] = &entry{data: attendees}
		c.mu.Unlock()
		return attendees, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneAttendees(v.([]Attendee)), nil
}

// CreateEvent applies an optimistic write: the provisional event with a
// temporary id and zero attendees is visible via Events before the server
// answers. On success the provisional entry is replaced by the server's
// event and the list is marked stale for a fresh fetch; on failure the
// pre-mutation snapshot is restored exactly and an error notice fires.
func (c *Cache) CreateEvent(ctx context.Context, input CreateEventInput) (*Event, error) {
	c.createMu.Lock()
	defer c.createMu.Unlock()

	provisional := Event{
		ID:            "tmp-" + uuid.NewString(),
		Title:         input.Title,
		Description:   input.Description,
		Date:          parseOptimisticDate(input.Date),
		Capacity:      input.Capacity,
		AttendeeCount: 0,
	}

	c.mu.Lock()
	// Cancel conflicting in-flight reads before the optimistic apply so a
	// late fetch result cannot clobber the provisional list.
	if cancel, ok := c.inflight[eventsKey]; ok {
		cancel()
		delete(c.inflight, eventsKey)
	}
	c.group.Forget(eventsKey)

	prev, hadPrev := c.entries[eventsKey]
	var base []Event
	if hadPrev {
		base = cloneEvents(prev.data.([]Event))
	}
	c.entries[eventsKey] = &entry{data: append(base, provisional)}
	c.mu.Unlock()

	created, err := c.api.CreateEvent(ctx, input)

	c.mu.Lock()
	if err != nil {
		// Roll back to the exact pre-mutation state.
		if hadPrev {
			c.entries[eventsKey] = prev
		} else {
			delete(c.entries, eventsKey)
		}
		c.mu.Unlock()
		c.notify(Notice{Level: NoticeError, Message: "Failed to create event."})
		return nil, err
	}

	// Swap the provisional entry for the server's record and mark the list
	// stale so the next read reconciles against the server.
	list := cloneEvents(base)
	list = append(list, *created)
	c.entries[eventsKey] = &entry{data: list, stale: true}
	c.mu.Unlock()

	c.notify(Notice{Level: NoticeInfo, Message: "Event created successfully!"})
	return created, nil
}

// Register registers an attendee and, on success, invalidates both the
// event's attendee list and the event list (the attendee count changed).
func (c *Cache) Register(ctx context.Context, eventID string, input RegisterInput) (*Attendee, error) {
	attendee, err := c.api.Register(ctx, eventID, input)
	if err != nil {
		c.notify(Notice{Level: NoticeError, Message: "Registration failed."})
		return nil, err
	}

	c.Invalidate(attendeesKey(eventID))
	c.Invalidate(eventsKey)
	c.notify(Notice{Level: NoticeInfo, Message: "Attendee registered successfully!"})
	return attendee, nil
}

// DeleteAttendee removes an attendee and invalidates the same keys as
// Register for the same reason.
func (c *Cache) DeleteAttendee(ctx context.Context, eventID, attendeeID string) error {
	if err := c.api.DeleteAttendee(ctx, attendeeID); err != nil {
		c.notify(Notice{Level: NoticeError, Message: "Failed to remove attendee."})
		return err
	}

	c.Invalidate(attendeesKey(eventID))
	c.Invalidate(eventsKey)
	return nil
}

// Invalidate marks a key stale; the next read refetches it.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.stale = true
	}
}

func cloneEvents(in []Event) []Event {
	out := make([]Event, len(in))
	copy(out, in)
	return out
}

func cloneAttendees(in []Attendee) []Attendee {
	out := make([]Attendee, len(in))
	copy(out, in)
	return out
}

var optimisticDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseOptimisticDate is best-effort: the provisional entry only needs a
// plausible date for display, the server remains the authority.
func parseOptimisticDate(s string) time.Time {
	for _, layout := range optimisticDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
