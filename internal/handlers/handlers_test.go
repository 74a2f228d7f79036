package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eventdeck/server/internal/models"
	"github.com/eventdeck/server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepo backs handler tests with the same atomic semantics the real repo
// guarantees through transactions, behind one mutex.
type stubRepo struct {
	mu        sync.Mutex
	events    map[uuid.UUID]*models.Event
	attendees map[uuid.UUID]*models.Attendee
	failWith  error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		events:    map[uuid.UUID]*models.Event{},
		attendees: map[uuid.UUID]*models.Attendee{},
	}
}

func (s *stubRepo) addEvent(title string, capacity int) *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev := &models.Event{ID: uuid.New(), Title: title, Capacity: capacity, Date: time.Now().UTC()}
	s.events[ev.ID] = ev
	return ev
}

func (s *stubRepo) CreateEvent(ctx context.Context, event *models.Event) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.events[event.ID] = event
	return event, nil
}

func (s *stubRepo) ListEvents(ctx context.Context) ([]*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []*models.Event{}
	for _, ev := range s.events {
		out = append(out, ev)
	}
	return out, nil
}

func (s *stubRepo) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	return ev, nil
}

func (s *stubRepo) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.events[id]; !ok {
		return models.ErrEventNotFound
	}
	delete(s.events, id)
	return nil
}

func (s *stubRepo) RegisterAttendee(ctx context.Context, attendee *models.Attendee) (*models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	ev, ok := s.events[attendee.EventID]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	if ev.AttendeeCount >= ev.Capacity {
		return nil, models.ErrEventFull
	}
	for _, existing := range s.attendees {
		if existing.EventID == attendee.EventID && existing.Email == attendee.Email {
			return nil, models.ErrDuplicateRegistration
		}
	}
	ev.AttendeeCount++
	s.attendees[attendee.ID] = attendee
	return attendee, nil
}

func (s *stubRepo) ListAttendees(ctx context.Context, eventID uuid.UUID) ([]*models.Attendee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	out := []*models.Attendee{}
	for _, att := range s.attendees {
		if att.EventID == eventID {
			out = append(out, att)
		}
	}
	return out, nil
}

func (s *stubRepo) DeleteAttendee(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	att, ok := s.attendees[id]
	if !ok {
		return models.ErrAttendeeNotFound
	}
	delete(s.attendees, id)
	if ev, ok := s.events[att.EventID]; ok {
		ev.AttendeeCount--
	}
	return nil
}

func newTestRouter(repo *stubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	es := services.NewEventService(repo)
	rs := services.NewRegistrationService(repo, 5*time.Second)

	r := gin.New()
	v1 := r.Group("/api/v1")
	{
		events := v1.Group("/events")
		{
			events.GET("", ListEvents(es))
			events.POST("", CreateEvent(es))
			events.DELETE("/:id", DeleteEvent(es))
			events.GET("/:id/attendees", ListAttendees(rs))
			events.POST("/:id/attendees", RegisterAttendee(rs))
		}
		v1.DELETE("/attendees/:id", DeleteAttendee(rs))
	}
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestCreateEventHandler(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodPost, "/api/v1/events",
			`{"title":"Launch Party","date":"2026-09-15T18:00:00Z","capacity":50}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var ev models.Event
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ev))
		assert.Equal(t, "Launch Party", ev.Title)
		assert.Equal(t, 0, ev.AttendeeCount)
	})

	t.Run("validation failure is 400 with error body", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodPost, "/api/v1/events",
			`{"title":"ab","date":"2026-09-15","capacity":0}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		msg := errorBody(t, w)
		assert.Contains(t, msg, "title")
		assert.Contains(t, msg, "capacity")
	})

	t.Run("explicit zero capacity reports the minimum bound", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodPost, "/api/v1/events",
			`{"title":"Launch Party","date":"2026-09-15","capacity":0}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorBody(t, w), "capacity: must be at least 1")
	})

	t.Run("missing capacity reads as required", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodPost, "/api/v1/events",
			`{"title":"Launch Party","date":"2026-09-15"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorBody(t, w), "capacity: is required")
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodPost, "/api/v1/events", `{not json`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown storage failure is a generic 500", func(t *testing.T) {
		repo := newStubRepo()
		repo.failWith = fmt.Errorf("bson marshal exploded")
		r := newTestRouter(repo)
		w := doRequest(t, r, http.MethodPost, "/api/v1/events",
			`{"title":"Launch Party","date":"2026-09-15","capacity":5}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal server error", errorBody(t, w), "internals must not leak")
	})
}

func TestListEventsHandler(t *testing.T) {
	repo := newStubRepo()
	repo.addEvent("Launch Party", 50)
	r := newTestRouter(repo)

	w := doRequest(t, r, http.MethodGet, "/api/v1/events", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var events []models.Event
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Launch Party", events[0].Title)
}

func TestDeleteEventHandler(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		repo := newStubRepo()
		ev := repo.addEvent("Launch Party", 50)
		r := newTestRouter(repo)

		w := doRequest(t, r, http.MethodDelete, "/api/v1/events/"+ev.ID.String(), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())
	})

	t.Run("missing event is 404, not 500", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodDelete, "/api/v1/events/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodDelete, "/api/v1/events/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("all-zeros id parses but is 404", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodDelete, "/api/v1/events/"+uuid.Nil.String(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, models.ErrEventNotFound.Error(), errorBody(t, w))
	})
}

func TestRegisterAttendeeHandler(t *testing.T) {
	t.Run("registered", func(t *testing.T) {
		repo := newStubRepo()
		ev := repo.addEvent("Launch Party", 2)
		r := newTestRouter(repo)

		w := doRequest(t, r, http.MethodPost, "/api/v1/events/"+ev.ID.String()+"/attendees",
			`{"name":"Ama","email":"ama@example.com"}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		var att models.Attendee
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &att))
		assert.Equal(t, ev.ID, att.EventID)
	})

	t.Run("full event is 409 with the capacity message", func(t *testing.T) {
		repo := newStubRepo()
		ev := repo.addEvent("Tiny Meetup", 1)
		r := newTestRouter(repo)

		w := doRequest(t, r, http.MethodPost, "/api/v1/events/"+ev.ID.String()+"/attendees",
			`{"name":"Ama","email":"ama@example.com"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doRequest(t, r, http.MethodPost, "/api/v1/events/"+ev.ID.String()+"/attendees",
			`{"name":"Kofi","email":"kofi@example.com"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, models.ErrEventFull.Error(), errorBody(t, w))
	})

	t.Run("duplicate email is 409 with a distinct message", func(t *testing.T) {
		repo := newStubRepo()
		ev := repo.addEvent("Launch Party", 10)
		r := newTestRouter(repo)

		w := doRequest(t, r, http.MethodPost, "/api/v1/events/"+ev.ID.String()+"/attendees",
			`{"name":"Ama","email":"ama@example.com"}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = doRequest(t, r, http.MethodPost, "/api/v1/events/"+ev.ID.String()+"/attendees",
			`{"name":"Ama","email":"ama@example.com"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, models.ErrDuplicateRegistration.Error(), errorBody(t, w))
	})

	t.Run("unknown event is 404", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodPost, "/api/v1/events/"+uuid.NewString()+"/attendees",
			`{"name":"Ama","email":"ama@example.com"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("all-zeros event id is 404", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodPost, "/api/v1/events/"+uuid.Nil.String()+"/attendees",
			`{"name":"Ama","email":"ama@example.com"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, models.ErrEventNotFound.Error(), errorBody(t, w))
	})

	t.Run("validation failure is 400", func(t *testing.T) {
		repo := newStubRepo()
		ev := repo.addEvent("Launch Party", 10)
		r := newTestRouter(repo)

		w := doRequest(t, r, http.MethodPost, "/api/v1/events/"+ev.ID.String()+"/attendees",
			`{"name":"A","email":"nope"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("storage unavailability is 503", func(t *testing.T) {
		repo := newStubRepo()
		ev := repo.addEvent("Launch Party", 10)
		repo.failWith = fmt.Errorf("%w: connection reset", models.ErrServiceUnavailable)
		r := newTestRouter(repo)

		w := doRequest(t, r, http.MethodPost, "/api/v1/events/"+ev.ID.String()+"/attendees",
			`{"name":"Ama","email":"ama@example.com"}`)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestListAttendeesHandler(t *testing.T) {
	t.Run("unknown event yields empty list", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodGet, "/api/v1/events/"+uuid.NewString()+"/attendees", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("all-zeros event id yields empty list, not an error", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodGet, "/api/v1/events/"+uuid.Nil.String()+"/attendees", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestDeleteAttendeeHandler(t *testing.T) {
	t.Run("frees the seat", func(t *testing.T) {
		repo := newStubRepo()
		ev := repo.addEvent("One Seat Only", 1)
		r := newTestRouter(repo)

		w := doRequest(t, r, http.MethodPost, "/api/v1/events/"+ev.ID.String()+"/attendees",
			`{"name":"Ama","email":"a@example.com"}`)
		require.Equal(t, http.StatusCreated, w.Code)
		var att models.Attendee
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &att))

		w = doRequest(t, r, http.MethodPost, "/api/v1/events/"+ev.ID.String()+"/attendees",
			`{"name":"Kofi","email":"b@example.com"}`)
		require.Equal(t, http.StatusConflict, w.Code)

		w = doRequest(t, r, http.MethodDelete, "/api/v1/attendees/"+att.ID.String(), "")
		require.Equal(t, http.StatusOK, w.Code)

		w = doRequest(t, r, http.MethodPost, "/api/v1/events/"+ev.ID.String()+"/attendees",
			`{"name":"Kofi","email":"b@example.com"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("missing attendee is 404", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodDelete, "/api/v1/attendees/"+uuid.NewString(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("all-zeros id is 404", func(t *testing.T) {
		r := newTestRouter(newStubRepo())
		w := doRequest(t, r, http.MethodDelete, "/api/v1/attendees/"+uuid.Nil.String(), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, models.ErrAttendeeNotFound.Error(), errorBody(t, w))
	})
}
