package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/domain/queue"
	"jobfair-live/internal/domain/user"
	"jobfair-live/internal/events"
	"jobfair-live/internal/presence"
	"jobfair-live/internal/repository"
	"jobfair-live/internal/roomprovider"
	"jobfair-live/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type published struct {
	channel string
	env     events.Envelope
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []published
	failures int
	calls    int
}

func (p *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.failures > 0 {
		p.failures--
		return errors.New("redis unavailable")
	}
	var env events.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return err
	}
	p.messages = append(p.messages, published{channel: channel, env: env})
	return nil
}

// channels lists the channels an event type was delivered to.
func (p *fakePublisher) channels(eventType string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, m := range p.messages {
		if m.env.EventType == eventType {
			out = append(out, m.channel)
		}
	}
	return out
}

func (p *fakePublisher) count(eventType string) int {
	return len(p.channels(eventType))
}

type fakeStatuses struct {
	mu       sync.Mutex
	statuses map[uuid.UUID]user.InterpreterStatus
	err      error
}

func newFakeStatuses() *fakeStatuses {
	return &fakeStatuses{statuses: make(map[uuid.UUID]user.InterpreterStatus)}
}

func (f *fakeStatuses) SetStatus(_ context.Context, id uuid.UUID, status user.InterpreterStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[id] = status
	return nil
}

func (f *fakeStatuses) GetStatuses(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]user.InterpreterStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[uuid.UUID]user.InterpreterStatus)
	for _, id := range ids {
		if s, ok := f.statuses[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

// flakyRooms wraps the local provider with injectable vendor failures.
type flakyRooms struct {
	*roomprovider.LocalProvider
	createErr  error
	destroyErr error
	destroyed  []string
}

func (r *flakyRooms) CreateOrFetchRoom(ctx context.Context, name, roomType string) (roomprovider.Room, error) {
	if r.createErr != nil {
		return roomprovider.Room{}, r.createErr
	}
	return r.LocalProvider.CreateOrFetchRoom(ctx, name, roomType)
}

func (r *flakyRooms) DestroyRoom(ctx context.Context, name string) (*roomprovider.Room, error) {
	r.destroyed = append(r.destroyed, name)
	if r.destroyErr != nil {
		return nil, r.destroyErr
	}
	return r.LocalProvider.DestroyRoom(ctx, name)
}

type fakeArchiver struct {
	archived []call.Session
}

func (a *fakeArchiver) Archive(_ context.Context, s call.Session) error {
	a.archived = append(a.archived, s)
	return nil
}

type fixture struct {
	ctx          context.Context
	store        *repository.MemoryStore
	registry     *presence.Registry
	rooms        *flakyRooms
	tokens       *roomprovider.TokenIssuer
	publisher    *fakePublisher
	statuses     *fakeStatuses
	archiver     *fakeArchiver
	queue        *QueueService
	calls        *CallService
	interpreters *InterpreterService

	now       time.Time
	boothID   uuid.UUID
	eventID   uuid.UUID
	recruiter user.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:       context.Background(),
		store:     repository.NewMemoryStore(),
		registry:  presence.NewRegistry(),
		tokens:    roomprovider.NewTokenIssuer("AC-test", "SK-test", "room-secret", time.Hour),
		publisher: &fakePublisher{},
		statuses:  newFakeStatuses(),
		archiver:  &fakeArchiver{},
		now:       time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
		boothID:   uuid.New(),
		eventID:   uuid.New(),
	}
	f.rooms = &flakyRooms{LocalProvider: roomprovider.NewLocalProvider(f.tokens)}
	clock := func() time.Time { return f.now }
	l := logger.NewNop()

	notifier := NewNotifier(f.publisher, events.NewAudienceResolver(), 2, l)
	notifier.backoff = time.Millisecond
	notifier.clock = clock

	locker := NewLocalLocker()
	f.queue = NewQueueService(f.store.Queue(), locker, notifier, l)
	f.queue.clock = clock
	f.calls = NewCallService(f.store.Calls(), f.store.Users(), f.queue, f.rooms, f.registry, locker, notifier,
		CallConfig{RoomType: "group", DestroyTimeout: time.Second}, l).WithArchiver(f.archiver)
	f.calls.clock = clock
	f.interpreters = NewInterpreterService(f.store.Users(), f.store.Calls(), f.calls, f.registry, f.statuses, time.Hour, l)
	f.interpreters.clock = clock

	f.recruiter = f.addUser(t, user.RoleRecruiter, "Rita Recruiter", true, uuid.NullUUID{UUID: f.boothID, Valid: true})
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) addUser(t *testing.T, role user.Role, name string, active bool, booth uuid.NullUUID) user.User {
	t.Helper()
	u := user.User{
		ID:      uuid.New(),
		Name:    name,
		Email:   uuid.NewString() + "@example.com",
		Role:    role,
		BoothID: booth,
		EventID: uuid.NullUUID{UUID: f.eventID, Valid: true},
		Active:  active,
	}
	require.NoError(t, f.store.Users().Upsert(f.ctx, &u))
	return u
}

func (f *fixture) addSeeker(t *testing.T, name string) user.User {
	return f.addUser(t, user.RoleJobSeeker, name, true, uuid.NullUUID{})
}

func (f *fixture) addInterpreter(t *testing.T, name string, global bool) user.User {
	if global {
		return f.addUser(t, user.RoleGlobalInterpreter, name, true, uuid.NullUUID{})
	}
	return f.addUser(t, user.RoleInterpreter, name, true, uuid.NullUUID{UUID: f.boothID, Valid: true})
}

// addRecruiter adds a second recruiter working the same booth.
func (f *fixture) addRecruiter(t *testing.T, name string) user.User {
	return f.addUser(t, user.RoleRecruiter, name, true, uuid.NullUUID{UUID: f.boothID, Valid: true})
}

func (f *fixture) join(t *testing.T, seeker user.User) queue.Entry {
	t.Helper()
	e, err := f.queue.Join(f.ctx, JoinQueueInput{BoothID: f.boothID, JobSeekerID: seeker.ID, EventID: f.eventID})
	require.NoError(t, err)
	return e
}

// startCall queues a fresh job seeker and opens a call for them with the
// given recruiter.
func (f *fixture) startCall(t *testing.T, recruiter user.User) (call.Session, user.User) {
	t.Helper()
	seeker := f.addSeeker(t, "Seeker "+uuid.NewString()[:8])
	entry := f.join(t, seeker)
	access, err := f.calls.Create(f.ctx, entry.ID, recruiter.ID)
	require.NoError(t, err)
	return access.Session, seeker
}

func (f *fixture) invite(callID, requesterID, interpreterID uuid.UUID) (call.Session, error) {
	return f.calls.InviteInterpreter(f.ctx, InviteInterpreterInput{
		CallID:        callID,
		RequesterID:   requesterID,
		InterpreterID: interpreterID,
		Category:      "ASL",
	})
}

func (f *fixture) session(t *testing.T, id uuid.UUID) call.Session {
	t.Helper()
	s, err := f.store.Calls().GetByID(f.ctx, id)
	require.NoError(t, err)
	return s
}

func (f *fixture) entry(t *testing.T, id uuid.UUID) queue.Entry {
	t.Helper()
	e, err := f.store.Queue().GetByID(f.ctx, id)
	require.NoError(t, err)
	return e
}

// failingCalls rejects the next createFailures inserts.
type failingCalls struct {
	repository.CallRepository
	createFailures int
}

func (r *failingCalls) Create(ctx context.Context, s *call.Session) error {
	if r.createFailures > 0 {
		r.createFailures--
		return errors.New("insert call session: connection reset")
	}
	return r.CallRepository.Create(ctx, s)
}
