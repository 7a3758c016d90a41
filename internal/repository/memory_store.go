package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/domain/queue"
	"jobfair-live/internal/domain/user"
	jobfair_errors "jobfair-live/pkg/errors"

	"github.com/google/uuid"
)

// MemoryStore keeps users, queue entries and call sessions in process
// memory. It backs STORE_DRIVER=memory and the service tests. Reads return
// copies so callers never alias stored slices.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]user.User
	entries  map[uuid.UUID]queue.Entry
	sessions map[uuid.UUID]call.Session
	msgSeq   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]user.User),
		entries:  make(map[uuid.UUID]queue.Entry),
		sessions: make(map[uuid.UUID]call.Session),
	}
}

// Users returns the store as a UserRepository.
func (m *MemoryStore) Users() UserRepository { return memoryUsers{m} }

// Queue returns the store as a QueueRepository.
func (m *MemoryStore) Queue() QueueRepository { return memoryQueue{m} }

// Calls returns the store as a CallRepository.
func (m *MemoryStore) Calls() CallRepository { return memoryCalls{m} }

type memoryUsers struct{ m *MemoryStore }

func (r memoryUsers) Upsert(_ context.Context, u *user.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.users[u.ID] = *u
	return nil
}

func (r memoryUsers) GetUserByID(_ context.Context, id uuid.UUID) (user.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	u, ok := r.m.users[id]
	if !ok {
		return user.User{}, jobfair_errors.ErrNotFound
	}
	return u, nil
}

func (r memoryUsers) ListInterpreters(_ context.Context, boothID uuid.UUID) ([]user.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var booth, global []user.User
	for _, u := range r.m.users {
		if !u.Active {
			continue
		}
		switch u.Role {
		case user.RoleInterpreter:
			if u.BoothID.Valid && u.BoothID.UUID == boothID {
				booth = append(booth, u)
			}
		case user.RoleGlobalInterpreter:
			global = append(global, u)
		}
	}
	byName := func(list []user.User) {
		sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	}
	byName(booth)
	byName(global)
	return append(booth, global...), nil
}

type memoryQueue struct{ m *MemoryStore }

func (r memoryQueue) Create(_ context.Context, e *queue.Entry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, other := range r.m.entries {
		if other.JobSeekerID == e.JobSeekerID && other.BoothID == e.BoothID && other.Status.IsActive() {
			return jobfair_errors.ErrDuplicateActiveEntry
		}
	}
	r.m.entries[e.ID] = *e
	return nil
}

func (r memoryQueue) GetByID(_ context.Context, id uuid.UUID) (queue.Entry, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	e, ok := r.m.entries[id]
	if !ok {
		return queue.Entry{}, jobfair_errors.ErrNotFound
	}
	return e, nil
}

func (r memoryQueue) FindActive(_ context.Context, jobSeekerID, boothID uuid.UUID) (queue.Entry, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, e := range r.m.entries {
		if e.JobSeekerID == jobSeekerID && e.BoothID == boothID && e.Status.IsActive() {
			return e, nil
		}
	}
	return queue.Entry{}, jobfair_errors.ErrNotFound
}

func (r memoryQueue) MaxWaitingPosition(_ context.Context, boothID uuid.UUID) (int, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	max := 0
	for _, e := range r.m.entries {
		if e.BoothID == boothID && e.Status == queue.StatusWaiting && e.Position > max {
			max = e.Position
		}
	}
	return max, nil
}

func (r memoryQueue) list(match func(queue.Entry) bool) []queue.Entry {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []queue.Entry
	for _, e := range r.m.entries {
		if match(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].JoinedAt.Before(out[j].JoinedAt)
	})
	return out
}

func (r memoryQueue) ListActiveByBooth(_ context.Context, boothID uuid.UUID) ([]queue.Entry, error) {
	return r.list(func(e queue.Entry) bool { return e.BoothID == boothID && e.Status.IsActive() }), nil
}

func (r memoryQueue) ListActiveByJobSeeker(_ context.Context, jobSeekerID uuid.UUID) ([]queue.Entry, error) {
	return r.list(func(e queue.Entry) bool { return e.JobSeekerID == jobSeekerID && e.Status.IsActive() }), nil
}

func (r memoryQueue) UpdateStatus(_ context.Context, id uuid.UUID, from, to queue.Status, at time.Time) (queue.Entry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	e, ok := r.m.entries[id]
	if !ok {
		return queue.Entry{}, jobfair_errors.ErrNotFound
	}
	if e.Status != from {
		return e, fmt.Errorf("%w: queue entry is %s, expected %s", jobfair_errors.ErrInvalidTransition, e.Status, from)
	}
	e.Status = to
	e.UpdatedAt = at
	r.m.entries[id] = e
	return e, nil
}

type memoryCalls struct{ m *MemoryStore }

func cloneSession(s call.Session) call.Session {
	s.Interpreters = append([]call.InterpreterParticipation(nil), s.Interpreters...)
	s.Messages = append([]call.ChatMessage(nil), s.Messages...)
	return s
}

func (r memoryCalls) Create(_ context.Context, s *call.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, other := range r.m.sessions {
		if other.QueueEntryID == s.QueueEntryID && other.IsActive() {
			return fmt.Errorf("%w: queue entry %s already has an active call", jobfair_errors.ErrInvalidTransition, s.QueueEntryID)
		}
	}
	r.m.sessions[s.ID] = cloneSession(*s)
	return nil
}

func (r memoryCalls) GetByID(_ context.Context, id uuid.UUID) (call.Session, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.sessions[id]
	if !ok {
		return call.Session{}, jobfair_errors.ErrNotFound
	}
	return cloneSession(s), nil
}

func (r memoryCalls) list(match func(call.Session) bool) []call.Session {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []call.Session
	for _, s := range r.m.sessions {
		if match(s) {
			out = append(out, cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

func (r memoryCalls) FindActiveByQueueEntry(_ context.Context, queueEntryID uuid.UUID) (call.Session, error) {
	found := r.list(func(s call.Session) bool { return s.QueueEntryID == queueEntryID && s.IsActive() })
	if len(found) == 0 {
		return call.Session{}, jobfair_errors.ErrNotFound
	}
	return found[0], nil
}

func (r memoryCalls) ListByQueueEntry(_ context.Context, queueEntryID uuid.UUID) ([]call.Session, error) {
	return r.list(func(s call.Session) bool { return s.QueueEntryID == queueEntryID }), nil
}

func (r memoryCalls) ListActiveByUser(_ context.Context, userID uuid.UUID) ([]call.Session, error) {
	return r.list(func(s call.Session) bool {
		return s.IsActive() && (s.RecruiterID == userID || s.JobSeekerID == userID || s.HoldsInterpreter(userID))
	}), nil
}

func (r memoryCalls) ListActiveByInterpreter(_ context.Context, interpreterID uuid.UUID) ([]call.Session, error) {
	return r.list(func(s call.Session) bool { return s.IsActive() && s.HoldsInterpreter(interpreterID) }), nil
}

func (r memoryCalls) ListActive(_ context.Context) ([]call.Session, error) {
	return r.list(func(s call.Session) bool { return s.IsActive() }), nil
}

func (r memoryCalls) ListActiveStartedBefore(_ context.Context, cutoff time.Time) ([]call.Session, error) {
	return r.list(func(s call.Session) bool { return s.IsActive() && s.StartedAt.Before(cutoff) }), nil
}

func (r memoryCalls) MarkEnded(_ context.Context, ended call.Session) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[ended.ID]
	if !ok {
		return false, jobfair_errors.ErrNotFound
	}
	if !s.IsActive() {
		return false, nil
	}
	s.Status = call.StatusEnded
	s.EndReason = ended.EndReason
	s.EndedAt = ended.EndedAt
	s.DurationSeconds = ended.DurationSeconds
	s.Interpreters = append([]call.InterpreterParticipation(nil), s.Interpreters...)
	for i := range s.Interpreters {
		if s.Interpreters[i].Status == call.ParticipationJoined {
			s.Interpreters[i].Status = call.ParticipationLeft
			s.Interpreters[i].LeftAt = ended.EndedAt
		}
	}
	r.m.sessions[s.ID] = s
	return true, nil
}

func (r memoryCalls) SaveParticipation(_ context.Context, p call.InterpreterParticipation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[p.SessionID]
	if !ok {
		return jobfair_errors.ErrNotFound
	}
	s.Interpreters = append([]call.InterpreterParticipation(nil), s.Interpreters...)
	for i := range s.Interpreters {
		if s.Interpreters[i].InterpreterID == p.InterpreterID {
			s.Interpreters[i] = p
			r.m.sessions[s.ID] = s
			return nil
		}
	}
	s.Interpreters = append(s.Interpreters, p)
	r.m.sessions[s.ID] = s
	return nil
}

func (r memoryCalls) AppendMessage(_ context.Context, msg *call.ChatMessage) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.sessions[msg.SessionID]
	if !ok {
		return jobfair_errors.ErrNotFound
	}
	r.m.msgSeq++
	msg.ID = r.m.msgSeq
	s.Messages = append(append([]call.ChatMessage(nil), s.Messages...), *msg)
	r.m.sessions[s.ID] = s
	return nil
}
