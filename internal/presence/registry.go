// Package presence tracks who is connected and who is inside a call. It is
// volatile by construction: nothing here survives a restart and durable call
// state always wins over it.
package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Record is an online user.
type Record struct {
	UserID       uuid.UUID     `json:"user_id"`
	ConnectionID string        `json:"connection_id,omitempty"`
	Name         string        `json:"name"`
	Role         string        `json:"role"`
	BoothID      uuid.NullUUID `json:"booth_id"`
	ConnectedAt  time.Time     `json:"connected_at"`
	LastSeen     time.Time     `json:"last_seen"`
}

// CallRecord is a user currently inside a call.
type CallRecord struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID uuid.UUID `json:"session_id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	BoothID   uuid.UUID `json:"booth_id"`
	EventID   uuid.UUID `json:"event_id"`
	JoinedAt  time.Time `json:"joined_at"`
}

// UserMeta is the display data copied into a CallRecord.
type UserMeta struct {
	Name string
	Role string
}

type Registry struct {
	mu     sync.RWMutex
	online map[uuid.UUID]Record
	inCall map[uuid.UUID]CallRecord
	now    func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		online: make(map[uuid.UUID]Record),
		inCall: make(map[uuid.UUID]CallRecord),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Connect upserts the user's record. The latest connection always wins.
func (r *Registry) Connect(rec Record) {
	now := r.now()
	if rec.ConnectedAt.IsZero() {
		rec.ConnectedAt = now
	}
	rec.LastSeen = now
	r.mu.Lock()
	r.online[rec.UserID] = rec
	r.mu.Unlock()
}

// Disconnect removes the user's presence and any call presence.
func (r *Registry) Disconnect(userID uuid.UUID) {
	r.mu.Lock()
	delete(r.online, userID)
	delete(r.inCall, userID)
	r.mu.Unlock()
}

// DisconnectConnection behaves like Disconnect but only when the stored
// record still belongs to connectionID. It reports whether anything was
// removed.
func (r *Registry) DisconnectConnection(userID uuid.UUID, connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.online[userID]
	if !ok || rec.ConnectionID != connectionID {
		return false
	}
	delete(r.online, userID)
	delete(r.inCall, userID)
	return true
}

// Touch refreshes last-seen for a connected user.
func (r *Registry) Touch(userID uuid.UUID) {
	r.mu.Lock()
	if rec, ok := r.online[userID]; ok {
		rec.LastSeen = r.now()
		r.online[userID] = rec
	}
	r.mu.Unlock()
}

func (r *Registry) JoinCall(userID, sessionID, boothID, eventID uuid.UUID, meta UserMeta) {
	r.mu.Lock()
	r.inCall[userID] = CallRecord{
		UserID:    userID,
		SessionID: sessionID,
		Name:      meta.Name,
		Role:      meta.Role,
		BoothID:   boothID,
		EventID:   eventID,
		JoinedAt:  r.now(),
	}
	r.mu.Unlock()
}

func (r *Registry) LeaveCall(userID uuid.UUID) {
	r.mu.Lock()
	delete(r.inCall, userID)
	r.mu.Unlock()
}

// LeaveSession removes the user's call record only if it points at
// sessionID, so a late leave from an old call cannot drop a newer one.
func (r *Registry) LeaveSession(userID, sessionID uuid.UUID) {
	r.mu.Lock()
	if rec, ok := r.inCall[userID]; ok && rec.SessionID == sessionID {
		delete(r.inCall, userID)
	}
	r.mu.Unlock()
}

// ClearSession drops every call record of an ended session.
func (r *Registry) ClearSession(sessionID uuid.UUID) {
	r.mu.Lock()
	for id, rec := range r.inCall {
		if rec.SessionID == sessionID {
			delete(r.inCall, id)
		}
	}
	r.mu.Unlock()
}

func (r *Registry) Get(userID uuid.UUID) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.online[userID]
	return rec, ok
}

func (r *Registry) IsOnline(userID uuid.UUID) bool {
	_, ok := r.Get(userID)
	return ok
}

func (r *Registry) CallOf(userID uuid.UUID) (CallRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.inCall[userID]
	return rec, ok
}

func (r *Registry) ListOnline() []Record {
	r.mu.RLock()
	out := make([]Record, 0, len(r.online))
	for _, rec := range r.online {
		out = append(out, rec)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectedAt.Before(out[j].ConnectedAt) })
	return out
}

func (r *Registry) ListCallParticipants() []CallRecord {
	return r.callRecords(func(CallRecord) bool { return true })
}

// Roster lists the users currently inside sessionID.
func (r *Registry) Roster(sessionID uuid.UUID) []CallRecord {
	return r.callRecords(func(rec CallRecord) bool { return rec.SessionID == sessionID })
}

func (r *Registry) callRecords(match func(CallRecord) bool) []CallRecord {
	r.mu.RLock()
	out := make([]CallRecord, 0, len(r.inCall))
	for _, rec := range r.inCall {
		if match(rec) {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out
}

// Close empties the registry at shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	r.online = make(map[uuid.UUID]Record)
	r.inCall = make(map[uuid.UUID]CallRecord)
	r.mu.Unlock()
}
