package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/domain/queue"
	"jobfair-live/internal/domain/user"
	"jobfair-live/internal/events"
	"jobfair-live/internal/metrics"
	"jobfair-live/internal/presence"
	"jobfair-live/internal/repository"
	"jobfair-live/internal/roomprovider"
	jobfair_errors "jobfair-live/pkg/errors"
	"jobfair-live/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMessageLength = 2000

// TranscriptArchiver stores the chat log of an ended call.
type TranscriptArchiver interface {
	Archive(ctx context.Context, s call.Session) error
}

type CallConfig struct {
	RoomType       string
	DestroyTimeout time.Duration
}

// CallService owns the life of a video-call session: the external room, the
// participant roster and the chat log.
type CallService struct {
	calls    repository.CallRepository
	users    repository.UserRepository
	queue    *QueueService
	rooms    roomprovider.Provider
	registry *presence.Registry
	locker   Locker
	notifier *Notifier
	archiver TranscriptArchiver
	cfg      CallConfig
	clock    func() time.Time
	log      *logger.Logger

	lastStamp atomic.Int64
}

func NewCallService(
	calls repository.CallRepository,
	users repository.UserRepository,
	queueSvc *QueueService,
	rooms roomprovider.Provider,
	registry *presence.Registry,
	locker Locker,
	notifier *Notifier,
	cfg CallConfig,
	l *logger.Logger,
) *CallService {
	if locker == nil {
		locker = NewLocalLocker()
	}
	if cfg.RoomType == "" {
		cfg.RoomType = "group"
	}
	if cfg.DestroyTimeout <= 0 {
		cfg.DestroyTimeout = 5 * time.Second
	}
	if l == nil {
		l = logger.GetGlobalLogger()
	}
	return &CallService{
		calls:    calls,
		users:    users,
		queue:    queueSvc,
		rooms:    rooms,
		registry: registry,
		locker:   locker,
		notifier: notifier,
		cfg:      cfg,
		clock:    func() time.Time { return time.Now().UTC() },
		log:      l.Named("call"),
	}
}

// WithArchiver uploads the transcript of every ended call.
func (s *CallService) WithArchiver(a TranscriptArchiver) *CallService {
	s.archiver = a
	return s
}

// RoomAccess is what a participant needs to enter the room.
type RoomAccess struct {
	Session     call.Session  `json:"session"`
	Role        call.RoleKind `json:"role"`
	RoomName    string        `json:"room_name"`
	Identity    string        `json:"identity"`
	AccessToken string        `json:"access_token"`
}

// Create opens a call for a waiting or invited queue entry. An active call
// for the same entry is ended first, which is how a recruiter restarts a
// broken call.
func (s *CallService) Create(ctx context.Context, queueEntryID, recruiterID uuid.UUID) (access RoomAccess, err error) {
	defer func() { metrics.CallOperations.WithLabelValues("create", metrics.Outcome(err)).Inc() }()

	recruiter, err := s.users.GetUserByID(ctx, recruiterID)
	if err != nil {
		if errors.Is(err, jobfair_errors.ErrNotFound) {
			return RoomAccess{}, fmt.Errorf("%w: unknown recruiter", jobfair_errors.ErrUnauthorized)
		}
		return RoomAccess{}, err
	}
	if !recruiter.Active || (recruiter.Role != user.RoleRecruiter && recruiter.Role != user.RoleBoothAdmin) {
		return RoomAccess{}, fmt.Errorf("%w: only booth recruiters open calls", jobfair_errors.ErrUnauthorized)
	}

	unlock, err := s.locker.Lock(ctx, callCreateLockKey(queueEntryID))
	if err != nil {
		return RoomAccess{}, err
	}
	defer unlock()

	entry, err := s.queue.Get(ctx, queueEntryID)
	if err != nil {
		return RoomAccess{}, err
	}
	if !recruiter.BoothID.Valid || recruiter.BoothID.UUID != entry.BoothID {
		return RoomAccess{}, fmt.Errorf("%w: entry belongs to another booth", jobfair_errors.ErrUnauthorized)
	}

	previous, err := s.calls.FindActiveByQueueEntry(ctx, entry.ID)
	hasPrevious := err == nil
	if err != nil && !errors.Is(err, jobfair_errors.ErrNotFound) {
		return RoomAccess{}, err
	}
	switch {
	case entry.Status == queue.StatusWaiting, entry.Status == queue.StatusInvited:
	case entry.Status == queue.StatusInMeeting && hasPrevious:
	default:
		return RoomAccess{}, fmt.Errorf("%w: queue entry is %s", jobfair_errors.ErrInvalidTransition, entry.Status)
	}

	now := s.clock()
	roomName := call.RoomName(entry.BoothID, entry.JobSeekerID, s.attemptStamp())
	room, err := s.rooms.CreateOrFetchRoom(ctx, roomName, s.cfg.RoomType)
	if err != nil {
		metrics.RoomProviderErrors.WithLabelValues("create").Inc()
		s.log.WithContext(ctx).Error("call.Create: room provider", zap.String("room", roomName), zap.Error(err))
		return RoomAccess{}, fmt.Errorf("%w: create room: %v", jobfair_errors.ErrTransportFailure, err)
	}

	if hasPrevious {
		if _, err := s.forceEnd(ctx, previous.ID, call.EndReasonSuperseded, false); err != nil {
			s.destroyRoom(ctx, roomName)
			return RoomAccess{}, err
		}
	}

	session := call.Session{
		ID:           uuid.New(),
		RoomName:     roomName,
		RoomSID:      room.SID,
		EventID:      entry.EventID,
		BoothID:      entry.BoothID,
		RecruiterID:  recruiter.ID,
		JobSeekerID:  entry.JobSeekerID,
		QueueEntryID: entry.ID,
		Status:       call.StatusActive,
		StartedAt:    now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.calls.Create(ctx, &session); err != nil {
		s.destroyRoom(ctx, roomName)
		if hasPrevious {
			// The superseded call is already ended, so the entry has no
			// call left to hold it in the meeting.
			s.releaseEntry(ctx, previous.ID, entry.ID)
		}
		return RoomAccess{}, err
	}
	metrics.ActiveCalls.Inc()

	if entry.Status != queue.StatusInMeeting {
		if _, err := s.queue.MarkInMeeting(ctx, entry.ID); err != nil {
			s.log.WithContext(ctx).Warn("call.Create: queue entry moved during setup",
				zap.String("entry_id", entry.ID.String()), zap.Error(err))
			if _, endErr := s.forceEnd(ctx, session.ID, call.EndReasonAborted, false); endErr != nil {
				s.log.WithContext(ctx).Error("call.Create: abort session", zap.Error(endErr))
			}
			return RoomAccess{}, err
		}
	}

	identity, token, err := s.credential(call.RoleRecruiter, recruiter.ID, roomName)
	if err != nil {
		return RoomAccess{}, err
	}
	s.registry.JoinCall(recruiter.ID, session.ID, session.BoothID, session.EventID,
		presence.UserMeta{Name: recruiter.Name, Role: string(call.RoleRecruiter)})

	s.log.WithContext(ctx).Info("call created",
		zap.String("call_id", session.ID.String()),
		zap.String("room", roomName),
		zap.String("entry_id", entry.ID.String()),
		zap.Bool("superseded_previous", hasPrevious))
	s.notifier.Notify(ctx, events.NewCallInvitation(session))

	return RoomAccess{
		Session:     session,
		Role:        call.RoleRecruiter,
		RoomName:    roomName,
		Identity:    identity,
		AccessToken: token,
	}, nil
}

// Join admits the recruiter, the job seeker or an invited interpreter and
// issues a fresh credential on every attempt.
func (s *CallService) Join(ctx context.Context, callID, userID uuid.UUID) (access RoomAccess, err error) {
	defer func() { metrics.CallOperations.WithLabelValues("join", metrics.Outcome(err)).Inc() }()

	unlock, err := s.locker.Lock(ctx, callLockKey(callID))
	if err != nil {
		return RoomAccess{}, err
	}
	defer unlock()

	session, err := s.activeSession(ctx, callID)
	if err != nil {
		return RoomAccess{}, err
	}

	role := session.ResolveRole(userID)
	if !role.IsParticipant() {
		return RoomAccess{}, fmt.Errorf("%w: not a participant of this call", jobfair_errors.ErrUnauthorized)
	}
	if role.Kind == call.RoleInterpreter {
		if role.Participation.Status.IsTerminal() {
			return RoomAccess{}, fmt.Errorf("%w: invitation is %s", jobfair_errors.ErrUnauthorized, role.Participation.Status)
		}
		changed, err := role.Participation.Transition(call.ParticipationJoined, s.clock())
		if err != nil {
			return RoomAccess{}, err
		}
		if changed {
			if err := s.calls.SaveParticipation(ctx, *role.Participation); err != nil {
				return RoomAccess{}, err
			}
		}
	}

	identity, token, err := s.credential(role.Kind, userID, session.RoomName)
	if err != nil {
		return RoomAccess{}, err
	}

	s.registry.JoinCall(userID, session.ID, session.BoothID, session.EventID,
		presence.UserMeta{Name: s.displayName(ctx, userID), Role: role.String()})
	s.log.WithContext(ctx).Info("participant joined",
		zap.String("call_id", session.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("role", role.String()))
	s.notifier.Notify(ctx, events.NewParticipantJoined(session, userID, role.Kind))

	return RoomAccess{
		Session:     session,
		Role:        role.Kind,
		RoomName:    session.RoomName,
		Identity:    identity,
		AccessToken: token,
	}, nil
}

type InviteInterpreterInput struct {
	CallID        uuid.UUID
	RequesterID   uuid.UUID
	InterpreterID uuid.UUID
	Category      string
}

// InviteInterpreter asks an interpreter into the call. An interpreter serves
// one call at a time across the whole session set.
func (s *CallService) InviteInterpreter(ctx context.Context, in InviteInterpreterInput) (session call.Session, err error) {
	defer func() { metrics.CallOperations.WithLabelValues("invite_interpreter", metrics.Outcome(err)).Inc() }()

	unlockInterpreter, err := s.locker.Lock(ctx, interpreterLockKey(in.InterpreterID))
	if err != nil {
		return call.Session{}, err
	}
	defer unlockInterpreter()
	unlockCall, err := s.locker.Lock(ctx, callLockKey(in.CallID))
	if err != nil {
		return call.Session{}, err
	}
	defer unlockCall()

	session, err = s.activeSession(ctx, in.CallID)
	if err != nil {
		return call.Session{}, err
	}
	if in.RequesterID != session.RecruiterID {
		return call.Session{}, fmt.Errorf("%w: only the call's recruiter invites interpreters", jobfair_errors.ErrUnauthorized)
	}

	interpreter, err := s.users.GetUserByID(ctx, in.InterpreterID)
	if err != nil {
		return call.Session{}, err
	}
	scope, ok := interpreter.InterpreterScope()
	if !ok {
		return call.Session{}, fmt.Errorf("%w: no active interpreter %s", jobfair_errors.ErrNotFound, in.InterpreterID)
	}
	if scope == user.ScopeBooth && (!interpreter.BoothID.Valid || interpreter.BoothID.UUID != session.BoothID) {
		return call.Session{}, fmt.Errorf("%w: interpreter %s is not assigned to this booth", jobfair_errors.ErrNotFound, in.InterpreterID)
	}

	elsewhere, err := s.calls.ListActiveByInterpreter(ctx, in.InterpreterID)
	if err != nil {
		return call.Session{}, err
	}
	for _, other := range elsewhere {
		if other.ID != session.ID {
			return call.Session{}, fmt.Errorf("%w: interpreter is in call %s", jobfair_errors.ErrAlreadyBusy, other.ID)
		}
	}

	now := s.clock()
	p, exists := session.Participation(in.InterpreterID)
	if exists {
		if _, err := p.Transition(call.ParticipationInvited, now); err != nil {
			return call.Session{}, err
		}
		p.Category = in.Category
	} else {
		session.Interpreters = append(session.Interpreters, call.InterpreterParticipation{
			SessionID:     session.ID,
			InterpreterID: in.InterpreterID,
			Category:      in.Category,
			Status:        call.ParticipationInvited,
			InvitedAt:     now,
		})
		p = &session.Interpreters[len(session.Interpreters)-1]
	}

	_, token, err := s.credential(call.RoleInterpreter, in.InterpreterID, session.RoomName)
	if err != nil {
		return call.Session{}, err
	}
	if err := s.calls.SaveParticipation(ctx, *p); err != nil {
		return call.Session{}, err
	}

	note := call.ChatMessage{
		SessionID:  session.ID,
		SenderRole: call.SystemSender,
		Text:       invitationNote(interpreter.Name, in.Category),
		CreatedAt:  now,
	}
	if err := s.calls.AppendMessage(ctx, &note); err != nil {
		return call.Session{}, err
	}
	session.Messages = append(session.Messages, note)

	s.log.WithContext(ctx).Info("interpreter invited",
		zap.String("call_id", session.ID.String()),
		zap.String("interpreter_id", in.InterpreterID.String()),
		zap.Bool("reinvited", exists))
	s.notifier.Notify(ctx, events.NewInterpreterInvited(session, in.InterpreterID, in.Category, token))
	s.notifier.Notify(ctx, events.NewMessageAdded(session, note))
	return session, nil
}

func invitationNote(name, category string) string {
	if name == "" {
		name = "An interpreter"
	}
	if category == "" {
		return name + " was invited to interpret"
	}
	return fmt.Sprintf("%s was invited to interpret (%s)", name, category)
}

// Decline turns down a pending interpreter invitation.
func (s *CallService) Decline(ctx context.Context, callID, interpreterID uuid.UUID) (session call.Session, err error) {
	defer func() { metrics.CallOperations.WithLabelValues("decline", metrics.Outcome(err)).Inc() }()

	unlock, err := s.locker.Lock(ctx, callLockKey(callID))
	if err != nil {
		return call.Session{}, err
	}
	defer unlock()

	session, err = s.activeSession(ctx, callID)
	if err != nil {
		return call.Session{}, err
	}
	role := session.ResolveRole(interpreterID)
	if role.Kind != call.RoleInterpreter {
		return call.Session{}, fmt.Errorf("%w: no invitation for this user", jobfair_errors.ErrUnauthorized)
	}
	changed, err := role.Participation.Transition(call.ParticipationDeclined, s.clock())
	if err != nil || !changed {
		return session, err
	}
	if err := s.calls.SaveParticipation(ctx, *role.Participation); err != nil {
		return call.Session{}, err
	}

	s.notifier.Notify(ctx, events.NewInvitationDeclined(session, interpreterID))
	return session, nil
}

// Leave removes one participant while the call goes on for the others. The
// recruiter owns the session and has to end it instead. Leaving twice, or
// leaving an ended call, is a no-op.
func (s *CallService) Leave(ctx context.Context, callID, userID uuid.UUID) (session call.Session, err error) {
	defer func() { metrics.CallOperations.WithLabelValues("leave", metrics.Outcome(err)).Inc() }()

	unlock, err := s.locker.Lock(ctx, callLockKey(callID))
	if err != nil {
		return call.Session{}, err
	}
	defer unlock()

	session, err = s.calls.GetByID(ctx, callID)
	if err != nil {
		return call.Session{}, err
	}
	role := session.ResolveRole(userID)
	if !role.IsParticipant() {
		return call.Session{}, fmt.Errorf("%w: not a participant of this call", jobfair_errors.ErrUnauthorized)
	}
	if !session.IsActive() {
		s.registry.LeaveSession(userID, session.ID)
		return session, nil
	}
	if role.Kind == call.RoleRecruiter {
		return call.Session{}, fmt.Errorf("%w: the recruiter ends the call instead of leaving", jobfair_errors.ErrInvalidTransition)
	}
	s.registry.LeaveSession(userID, session.ID)

	changed := false
	switch role.Kind {
	case call.RoleInterpreter:
		changed, err = role.Participation.Transition(call.ParticipationLeft, s.clock())
		if err != nil {
			return call.Session{}, err
		}
		if changed {
			if err := s.calls.SaveParticipation(ctx, *role.Participation); err != nil {
				return call.Session{}, err
			}
		}
	case call.RoleJobSeeker:
		before, err := s.queue.Get(ctx, session.QueueEntryID)
		if err != nil {
			return call.Session{}, err
		}
		after, err := s.queue.Leave(ctx, session.QueueEntryID)
		if err != nil {
			return call.Session{}, err
		}
		changed = before.Status != after.Status
	}

	if changed {
		s.log.WithContext(ctx).Info("participant left",
			zap.String("call_id", session.ID.String()),
			zap.String("user_id", userID.String()),
			zap.String("role", role.String()))
		s.notifier.Notify(ctx, events.NewParticipantLeft(session, userID, role.Kind))
	}
	return session, nil
}

// End terminates the call for everyone. Only the recruiter or a privileged
// operator may end it.
func (s *CallService) End(ctx context.Context, callID, requesterID uuid.UUID, requesterRole user.Role) (session call.Session, err error) {
	defer func() { metrics.CallOperations.WithLabelValues("end", metrics.Outcome(err)).Inc() }()

	current, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		return call.Session{}, err
	}
	reason := call.EndReasonRecruiter
	switch {
	case requesterID == current.RecruiterID:
	case requesterRole.IsPrivileged():
		reason = call.EndReasonOperator
	default:
		return call.Session{}, fmt.Errorf("%w: only the recruiter or an operator ends a call", jobfair_errors.ErrUnauthorized)
	}
	return s.forceEnd(ctx, callID, reason, true)
}

// ForceEnd ends a call without an authorization check. Used by the
// staleness sweep.
func (s *CallService) ForceEnd(ctx context.Context, callID uuid.UUID, reason call.EndReason) (call.Session, error) {
	return s.forceEnd(ctx, callID, reason, true)
}

func (s *CallService) forceEnd(ctx context.Context, callID uuid.UUID, reason call.EndReason, releaseEntry bool) (call.Session, error) {
	unlock, err := s.locker.Lock(ctx, callLockKey(callID))
	if err != nil {
		return call.Session{}, err
	}
	defer unlock()

	session, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		return call.Session{}, err
	}
	if !session.IsActive() {
		return session, nil
	}

	interpreters := session.ActiveInterpreterIDs()
	s.destroyRoom(ctx, session.RoomName)

	session.MarkEnded(s.clock(), reason)
	ended, err := s.calls.MarkEnded(ctx, session)
	if err != nil {
		return call.Session{}, err
	}
	if !ended {
		return s.calls.GetByID(ctx, callID)
	}

	s.registry.ClearSession(session.ID)
	metrics.ActiveCalls.Dec()
	metrics.CallsEnded.WithLabelValues(string(reason)).Inc()
	metrics.CallDuration.Observe(float64(session.DurationSeconds))

	if releaseEntry {
		s.releaseEntry(ctx, session.ID, session.QueueEntryID)
	}

	s.log.WithContext(ctx).Info("call ended",
		zap.String("call_id", session.ID.String()),
		zap.String("reason", string(reason)),
		zap.Int64("duration_seconds", session.DurationSeconds))
	s.notifier.Notify(ctx, events.NewCallEnded(session, interpreters))

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, session); err != nil {
			s.log.WithContext(ctx).Warn("call.End: archive transcript",
				zap.String("call_id", session.ID.String()), zap.Error(err))
		}
	}
	return session, nil
}

// releaseEntry hands the queue entry of an ended call back to the queue.
// Failures are logged because the call itself has already ended.
func (s *CallService) releaseEntry(ctx context.Context, callID, entryID uuid.UUID) {
	if _, err := s.queue.Leave(ctx, entryID); err != nil {
		s.log.WithContext(ctx).Error("call.End: release queue entry",
			zap.String("call_id", callID.String()),
			zap.String("entry_id", entryID.String()),
			zap.Error(err))
	}
}

// destroyRoom is best effort. The logical end of a call never waits on the
// vendor for longer than DestroyTimeout.
func (s *CallService) destroyRoom(ctx context.Context, roomName string) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.DestroyTimeout)
	defer cancel()
	if _, err := s.rooms.DestroyRoom(dctx, roomName); err != nil {
		metrics.RoomProviderErrors.WithLabelValues("destroy").Inc()
		s.log.WithContext(ctx).Warn("room destroy failed",
			zap.String("room", roomName), zap.Error(err))
	}
}

// AddMessage appends to the call's chat log. Order is server append order.
func (s *CallService) AddMessage(ctx context.Context, callID, senderID uuid.UUID, text string) (msg call.ChatMessage, err error) {
	defer func() { metrics.CallOperations.WithLabelValues("add_message", metrics.Outcome(err)).Inc() }()

	text = strings.TrimSpace(text)
	if text == "" || len(text) > maxMessageLength {
		return call.ChatMessage{}, fmt.Errorf("%w: message must be 1-%d characters", jobfair_errors.ErrInvalidInput, maxMessageLength)
	}

	unlock, err := s.locker.Lock(ctx, callLockKey(callID))
	if err != nil {
		return call.ChatMessage{}, err
	}
	defer unlock()

	session, err := s.activeSession(ctx, callID)
	if err != nil {
		return call.ChatMessage{}, err
	}
	role := session.ResolveRole(senderID)
	if !role.IsParticipant() || (role.Kind == call.RoleInterpreter && role.Participation.Status.IsTerminal()) {
		return call.ChatMessage{}, fmt.Errorf("%w: not a participant of this call", jobfair_errors.ErrUnauthorized)
	}

	msg = call.ChatMessage{
		SessionID:  session.ID,
		SenderID:   senderID,
		SenderRole: role.String(),
		Text:       text,
		CreatedAt:  s.clock(),
	}
	if err := s.calls.AppendMessage(ctx, &msg); err != nil {
		return call.ChatMessage{}, err
	}
	session.Messages = append(session.Messages, msg)

	s.notifier.Notify(ctx, events.NewMessageAdded(session, msg))
	return msg, nil
}

func (s *CallService) Get(ctx context.Context, callID uuid.UUID) (call.Session, error) {
	return s.calls.GetByID(ctx, callID)
}

// ActiveForUser lists active calls the user takes part in.
func (s *CallService) ActiveForUser(ctx context.Context, userID uuid.UUID) ([]call.Session, error) {
	return s.calls.ListActiveByUser(ctx, userID)
}

func (s *CallService) ListByQueueEntry(ctx context.Context, queueEntryID uuid.UUID) ([]call.Session, error) {
	return s.calls.ListByQueueEntry(ctx, queueEntryID)
}

// Roster returns who is live in the call. Registry records that disagree
// with the stored session are dropped from the registry.
func (s *CallService) Roster(ctx context.Context, callID uuid.UUID) ([]presence.CallRecord, error) {
	session, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive() {
		s.registry.ClearSession(session.ID)
		return []presence.CallRecord{}, nil
	}

	roster := make([]presence.CallRecord, 0)
	for _, rec := range s.registry.Roster(session.ID) {
		role := session.ResolveRole(rec.UserID)
		if !role.IsParticipant() || (role.Kind == call.RoleInterpreter && role.Participation.Status.IsTerminal()) {
			s.registry.LeaveSession(rec.UserID, session.ID)
			continue
		}
		roster = append(roster, rec)
	}
	return roster, nil
}

// SyncActiveCalls resets the active-call gauge from the store. Between
// syncs the gauge only tracks calls this instance opened and ended.
func (s *CallService) SyncActiveCalls(ctx context.Context) error {
	active, err := s.calls.ListActive(ctx)
	if err != nil {
		return err
	}
	metrics.ActiveCalls.Set(float64(len(active)))
	return nil
}

func (s *CallService) activeSession(ctx context.Context, callID uuid.UUID) (call.Session, error) {
	session, err := s.calls.GetByID(ctx, callID)
	if err != nil {
		return call.Session{}, err
	}
	if !session.IsActive() {
		return session, fmt.Errorf("%w: call %s", jobfair_errors.ErrNotActive, callID)
	}
	return session, nil
}

// credential issues a room token under an identity that is unique per
// role, user and attempt, so a reconnect never collides with a stale one.
func (s *CallService) credential(role call.RoleKind, userID uuid.UUID, roomName string) (string, string, error) {
	identity := fmt.Sprintf("%s_%s_%d", role, userID, s.attemptStamp())
	token, err := s.rooms.IssueAccessCredential(identity, roomName)
	if err != nil {
		metrics.RoomProviderErrors.WithLabelValues("credential").Inc()
		return "", "", fmt.Errorf("%w: issue credential: %v", jobfair_errors.ErrTransportFailure, err)
	}
	return identity, token, nil
}

// attemptStamp is the clock in nanoseconds, bumped so that two attempts
// never share a value.
func (s *CallService) attemptStamp() int64 {
	for {
		last := s.lastStamp.Load()
		now := s.clock().UnixNano()
		if now <= last {
			now = last + 1
		}
		if s.lastStamp.CompareAndSwap(last, now) {
			return now
		}
	}
}

func (s *CallService) displayName(ctx context.Context, userID uuid.UUID) string {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return ""
	}
	return u.Name
}
