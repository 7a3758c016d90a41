package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"jobfair-live/internal/domain/call"
	"jobfair-live/internal/domain/queue"
	"jobfair-live/internal/domain/user"
)

type UserRepository interface {
	Upsert(ctx context.Context, u *user.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error)
	// ListInterpreters returns active booth-assigned interpreters of boothID
	// followed by active global interpreters.
	ListInterpreters(ctx context.Context, boothID uuid.UUID) ([]user.User, error)
}

type QueueRepository interface {
	Create(ctx context.Context, e *queue.Entry) error
	GetByID(ctx context.Context, id uuid.UUID) (queue.Entry, error)
	FindActive(ctx context.Context, jobSeekerID, boothID uuid.UUID) (queue.Entry, error)
	MaxWaitingPosition(ctx context.Context, boothID uuid.UUID) (int, error)
	ListActiveByBooth(ctx context.Context, boothID uuid.UUID) ([]queue.Entry, error)
	ListActiveByJobSeeker(ctx context.Context, jobSeekerID uuid.UUID) ([]queue.Entry, error)
	// UpdateStatus moves the entry to `to` only while it is still in `from`.
	// It returns ErrInvalidTransition when the stored status changed meanwhile.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to queue.Status, at time.Time) (queue.Entry, error)
}

type CallRepository interface {
	Create(ctx context.Context, s *call.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (call.Session, error)
	FindActiveByQueueEntry(ctx context.Context, queueEntryID uuid.UUID) (call.Session, error)
	ListByQueueEntry(ctx context.Context, queueEntryID uuid.UUID) ([]call.Session, error)
	// ListActiveByUser returns active sessions where the user is recruiter,
	// job seeker or holds a non-terminal interpreter record.
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]call.Session, error)
	ListActiveByInterpreter(ctx context.Context, interpreterID uuid.UUID) ([]call.Session, error)
	ListActive(ctx context.Context) ([]call.Session, error)
	ListActiveStartedBefore(ctx context.Context, cutoff time.Time) ([]call.Session, error)
	// MarkEnded flips an active session to ended. ended=false means it was
	// already ended by someone else.
	MarkEnded(ctx context.Context, s call.Session) (ended bool, err error)
	SaveParticipation(ctx context.Context, p call.InterpreterParticipation) error
	AppendMessage(ctx context.Context, m *call.ChatMessage) error
}
