package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobfair-live/internal/domain/call"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func endedSession() call.Session {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s := call.Session{
		ID:          uuid.New(),
		RoomName:    "booth_x",
		BoothID:     uuid.New(),
		EventID:     uuid.New(),
		RecruiterID: uuid.New(),
		JobSeekerID: uuid.New(),
		Status:      call.StatusActive,
		StartedAt:   start,
	}
	s.Messages = []call.ChatMessage{
		{ID: 1, SessionID: s.ID, SenderID: s.RecruiterID, SenderRole: "recruiter", Text: "hello", CreatedAt: start.Add(time.Minute)},
		{ID: 2, SessionID: s.ID, SenderID: s.JobSeekerID, SenderRole: "job_seeker", Text: "hi", CreatedAt: start.Add(2 * time.Minute)},
	}
	s.MarkEnded(start.Add(5*time.Minute), call.EndReasonRecruiter)
	return s
}

func TestArchiveWritesTranscript(t *testing.T) {
	putter := &fakePutter{}
	a := NewTranscriptArchiverWithClient("transcripts-bucket", putter)
	s := endedSession()

	require.NoError(t, a.Archive(context.Background(), s))
	require.Len(t, putter.inputs, 1)

	in := putter.inputs[0]
	assert.Equal(t, "transcripts-bucket", aws.ToString(in.Bucket))
	assert.Equal(t, "transcripts/"+s.BoothID.String()+"/"+s.ID.String()+".json", aws.ToString(in.Key))
	assert.Equal(t, "application/json", aws.ToString(in.ContentType))

	var doc transcript
	require.NoError(t, json.Unmarshal(putter.bodies[0], &doc))
	assert.Equal(t, s.ID, doc.SessionID)
	assert.Equal(t, int64(300), doc.DurationSeconds)
	assert.Equal(t, call.EndReasonRecruiter, doc.EndReason)
	require.Len(t, doc.Messages, 2)
	assert.Equal(t, "hello", doc.Messages[0].Text)
	assert.Equal(t, "hi", doc.Messages[1].Text)
}

func TestArchiveSkipsEmptyTranscript(t *testing.T) {
	putter := &fakePutter{}
	a := NewTranscriptArchiverWithClient("b", putter)
	s := endedSession()
	s.Messages = nil

	require.NoError(t, a.Archive(context.Background(), s))
	assert.Empty(t, putter.inputs)
}

func TestArchivePropagatesPutError(t *testing.T) {
	boom := errors.New("access denied")
	a := NewTranscriptArchiverWithClient("b", &fakePutter{err: boom})

	err := a.Archive(context.Background(), endedSession())
	assert.ErrorIs(t, err, boom)
}
