package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"jobfair-live/internal/domain/call"
)

type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// ObjectPutter is the subset of the S3 API the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// TranscriptArchiver stores the chat transcript of an ended call as a JSON object.
type TranscriptArchiver struct {
	bucket string
	client ObjectPutter
}

func NewTranscriptArchiver(ctx context.Context, cfg S3Config) (*TranscriptArchiver, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	endpoint := ""
	if cfg.Endpoint != "" {
		parsed, err := url.Parse(cfg.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid s3 endpoint: %w", err)
		}
		endpoint = parsed.String()
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return NewTranscriptArchiverWithClient(cfg.Bucket, client), nil
}

func NewTranscriptArchiverWithClient(bucket string, client ObjectPutter) *TranscriptArchiver {
	return &TranscriptArchiver{bucket: bucket, client: client}
}

type transcriptMessage struct {
	SenderID   uuid.UUID `json:"sender_id"`
	SenderRole string    `json:"sender_role"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

type transcript struct {
	SessionID       uuid.UUID           `json:"session_id"`
	RoomName        string              `json:"room_name"`
	BoothID         uuid.UUID           `json:"booth_id"`
	EventID         uuid.UUID           `json:"event_id"`
	RecruiterID     uuid.UUID           `json:"recruiter_id"`
	JobSeekerID     uuid.UUID           `json:"job_seeker_id"`
	StartedAt       time.Time           `json:"started_at"`
	EndedAt         *time.Time          `json:"ended_at,omitempty"`
	EndReason       call.EndReason      `json:"end_reason,omitempty"`
	DurationSeconds int64               `json:"duration_seconds"`
	Messages        []transcriptMessage `json:"messages"`
}

// TranscriptKey returns the object key a session's transcript is written to.
func TranscriptKey(s call.Session) string {
	return fmt.Sprintf("transcripts/%s/%s.json", s.BoothID, s.ID)
}

// Archive writes the transcript of s. Sessions without messages are skipped.
func (a *TranscriptArchiver) Archive(ctx context.Context, s call.Session) error {
	if a == nil || a.client == nil {
		return errors.New("s3 archiver not initialized")
	}
	if len(s.Messages) == 0 {
		return nil
	}

	doc := transcript{
		SessionID:       s.ID,
		RoomName:        s.RoomName,
		BoothID:         s.BoothID,
		EventID:         s.EventID,
		RecruiterID:     s.RecruiterID,
		JobSeekerID:     s.JobSeekerID,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
		EndReason:       s.EndReason,
		DurationSeconds: s.DurationSeconds,
		Messages:        make([]transcriptMessage, 0, len(s.Messages)),
	}
	for _, m := range s.Messages {
		doc.Messages = append(doc.Messages, transcriptMessage{
			SenderID:   m.SenderID,
			SenderRole: m.SenderRole,
			Text:       m.Text,
			CreatedAt:  m.CreatedAt,
		})
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(TranscriptKey(s)),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return fmt.Errorf("put transcript: %w", err)
	}
	return nil
}
