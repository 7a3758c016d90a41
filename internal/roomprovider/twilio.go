package roomprovider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	twjwt "github.com/twilio/twilio-go/client/jwt"
	video "github.com/twilio/twilio-go/rest/video/v1"
)

// codeRoomExists is returned by the vendor when UniqueName is taken by an
// in-progress room.
const codeRoomExists = 53113

type TwilioConfig struct {
	AccountSID string
	APIKey     string
	APISecret  string
	TokenTTL   time.Duration
}

// TwilioProvider drives Twilio Video rooms through the official SDK.
// The SDK calls take no context, so httpClient's timeout bounds them.
type TwilioProvider struct {
	cfg  TwilioConfig
	rest *twilio.RestClient
}

func NewTwilioProvider(cfg TwilioConfig, httpClient *http.Client) *TwilioProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	base := &twclient.Client{
		Credentials: twclient.NewCredentials(cfg.APIKey, cfg.APISecret),
		HTTPClient:  httpClient,
	}
	base.SetAccountSid(cfg.AccountSID)

	return &TwilioProvider{
		cfg:  cfg,
		rest: twilio.NewRestClientWithParams(twilio.ClientParams{Client: base}),
	}
}

func (p *TwilioProvider) CreateOrFetchRoom(ctx context.Context, name, roomType string) (Room, error) {
	if err := ctx.Err(); err != nil {
		return Room{}, err
	}
	params := &video.CreateRoomParams{}
	params.SetUniqueName(name)
	if roomType != "" {
		params.SetType(roomType)
	}

	created, err := p.rest.VideoV1.CreateRoom(params)
	if err == nil {
		return roomFrom(created), nil
	}
	if restErr, ok := asRestError(err); !ok || restErr.Code != codeRoomExists {
		return Room{}, fmt.Errorf("create room %s: %w", name, err)
	}

	existing, err := p.rest.VideoV1.FetchRoom(name)
	if err != nil {
		return Room{}, fmt.Errorf("fetch room %s: %w", name, err)
	}
	return roomFrom(existing), nil
}

func (p *TwilioProvider) DestroyRoom(ctx context.Context, name string) (*Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params := &video.UpdateRoomParams{}
	params.SetStatus("completed")

	updated, err := p.rest.VideoV1.UpdateRoom(name, params)
	if err != nil {
		if restErr, ok := asRestError(err); ok && restErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("complete room %s: %w", name, err)
	}
	room := roomFrom(updated)
	return &room, nil
}

// IssueAccessCredential signs an access token carrying a video grant for
// roomName only.
func (p *TwilioProvider) IssueAccessCredential(identity, roomName string) (string, error) {
	if identity == "" || roomName == "" {
		return "", fmt.Errorf("identity and room name are required")
	}
	token := twjwt.CreateAccessToken(twjwt.AccessTokenParams{
		AccountSid:    p.cfg.AccountSID,
		SigningKeySid: p.cfg.APIKey,
		Secret:        p.cfg.APISecret,
		Identity:      identity,
		Ttl:           p.cfg.TokenTTL.Seconds(),
	})
	token.AddGrant(&twjwt.VideoGrant{Room: roomName})
	return token.ToJwt()
}

func asRestError(err error) (*twclient.TwilioRestError, bool) {
	var restErr *twclient.TwilioRestError
	if errors.As(err, &restErr) {
		return restErr, true
	}
	return nil, false
}

func roomFrom(r *video.VideoV1Room) Room {
	if r == nil {
		return Room{}
	}
	return Room{
		SID:    deref(r.Sid),
		Name:   deref(r.UniqueName),
		Type:   deref(r.Type),
		Status: deref(r.Status),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
