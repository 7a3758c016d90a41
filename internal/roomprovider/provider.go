// Package roomprovider talks to the external video-room vendor: it creates
// and completes rooms and signs the per-participant access tokens.
package roomprovider

import (
	"context"
)

// Room is the vendor's view of a room.
type Room struct {
	SID    string `json:"sid"`
	Name   string `json:"unique_name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type Provider interface {
	CreateOrFetchRoom(ctx context.Context, name, roomType string) (Room, error)
	// DestroyRoom completes the room. A room the vendor does not know is
	// reported as (nil, nil).
	DestroyRoom(ctx context.Context, name string) (*Room, error)
	IssueAccessCredential(identity, roomName string) (string, error)
}
