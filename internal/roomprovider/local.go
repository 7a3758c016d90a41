package roomprovider

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// LocalProvider keeps rooms in memory. It backs ROOM_PROVIDER=local for
// development and tests; tokens are still real signed JWTs.
type LocalProvider struct {
	mu     sync.Mutex
	rooms  map[string]Room
	tokens *TokenIssuer
}

func NewLocalProvider(tokens *TokenIssuer) *LocalProvider {
	return &LocalProvider{rooms: make(map[string]Room), tokens: tokens}
}

func (p *LocalProvider) CreateOrFetchRoom(_ context.Context, name, roomType string) (Room, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if room, ok := p.rooms[name]; ok {
		return room, nil
	}
	room := Room{SID: "RM" + uuid.NewString(), Name: name, Type: roomType, Status: "in-progress"}
	p.rooms[name] = room
	return room, nil
}

func (p *LocalProvider) DestroyRoom(_ context.Context, name string) (*Room, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	room, ok := p.rooms[name]
	if !ok {
		return nil, nil
	}
	delete(p.rooms, name)
	room.Status = "completed"
	return &room, nil
}

func (p *LocalProvider) IssueAccessCredential(identity, roomName string) (string, error) {
	return p.tokens.Issue(identity, roomName)
}

// RoomCount reports how many rooms are open.
func (p *LocalProvider) RoomCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rooms)
}
