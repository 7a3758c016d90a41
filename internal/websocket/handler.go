package websocket

import (
	"context"
	"net/http"
	"strings"
	"time"

	"jobfair-live/internal/events"
	"jobfair-live/internal/metrics"
	"jobfair-live/internal/presence"
	"jobfair-live/internal/services"
	"jobfair-live/internal/transport/httpdto"
	"jobfair-live/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (services.Identity, error)
}

type Handler struct {
	auth       Authenticator
	hub        *Hub
	registry   *presence.Registry
	authorizer *ChannelAuthorizer
	upgrader   websocket.Upgrader
	log        *logger.Logger
}

// NewHandler creates the websocket upgrade handler
func NewHandler(auth Authenticator, hub *Hub, registry *presence.Registry, authorizer *ChannelAuthorizer, l *logger.Logger) *Handler {
	return &Handler{
		auth:       auth,
		hub:        hub,
		registry:   registry,
		authorizer: authorizer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		log: l.Named("websocket"),
	}
}

// Connect upgrades the request, registers presence and serves the
// connection until it closes.
func (h *Handler) Connect(c *gin.Context) {
	id, err := h.auth.Authenticate(c.Request.Context(), extractToken(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHENTICATED"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Logger.Warn("websocket upgrade failed", zap.String("user_id", id.UserID.String()), zap.Error(err))
		return
	}

	client := NewClient(conn, id)
	log := h.log.Logger.With(zap.String("user_id", id.UserID.String()), zap.String("connection_id", client.ID))

	h.registry.Connect(presence.Record{
		UserID:       id.UserID,
		ConnectionID: client.ID,
		Name:         id.Name,
		Role:         string(id.Role),
		BoothID:      id.BoothID,
		ConnectedAt:  time.Now().UTC(),
	})
	metrics.OnlineUsers.Set(float64(len(h.registry.ListOnline())))

	h.hub.Register(client)
	h.hub.Subscribe(client, events.UserChannel(id.UserID))
	log.Info("websocket connected")

	ctx, cancel := context.WithCancel(context.Background())
	go client.WriteLoop(ctx)

	if err := client.ReadLoop(func(msg ClientMessage) { h.handle(client, msg) }); err != nil {
		log.Warn("websocket closed unexpectedly", zap.Error(err))
	}

	cancel()
	h.hub.Unregister(client)
	// A newer connection for the same user keeps its presence.
	h.registry.DisconnectConnection(id.UserID, client.ID)
	metrics.OnlineUsers.Set(float64(len(h.registry.ListOnline())))
	log.Info("websocket disconnected")
}

func (h *Handler) handle(client *Client, msg ClientMessage) {
	h.registry.Touch(client.Identity.UserID)

	switch msg.Type {
	case "subscribe":
		if !h.authorizer.CanSubscribe(client.Identity, msg.Channel) {
			client.Reply(ServerMessage{Type: "error", Channel: msg.Channel, Code: "UNAUTHORIZED"})
			return
		}
		h.hub.Subscribe(client, msg.Channel)
		client.Reply(ServerMessage{Type: "subscribed", Channel: msg.Channel})
	case "unsubscribe":
		h.hub.Unsubscribe(client, msg.Channel)
		client.Reply(ServerMessage{Type: "unsubscribed", Channel: msg.Channel})
	case "heartbeat", "ping":
		client.Reply(ServerMessage{Type: "pong"})
	default:
		client.Reply(ServerMessage{Type: "error", Code: "INVALID_REQUEST"})
	}
}

func extractToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
