package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/steveyiyo/tutor-relay/internal/core/session"
	"github.com/steveyiyo/tutor-relay/pkg/types"
	"github.com/steveyiyo/tutor-relay/pkg/ws"
)

const (
	readLimit    = 64 << 10
	readWait     = 60 * time.Second
	pingInterval = 25 * time.Second
)

var features = []string{"voice-chat", "multiple-models", "conversation-history", "themes"}

// MessageHandler answers one chat message. *tutor.Relay implements it.
type MessageHandler interface {
	Handle(ctx context.Context, connID string, raw json.RawMessage) types.TutorResponse
}

type ChatHandler struct {
	Hub      *ws.Hub
	Sess     *session.Service
	Relay    MessageHandler
	Log      *zap.Logger
	Upgrader websocket.Upgrader
}

func NewChatHandler(h *ws.Hub, s *session.Service, relay MessageHandler, log *zap.Logger, checkOrigin func(*http.Request) bool) *ChatHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatHandler{
		Hub:   h,
		Sess:  s,
		Relay: relay,
		Log:   log,
		Upgrader: websocket.Upgrader{
			CheckOrigin: checkOrigin,
		},
	}
}

// OriginPolicy allows same-host browsers everywhere and the listed dev
// origins outside production. Requests without an Origin header are
// non-browser clients and pass.
func OriginPolicy(production bool, devOrigins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		return !production && slices.Contains(devOrigins, origin)
	}
}

func (h *ChatHandler) WS(c *gin.Context) {
	conn, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	client := h.Sess.Open(ctx, c.ClientIP(), c.Request.UserAgent())
	peer := h.Hub.Add(client.ID, conn)

	var wg sync.WaitGroup
	reason := "client disconnect"
	defer func() {
		cancel()
		wg.Wait()
		h.Hub.Remove(client.ID)
		conn.Close()
		h.Sess.Close(context.Background(), client.ID, reason)
	}()

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	if err := peer.Send(types.EventConnectionConfirmed, types.ConnectionConfirmed{
		ID:         client.ID,
		ServerTime: time.Now().UTC().Format(time.RFC3339Nano),
		Features:   features,
	}); err != nil {
		reason = "write failed"
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		h.keepAlive(ctx, peer)
	}()

	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			reason = closeReason(err)
			return
		}
		conn.SetReadDeadline(time.Now().Add(readWait))
		if mt != websocket.TextMessage {
			continue
		}

		var env types.Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			h.Log.Debug("dropping malformed frame", zap.String("conn", client.ID), zap.Error(err))
			continue
		}

		switch env.Event {
		case types.EventChatMessage:
			wg.Add(1)
			go func(data json.RawMessage) {
				defer wg.Done()
				resp := h.Relay.Handle(ctx, client.ID, data)
				if err := peer.Send(types.EventTutorResponse, resp); err != nil {
					h.Log.Debug("tutor response not delivered", zap.String("conn", client.ID), zap.Error(err))
				}
			}(env.Data)
		case types.EventPing:
			if err := peer.Send(types.EventPong, types.Pong{Timestamp: time.Now().UnixMilli()}); err != nil {
				reason = "write failed"
				return
			}
		default:
			h.Log.Debug("ignoring event", zap.String("conn", client.ID), zap.String("event", env.Event))
		}
	}
}

func (h *ChatHandler) keepAlive(ctx context.Context, peer *ws.Peer) {
	t := time.NewTicker(pingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := peer.Ping(); err != nil {
				return
			}
		}
	}
}

func closeReason(err error) string {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		if ce.Text != "" {
			return ce.Text
		}
		return fmt.Sprintf("close %d", ce.Code)
	}
	return "transport error"
}
