package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharma_ruche/internal/gateway"
	"github.com/Skotchmaster/pharma_ruche/pkg/logging"
)

const writeWait = 10 * time.Second

type liveMessage struct {
	Type    string `json:"type"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func upgrader(allowed []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
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
			for _, a := range allowed {
				if strings.EqualFold(strings.TrimRight(a, "/"), origin) {
					return true
				}
			}
			return false
		},
	}
}

// stream pushes every snapshot of a feed to a websocket client until either
// side goes away.
func stream[T any](c echo.Context, allowed []string, subscribe func(context.Context) (*gateway.Feed[T], error)) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "live", "path", c.Path())

	conn, err := upgrader(allowed).Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		l.Warn("live_upgrade_error", "error", err)
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	feed, err := subscribe(ctx)
	if err != nil {
		l.Error("live_subscribe_error", "error", err)
		_ = conn.WriteJSON(liveMessage{Type: "error", Message: "feed unavailable"})
		return nil
	}
	defer feed.Stop()

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		snap, err := feed.Next(ctx)
		msg := liveMessage{Type: "snapshot", Data: snap}
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, gateway.ErrFeedClosed) {
				return nil
			}
			l.Warn("live_feed_error", "error", err)
			msg = liveMessage{Type: "error", Message: "feed temporarily unavailable"}
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			l.Info("live_client_gone", "error", err)
			return nil
		}
	}
}
