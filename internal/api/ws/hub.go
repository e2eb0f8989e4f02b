package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/trackly/internal/activity"
	"github.com/gosuda/trackly/internal/domain"
	"github.com/gosuda/trackly/internal/server/middleware"
	redisstore "github.com/gosuda/trackly/internal/store/redis"
)

// Subscriber abstracts the Redis pub/sub subscribe operation.
// *redisstore.PubSub satisfies this interface.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, func(), error)
}

// Hub serves live activity views over WebSocket.
type Hub struct {
	loader         activity.SnapshotSource
	pubsub         Subscriber // nil disables live updates
	originPatterns []string
}

// NewHub creates a new WebSocket hub. originPatterns are passed to
// websocket.Accept; empty means same-origin only.
func NewHub(loader activity.SnapshotSource, pubsub Subscriber, originPatterns []string) *Hub {
	return &Hub{loader: loader, pubsub: pubsub, originPatterns: originPatterns}
}

// ServeActivity holds one activity.View per connection. The optional
// project_id query parameter scopes the view to a project. A frame is pushed
// after the initial load, after every client message, and whenever a new
// entry in scope is published on the workspace channel.
func (h *Hub) ServeActivity(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := middleware.WorkspaceIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing workspace", http.StatusBadRequest)
		return
	}

	var scope activity.Scope
	if raw := r.URL.Query().Get("project_id"); raw != "" {
		pid, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid project id", http.StatusBadRequest)
			return
		}
		scope.ProjectID = &pid
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	view := activity.NewView(h.loader, workspaceID, scope)
	defer view.Close()

	// Subscribe before loading so entries recorded during the load are
	// buffered and merged afterwards; Append drops duplicates.
	var updates <-chan []byte
	if h.pubsub != nil {
		msgs, cleanup, subErr := h.pubsub.Subscribe(ctx, redisstore.ActivityChannel(workspaceID))
		if subErr != nil {
			log.Error().Err(subErr).Str("workspace_id", workspaceID.String()).Msg("websocket subscribe")
			_ = conn.Close(websocket.StatusInternalError, "subscribe failed")
			return
		}
		defer cleanup()
		updates = msgs
	}

	if loadErr := view.Load(ctx); loadErr != nil {
		if errors.Is(loadErr, activity.ErrViewClosed) || errors.Is(loadErr, context.Canceled) {
			return
		}
		log.Warn().Err(loadErr).Str("workspace_id", workspaceID.String()).Msg("websocket: activity load failed")
		_ = writeFrame(ctx, conn, view)
		_ = conn.Close(websocket.StatusInternalError, "load failed")
		return
	}
	if writeErr := writeFrame(ctx, conn, view); writeErr != nil {
		log.Debug().Err(writeErr).Msg("websocket write")
		return
	}

	commands := make(chan ClientMessage)
	readErr := make(chan error, 1)
	go readLoop(ctx, conn, commands, readErr)

	for {
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return

		case err := <-readErr:
			if websocket.CloseStatus(err) == -1 {
				log.Debug().Err(err).Msg("websocket read")
			}
			return

		case cmd := <-commands:
			var werr error
			if applyErr := apply(view, cmd); applyErr != nil {
				werr = writeMessage(ctx, conn, ServerMessage{Type: MsgError, Error: applyErr.Error()})
			} else {
				werr = writeFrame(ctx, conn, view)
			}
			if werr != nil {
				log.Debug().Err(werr).Msg("websocket write")
				return
			}

		case payload, open := <-updates:
			if !open {
				_ = conn.Close(websocket.StatusNormalClosure, "channel closed")
				return
			}
			var entry domain.LogEntry
			if err := json.Unmarshal(payload, &entry); err != nil {
				log.Warn().Err(err).Msg("websocket: malformed activity payload")
				continue
			}
			if !view.Append(&entry) {
				continue
			}
			if werr := writeFrame(ctx, conn, view); werr != nil {
				log.Debug().Err(werr).Msg("websocket write")
				return
			}
		}
	}
}

// msgMalformed marks a client frame that was not valid JSON.
const msgMalformed = "\x00malformed"

// readLoop decodes client messages until the connection fails. Malformed
// JSON is forwarded as msgMalformed so that only the main loop writes to the
// connection.
func readLoop(ctx context.Context, conn *websocket.Conn, out chan<- ClientMessage, errc chan<- error) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			errc <- err
			return
		}

		var msg ClientMessage
		if jsonErr := json.Unmarshal(data, &msg); jsonErr != nil {
			msg = ClientMessage{Type: msgMalformed}
		}

		select {
		case out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func apply(view *activity.View, msg ClientMessage) error {
	switch msg.Type {
	case MsgFilter:
		view.SetFilter(msg.Filter)
	case MsgReset:
		view.ResetFilter()
	case MsgPage:
		view.SetPage(msg.Page)
	case MsgNext:
		view.NextPage()
	case MsgPrev:
		view.PrevPage()
	case msgMalformed:
		return errors.New("malformed message")
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func writeFrame(ctx context.Context, conn *websocket.Conn, view *activity.View) error {
	frame := view.Render()
	return writeMessage(ctx, conn, ServerMessage{Type: MsgRender, View: &frame})
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("ws.writeMessage: marshal: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("ws.writeMessage: %w", err)
	}
	return nil
}
