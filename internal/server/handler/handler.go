// Package handler implements the websocket protocol: a JSON envelope
// of typed requests mapped onto engine operations. One goroutine per
// connection; requests on a connection are handled in order.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bates64/vscode-star-rod/internal/engine"
	"github.com/bates64/vscode-star-rod/pkg/core/log"
	"github.com/bates64/vscode-star-rod/pkg/core/srerror"
)

const readDeadline = 120 * time.Second

// Permissive origin check: the service binds to loopback for local
// editor tooling, not the open network.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is one request in the websocket envelope.
type Message struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is one reply in the websocket envelope. Type echoes the
// request type, or "error".
type Response struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// ErrorPayload carries a failed request's code and message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DocumentPayload carries document open/update requests.
type DocumentPayload struct {
	Path     string `json:"path"`
	Text     string `json:"text"`
	Revision int64  `json:"revision"`
}

// PathPayload names a document.
type PathPayload struct {
	Path string `json:"path"`
}

// LookupPayload is a symbol query by name or address.
type LookupPayload struct {
	Path    string `json:"path"`
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
}

// Handler upgrades connections and dispatches protocol messages.
type Handler struct {
	engine *engine.Engine
	logger *log.Logger
}

// New creates a websocket handler over an engine.
func New(eng *engine.Engine, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.GetDefault()
	}
	return &Handler{
		engine: eng,
		logger: logger.WithField("component", "ws-handler"),
	}
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.ErrorWithErr("websocket upgrade failed", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

// handleConnection reads requests until the peer closes or errors.
func (h *Handler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	session := uuid.New().String()
	logger := h.logger.WithField("session", session)
	logger.Info("session opened", log.Fields{"remote": conn.RemoteAddr().String()})

	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.WarnWithErr("session read error", err)
			} else {
				logger.Info("session closed")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readDeadline))

		resp := h.dispatch(ctx, msg)
		resp.ID = msg.ID
		if err := conn.WriteJSON(resp); err != nil {
			logger.ErrorWithErr("session write error", err)
			return
		}
	}
}

// dispatch maps one request onto the engine.
func (h *Handler) dispatch(ctx context.Context, msg Message) Response {
	switch msg.Type {
	case "ping":
		return Response{Type: "pong"}

	case "document.open":
		var p DocumentPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorResponse(srerror.Wrap(err, "invalid document payload").WithCode(srerror.CodeInvalidInput))
		}
		h.engine.OpenDocument(p.Path, p.Text, p.Revision)
		return Response{Type: msg.Type, Payload: map[string]string{"path": p.Path}}

	case "document.update":
		var p DocumentPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorResponse(srerror.Wrap(err, "invalid document payload").WithCode(srerror.CodeInvalidInput))
		}
		if err := h.engine.UpdateDocument(p.Path, p.Text, p.Revision); err != nil {
			return errorResponse(err)
		}
		return Response{Type: msg.Type, Payload: map[string]string{"path": p.Path}}

	case "document.close":
		var p PathPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorResponse(srerror.Wrap(err, "invalid path payload").WithCode(srerror.CodeInvalidInput))
		}
		h.engine.CloseDocument(p.Path)
		return Response{Type: msg.Type, Payload: map[string]string{"path": p.Path}}

	case "document.directives":
		var p PathPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorResponse(srerror.Wrap(err, "invalid path payload").WithCode(srerror.CodeInvalidInput))
		}
		directives, err := h.engine.Directives(p.Path)
		if err != nil {
			return errorResponse(err)
		}
		return Response{Type: msg.Type, Payload: directives}

	case "document.symbols":
		var p PathPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorResponse(srerror.Wrap(err, "invalid path payload").WithCode(srerror.CodeInvalidInput))
		}
		symbols, err := h.engine.Symbols(p.Path)
		if err != nil {
			return errorResponse(err)
		}
		return Response{Type: msg.Type, Payload: symbols}

	case "symbol.lookup":
		var p LookupPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return errorResponse(srerror.Wrap(err, "invalid lookup payload").WithCode(srerror.CodeInvalidInput))
		}
		switch {
		case p.Name != "":
			entry, err := h.engine.LookupSymbol(p.Path, p.Name)
			if err != nil {
				return errorResponse(err)
			}
			return Response{Type: msg.Type, Payload: entry}
		case p.Address != "":
			entry, err := h.engine.LookupAddress(p.Path, p.Address)
			if err != nil {
				return errorResponse(err)
			}
			return Response{Type: msg.Type, Payload: entry}
		default:
			return errorResponse(srerror.New("lookup needs a name or an address").WithCode(srerror.CodeInvalidInput))
		}

	case "database.stats":
		return Response{Type: msg.Type, Payload: h.engine.Stats()}

	case "database.reload":
		stats, err := h.engine.ReloadDatabase(ctx)
		if err != nil {
			return errorResponse(err)
		}
		return Response{Type: msg.Type, Payload: stats}

	case "enums.list":
		return Response{Type: msg.Type, Payload: h.engine.Enums()}

	case "flags.list":
		return Response{Type: msg.Type, Payload: h.engine.Flags()}

	default:
		return errorResponse(srerror.Newf("unknown request type %q", msg.Type).
			WithCode(srerror.CodeUnknownRequest))
	}
}

func errorResponse(err error) Response {
	return Response{
		Type: "error",
		Payload: ErrorPayload{
			Code:    string(srerror.GetCode(err)),
			Message: err.Error(),
		},
	}
}
