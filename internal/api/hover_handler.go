package api

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/qirtas-app/qirtas/internal/observability"
	"github.com/qirtas-app/qirtas/internal/tooltip"
)

// HoverMessageType represents the type of hover WebSocket message
type HoverMessageType string

const (
	HoverMessageTypeHover     HoverMessageType = "hover"
	HoverMessageTypeLeave     HoverMessageType = "leave"
	HoverMessageTypeTooltip   HoverMessageType = "tooltip"
	HoverMessageTypePending   HoverMessageType = "pending"
	HoverMessageTypeHeartbeat HoverMessageType = "heartbeat"
	HoverMessageTypeError     HoverMessageType = "error"
)

// HoverClientMessage represents a message from the reader client
type HoverClientMessage struct {
	Type HoverMessageType `json:"type"`
	Word string           `json:"word,omitempty"`
}

// HoverServerMessage represents a message to the reader client
type HoverServerMessage struct {
	Type       HoverMessageType `json:"type"`
	Word       string           `json:"word,omitempty"`
	Text       string           `json:"text,omitempty"`
	Source     string           `json:"source,omitempty"`
	Generation uint64           `json:"generation,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// HoverHandler handles the hover WebSocket. Each connection gets its own
// session; a hover message immediately answers with a pending placeholder
// echoing the word, then resolves asynchronously. A resolution that finishes
// after the client hovered elsewhere is dropped.
type HoverHandler struct {
	resolver *tooltip.Resolver
	metrics  *observability.Metrics
}

// NewHoverHandler creates a new hover handler
func NewHoverHandler(resolver *tooltip.Resolver, metrics *observability.Metrics) *HoverHandler {
	return &HoverHandler{
		resolver: resolver,
		metrics:  metrics,
	}
}

// HandleWebSocket handles WebSocket upgrade and communication
func (h *HoverHandler) HandleWebSocket(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(h.handleConnection)(c)
}

// tooltipSender delivers server messages for one hover session.
type tooltipSender interface {
	send(msg HoverServerMessage) error
}

// hoverConn serializes writes to one WebSocket connection.
type hoverConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *hoverConn) send(msg HoverServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (h *HoverHandler) handleConnection(c *websocket.Conn) {
	connectionID := uuid.New().String()
	conn := &hoverConn{conn: c}
	session := tooltip.NewHoverSession()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Debug().Str("connection_id", connectionID).Msg("Hover connection opened")
	defer log.Debug().Str("connection_id", connectionID).Msg("Hover connection closed")

	for {
		var msg HoverClientMessage
		if err := c.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("connection_id", connectionID).Msg("Hover WebSocket error")
			}
			return
		}

		h.handleMessage(ctx, conn, session, msg)
	}
}

func (h *HoverHandler) handleMessage(ctx context.Context, conn tooltipSender, session *tooltip.HoverSession, msg HoverClientMessage) {
	switch msg.Type {
	case HoverMessageTypeHover:
		if msg.Word == "" {
			conn.send(HoverServerMessage{
				Type:  HoverMessageTypeError,
				Error: "word is required for hover",
			})
			return
		}

		gen := session.Begin()

		// Immediate placeholder so the client can show the raw word while
		// resolution is in flight.
		conn.send(HoverServerMessage{
			Type:       HoverMessageTypePending,
			Word:       msg.Word,
			Text:       msg.Word,
			Generation: gen,
		})

		go h.resolve(ctx, conn, session, msg.Word, gen)

	case HoverMessageTypeLeave:
		// Invalidate any in-flight resolution without starting a new one.
		session.Begin()

	case HoverMessageTypeHeartbeat:
		conn.send(HoverServerMessage{
			Type: HoverMessageTypeHeartbeat,
		})

	default:
		conn.send(HoverServerMessage{
			Type:  HoverMessageTypeError,
			Error: "unknown message type",
		})
	}
}

func (h *HoverHandler) resolve(ctx context.Context, conn tooltipSender, session *tooltip.HoverSession, word string, gen uint64) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	text, source := h.resolver.ResolveWithSource(ctx, word)

	// The client hovered elsewhere while we were resolving; drop the result.
	if !session.StillCurrent(gen) {
		log.Debug().Str("word", word).Uint64("generation", gen).Msg("Dropping stale hover resolution")
		return
	}

	if h.metrics != nil {
		h.metrics.RecordTooltipResolution(string(source))
	}

	if err := conn.send(HoverServerMessage{
		Type:       HoverMessageTypeTooltip,
		Word:       word,
		Text:       text,
		Source:     string(source),
		Generation: gen,
	}); err != nil {
		log.Debug().Err(err).Str("word", word).Msg("Failed to send hover tooltip")
	}
}
