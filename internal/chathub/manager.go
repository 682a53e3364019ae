package chathub

import (
	"cinematch/backend/internal/chat"
	"cinematch/backend/internal/models"
	"cinematch/backend/internal/presence"
	"cinematch/backend/internal/storage"
	"context"
	"encoding/json"
	"log"
)

// Manager connects the live transport to the rest of the system: it feeds
// connect/disconnect events into the presence registry, routes inbound
// frames through the chat service, and runs the Redis Pub/Sub fan-out loop
// so messages reach members connected to any server process.
type Manager struct {
	Registry *presence.Registry
	Storage  storage.Storage

	chat *chat.Service
}

func NewManager(registry *presence.Registry, s storage.Storage) *Manager {
	return &Manager{Registry: registry, Storage: s}
}

// SetChatService wires the chat service in after construction; the service
// itself broadcasts through this manager, so the two are built in two steps.
func (m *Manager) SetChatService(c *chat.Service) {
	m.chat = c
}

// Register puts the client into the presence registry. A second connection
// from the same user replaces the first.
func (m *Manager) Register(c Client) {
	m.Registry.Connect(c)
	log.Printf("client connected: %s", c.UserID())
}

// Unregister removes the client from the registry. The registry ignores the
// call if a newer connection for the same user has already taken the slot.
func (m *Manager) Unregister(c Client) {
	if m.Registry.Disconnect(c) {
		log.Printf("client disconnected: %s", c.UserID())
	}
}

// HandleInbound processes one frame read from a client connection.
func (m *Manager) HandleInbound(ctx context.Context, userID string, frame models.InboundFrame) {
	switch frame.Type {
	case models.EventMessage:
		if _, err := m.chat.Append(ctx, frame.RoomID, userID, frame.Body); err != nil {
			log.Printf("rejected message from %s to room %s: %v", userID, frame.RoomID, err)
		}
	default:
		log.Printf("unknown frame type %q from %s", frame.Type, userID)
	}
}

// BroadcastToRoom implements chat.Broadcaster: the event goes through Redis
// so every process, including this one, picks it up in its fan-out loop.
// Best effort; the message is already committed.
func (m *Manager) BroadcastToRoom(roomID string, ev models.Event) {
	if err := m.Storage.PublishEvent(context.Background(), roomID, ev); err != nil {
		log.Printf("WARNING: failed to publish event for room %s: %v", roomID, err)
	}
}

// Run subscribes to all room channels and fans incoming events out to the
// locally connected active members. Blocks until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	pubsub := m.Storage.SubscribeToRooms(ctx)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: bad pubsub payload on %s: %v", msg.Channel, err)
				continue
			}
			m.fanOut(ctx, ev)
		}
	}
}

// fanOut delivers a room event to each active member with a live local
// connection. Members connected elsewhere are served by their own process.
func (m *Manager) fanOut(ctx context.Context, ev models.Event) {
	memberIDs, err := m.Storage.GetActiveMemberIDs(ctx, ev.RoomID)
	if err != nil {
		log.Printf("ERROR: failed to resolve members of room %s: %v", ev.RoomID, err)
		return
	}
	for _, id := range memberIDs {
		conn, ok := m.Registry.Lookup(id)
		if !ok {
			continue
		}
		if err := conn.Deliver(ev); err != nil {
			log.Printf("WARNING: dropped room event for user %s: %v", id, err)
		}
	}
}
