// Package chat governs message flow inside rooms created by the match
// engine: membership checks, appends, history and soft leave/rejoin.
package chat

import (
	"cinematch/backend/internal/models"
	"cinematch/backend/internal/storage"
	"context"
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxMessageRunes caps the length of a single chat message.
const MaxMessageRunes = 2000

const defaultHistoryTake = 50

// Broadcaster fans a committed message out to every currently connected
// member of the room. Best effort; the append has already been persisted.
type Broadcaster interface {
	BroadcastToRoom(roomID string, ev models.Event)
}

// Service handles the business logic for chat rooms.
type Service struct {
	Storage     storage.Storage
	Broadcaster Broadcaster
}

func NewService(s storage.Storage, b Broadcaster) *Service {
	return &Service{Storage: s, Broadcaster: b}
}

// Join validates that the user was placed into the room by the match engine
// and reactivates a soft-left membership. Users can never join arbitrary
// rooms; a missing membership row is a membership error.
func (s *Service) Join(ctx context.Context, roomID, userID string) error {
	m, err := s.Storage.GetMembership(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%w: user %s has no seat in room %s", models.ErrMembership, userID, roomID)
	}
	if m.IsActive {
		return nil
	}
	return s.Storage.SetMembershipActive(ctx, roomID, userID, true)
}

// Append persists one message from an active member and returns it with the
// sender's display name resolved. After the commit the message is broadcast
// to connected members; broadcast failures never surface here.
func (s *Service) Append(ctx context.Context, roomID, userID, text string) (*models.Message, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: message text is empty", models.ErrValidation)
	}
	if utf8.RuneCountInString(text) > MaxMessageRunes {
		return nil, fmt.Errorf("%w: message exceeds %d characters", models.ErrValidation, MaxMessageRunes)
	}

	active, err := s.Storage.IsActiveMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, fmt.Errorf("%w: user %s is not an active member of room %s", models.ErrMembership, userID, roomID)
	}

	displayName := ""
	if u, err := s.Storage.GetUserByID(ctx, userID); err == nil && u != nil {
		displayName = u.DisplayName
	}

	msg := &models.Message{
		RoomID:            roomID,
		SenderID:          userID,
		SenderDisplayName: displayName,
		Body:              text,
	}
	if err := s.Storage.SaveMessage(ctx, msg); err != nil {
		return nil, err
	}

	if s.Broadcaster != nil {
		s.Broadcaster.BroadcastToRoom(roomID, models.Event{
			Type:       models.EventMessage,
			RoomID:     roomID,
			SenderID:   msg.SenderID,
			SenderName: msg.SenderDisplayName,
			Body:       msg.Body,
			MessageID:  msg.ID,
			SentAt:     msg.CreatedAt,
		})
	}
	return msg, nil
}

// Leave flips the membership inactive and stamps the leave time. Calling it
// again on an already-left membership is a no-op.
func (s *Service) Leave(ctx context.Context, roomID, userID string) error {
	m, err := s.Storage.GetMembership(ctx, roomID, userID)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%w: user %s has no seat in room %s", models.ErrMembership, userID, roomID)
	}
	if !m.IsActive {
		return nil
	}
	return s.Storage.SetMembershipActive(ctx, roomID, userID, false)
}

// GetMessages returns up to take messages older than before (newest first).
// Soft-left members can still read history; users who were never members
// cannot.
func (s *Service) GetMessages(ctx context.Context, roomID, userID string, take int, before *time.Time) ([]models.Message, error) {
	m, err := s.Storage.GetMembership(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: user %s has no seat in room %s", models.ErrMembership, userID, roomID)
	}
	if take <= 0 {
		take = defaultHistoryTake
	}
	return s.Storage.GetMessages(ctx, roomID, take, before)
}

// ListRooms returns the user's room list, soft-left rooms included.
func (s *Service) ListRooms(ctx context.Context, userID string) ([]models.RoomSummary, error) {
	return s.Storage.ListRoomsFor(ctx, userID)
}
