// Package match implements candidate discovery and the two-sided
// request/acceptance handshake that converts two independent match requests
// into exactly one shared chat room.
package match

import (
	"cinematch/backend/internal/models"
	"cinematch/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
)

// Relationship status of a candidate relative to the requesting user.
const (
	StatusNone            = "none"
	StatusPendingSent     = "pending_sent"
	StatusPendingReceived = "pending_received"
	StatusMatched         = "matched"
)

// Notifier pushes a live notification to a user if they are connected.
// Delivery is best effort; the engine never waits on it.
type Notifier interface {
	Notify(userID string, ev models.Event)
}

// Engine runs the matching logic on top of the storage layer.
type Engine struct {
	Storage  storage.Storage
	Notifier Notifier
}

func NewEngine(s storage.Storage, n Notifier) *Engine {
	return &Engine{Storage: s, Notifier: n}
}

// Candidate is one entry in the ranked candidate list.
type Candidate struct {
	UserID         string  `json:"user_id"`
	DisplayName    string  `json:"display_name"`
	OverlapCount   int     `json:"overlap_count"`
	SharedMovieIDs []int64 `json:"shared_movie_ids"`
	Status         string  `json:"status"`
	RoomID         string  `json:"room_id,omitempty"`
}

// Result is the outcome of one RequestMatch call.
type Result struct {
	Matched bool   `json:"matched"`
	RoomID  string `json:"room_id,omitempty"`
}

// GetCandidates ranks every user sharing at least one liked movie with the
// requesting user: overlap count descending, user id ascending on ties,
// truncated to limit when limit > 0. A user with no likes gets an empty
// list, not an error.
func (e *Engine) GetCandidates(ctx context.Context, userID string, limit int) ([]Candidate, error) {
	liked, err := e.Storage.GetLikedMovieIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(liked) == 0 {
		return []Candidate{}, nil
	}

	shared, err := e.Storage.GetLikersOf(ctx, liked, userID)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(shared))
	for otherID, movieIDs := range shared {
		sort.Slice(movieIDs, func(i, j int) bool { return movieIDs[i] < movieIDs[j] })
		candidates = append(candidates, Candidate{
			UserID:         otherID,
			OverlapCount:   len(movieIDs),
			SharedMovieIDs: movieIDs,
		})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].OverlapCount != candidates[j].OverlapCount {
			return candidates[i].OverlapCount > candidates[j].OverlapCount
		}
		return candidates[i].UserID < candidates[j].UserID
	})
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	for i := range candidates {
		if err := e.resolveCandidate(ctx, userID, &candidates[i]); err != nil {
			return nil, err
		}
	}
	return candidates, nil
}

// resolveCandidate fills in display name and the relationship status by
// checking the pair's room and both request directions.
func (e *Engine) resolveCandidate(ctx context.Context, userID string, c *Candidate) error {
	if u, err := e.Storage.GetUserByID(ctx, c.UserID); err != nil {
		return err
	} else if u != nil {
		c.DisplayName = u.DisplayName
	}

	room, err := e.Storage.GetRoomByPair(ctx, userID, c.UserID)
	if err != nil {
		return err
	}
	if room != nil {
		c.Status = StatusMatched
		c.RoomID = room.RoomID
		return nil
	}

	sent, err := e.Storage.HasMatchRequestFrom(ctx, userID, c.UserID)
	if err != nil {
		return err
	}
	if sent {
		c.Status = StatusPendingSent
		return nil
	}
	received, err := e.Storage.HasMatchRequestFrom(ctx, c.UserID, userID)
	if err != nil {
		return err
	}
	if received {
		c.Status = StatusPendingReceived
		return nil
	}
	c.Status = StatusNone
	return nil
}

// RequestMatch records a directed match request and, when the reciprocal
// request already exists, confirms the mutual match by creating (or
// finding) the pair's chat room.
//
// The call is idempotent: replaying the same (requestor, target, movie)
// triple returns the same result without creating a second request row, and
// replaying after a confirmed match returns the existing room. Two
// opposite-direction requests racing each other commit exactly one room;
// the loser detects the winner through the unordered pair key and returns
// the winning room id.
func (e *Engine) RequestMatch(ctx context.Context, requestorID, targetUserID string, movieID int64) (Result, error) {
	if requestorID == "" || targetUserID == "" {
		return Result{}, fmt.Errorf("%w: user ids are required", models.ErrValidation)
	}
	if requestorID == targetUserID {
		return Result{}, fmt.Errorf("%w: cannot request a match with yourself", models.ErrValidation)
	}
	if movieID <= 0 {
		return Result{}, fmt.Errorf("%w: movie id must be positive", models.ErrValidation)
	}

	// Step 1: record the directed request. A duplicate triple means an
	// idempotent replay, everything else is fatal.
	err := e.Storage.CreateMatchRequest(ctx, &models.MatchRequest{
		RequestorID:  requestorID,
		TargetUserID: targetUserID,
		MovieID:      movieID,
	})
	firstInsert := err == nil
	if err != nil && !errors.Is(err, models.ErrConflict) {
		return Result{}, err
	}

	// Step 2: look for the reciprocal request.
	reciprocal, err := e.Storage.MatchRequestExists(ctx, targetUserID, requestorID, movieID)
	if err != nil {
		return Result{}, err
	}
	if !reciprocal {
		return Result{Matched: false}, nil
	}

	// Mutual match confirmed. One room per unordered pair, reused across
	// movies: a second mutual match returns the existing room.
	room, err := e.Storage.GetRoomByPair(ctx, requestorID, targetUserID)
	if err != nil {
		return Result{}, err
	}
	created := false
	switch {
	case room == nil:
		room, err = e.Storage.CreateRoomWithMembers(ctx, requestorID, targetUserID)
		if err != nil {
			return Result{}, err
		}
		created = true
	case firstInsert:
		// A fresh mutual match onto an existing room reactivates any
		// soft-left seats so the pair can pick the conversation back up.
		if err := e.Storage.SetMembershipActive(ctx, room.RoomID, requestorID, true); err != nil {
			return Result{}, err
		}
		if err := e.Storage.SetMembershipActive(ctx, room.RoomID, targetUserID, true); err != nil {
			return Result{}, err
		}
	}

	if created {
		// Room is committed; notification is fire-and-forget and must
		// never affect the handshake outcome.
		e.notifyMatched(room.RoomID, requestorID, targetUserID, movieID)
	}
	return Result{Matched: true, RoomID: room.RoomID}, nil
}

func (e *Engine) notifyMatched(roomID, requestorID, targetUserID string, movieID int64) {
	if e.Notifier == nil {
		return
	}
	go func() {
		e.Notifier.Notify(requestorID, models.Event{
			Type:        models.EventMatchFound,
			RoomID:      roomID,
			MovieID:     movieID,
			OtherUserID: targetUserID,
		})
		e.Notifier.Notify(targetUserID, models.Event{
			Type:        models.EventMatchFound,
			RoomID:      roomID,
			MovieID:     movieID,
			OtherUserID: requestorID,
		})
		log.Printf("match confirmed: %s and %s in room %s", requestorID, targetUserID, roomID)
	}()
}
