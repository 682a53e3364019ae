package storage

import (
	"cinematch/backend/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Storage is the persistence surface the match engine, chat service and
// live gateway depend on. *Service implements it on PostgreSQL + Redis.
type Storage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)

	SetLike(ctx context.Context, userID string, movieID int64, liked bool) error
	GetLikedMovieIDs(ctx context.Context, userID string) ([]int64, error)
	GetLikersOf(ctx context.Context, movieIDs []int64, excludeUserID string) (map[string][]int64, error)

	CreateMatchRequest(ctx context.Context, req *models.MatchRequest) error
	MatchRequestExists(ctx context.Context, requestorID, targetUserID string, movieID int64) (bool, error)
	HasMatchRequestFrom(ctx context.Context, requestorID, targetUserID string) (bool, error)

	CreateRoomWithMembers(ctx context.Context, userA, userB string) (*models.ChatRoom, error)
	GetRoomByPair(ctx context.Context, userA, userB string) (*models.ChatRoom, error)
	GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error)
	ListRoomsFor(ctx context.Context, userID string) ([]models.RoomSummary, error)
	GetMembership(ctx context.Context, roomID, userID string) (*models.ChatMembership, error)
	SetMembershipActive(ctx context.Context, roomID, userID string, active bool) error
	IsActiveMember(ctx context.Context, roomID, userID string) (bool, error)
	GetActiveMemberIDs(ctx context.Context, roomID string) ([]string, error)

	SaveMessage(ctx context.Context, msg *models.Message) error
	GetMessages(ctx context.Context, roomID string, take int, before *time.Time) ([]models.Message, error)

	PublishEvent(ctx context.Context, roomID string, ev models.Event) error
	SubscribeToRooms(ctx context.Context) *redis.PubSub

	GetCachedMovie(ctx context.Context, movieID int64) (string, error)
	CacheMovie(ctx context.Context, movieID int64, payload string, ttl time.Duration) error
}

type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{DB: db, Redis: rdb}
}

// wrapDB translates gorm errors into the shared taxonomy: unique-constraint
// hits become ErrConflict (callers recover from those), everything else is
// a fatal storage failure.
func wrapDB(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", models.ErrConflict, err)
	}
	return fmt.Errorf("%w: %v", models.ErrStorageUnavailable, err)
}

// --- Users ---

func (s *Service) CreateUser(ctx context.Context, user *models.User) error {
	return wrapDB(s.DB.WithContext(ctx).Create(user).Error)
}

func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDB(err)
	}
	return &user, nil
}

func (s *Service) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDB(err)
	}
	return &user, nil
}

// --- Likes ---

// SetLike upserts the (user, movie) like row, flipping Liked on repeat calls.
func (s *Service) SetLike(ctx context.Context, userID string, movieID int64, liked bool) error {
	like := models.MovieLike{UserID: userID, MovieID: movieID, Liked: liked}
	return wrapDB(s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
	}).Create(&like).Error)
}

func (s *Service) GetLikedMovieIDs(ctx context.Context, userID string) ([]int64, error) {
	var ids []int64
	err := s.DB.WithContext(ctx).Model(&models.MovieLike{}).
		Where("user_id = ? AND liked = ?", userID, true).
		Pluck("movie_id", &ids).Error
	if err != nil {
		return nil, wrapDB(err)
	}
	return ids, nil
}

// GetLikersOf returns, for every other user who liked at least one of the
// given movies, the subset of those movies they liked. One query; the
// overlap ranking happens in the match engine.
func (s *Service) GetLikersOf(ctx context.Context, movieIDs []int64, excludeUserID string) (map[string][]int64, error) {
	if len(movieIDs) == 0 {
		return map[string][]int64{}, nil
	}
	var likes []models.MovieLike
	err := s.DB.WithContext(ctx).
		Where("movie_id IN ? AND liked = ? AND user_id <> ?", movieIDs, true, excludeUserID).
		Find(&likes).Error
	if err != nil {
		return nil, wrapDB(err)
	}
	shared := make(map[string][]int64, len(likes))
	for _, l := range likes {
		shared[l.UserID] = append(shared[l.UserID], l.MovieID)
	}
	return shared, nil
}

// --- Match requests ---

// CreateMatchRequest inserts one directed request row. A replay of the same
// ordered (requestor, target, movie) triple hits the unique index and comes
// back as ErrConflict; the match engine treats that as an idempotent replay.
func (s *Service) CreateMatchRequest(ctx context.Context, req *models.MatchRequest) error {
	return wrapDB(s.DB.WithContext(ctx).Create(req).Error)
}

func (s *Service) MatchRequestExists(ctx context.Context, requestorID, targetUserID string, movieID int64) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.MatchRequest{}).
		Where("requestor_id = ? AND target_user_id = ? AND movie_id = ?", requestorID, targetUserID, movieID).
		Count(&count).Error
	if err != nil {
		return false, wrapDB(err)
	}
	return count > 0, nil
}

// HasMatchRequestFrom reports whether requestor has requested target for
// any movie. Used for the pending_sent/pending_received candidate status.
func (s *Service) HasMatchRequestFrom(ctx context.Context, requestorID, targetUserID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.MatchRequest{}).
		Where("requestor_id = ? AND target_user_id = ?", requestorID, targetUserID).
		Count(&count).Error
	if err != nil {
		return false, wrapDB(err)
	}
	return count > 0, nil
}

// --- Rooms and memberships ---

// CreateRoomWithMembers creates a room plus both membership rows in one
// transaction (gorm persists the association in the same tx as the room).
// If the unordered pair already has a room - including the case where the
// opposite side of a racing handshake commits first - the unique PairKey
// index rejects the insert and the winning room is re-read and returned.
func (s *Service) CreateRoomWithMembers(ctx context.Context, userA, userB string) (*models.ChatRoom, error) {
	now := time.Now()
	room := &models.ChatRoom{
		RoomID:    uuid.New().String(),
		PairKey:   models.PairKey(userA, userB),
		CreatedAt: now,
		Memberships: []models.ChatMembership{
			{UserID: userA, IsActive: true, JoinedAt: now},
			{UserID: userB, IsActive: true, JoinedAt: now},
		},
	}

	err := s.DB.WithContext(ctx).Create(room).Error
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, wrapDB(err)
	}

	// Lost the pair race: somebody committed this pair's room first.
	winner, rerr := s.GetRoomByPair(ctx, userA, userB)
	if rerr != nil {
		return nil, rerr
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: room vanished after duplicate pair key", models.ErrStorageUnavailable)
	}
	return winner, nil
}

// GetRoomByPair returns the room for the unordered user pair, or nil if the
// pair has never matched.
func (s *Service) GetRoomByPair(ctx context.Context, userA, userB string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.WithContext(ctx).
		Where("pair_key = ?", models.PairKey(userA, userB)).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDB(err)
	}
	return &room, nil
}

func (s *Service) GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.WithContext(ctx).Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDB(err)
	}
	return &room, nil
}

// ListRoomsFor returns the user's rooms, newest membership first.
// Soft-left rooms stay in the list.
func (s *Service) ListRoomsFor(ctx context.Context, userID string) ([]models.RoomSummary, error) {
	var memberships []models.ChatMembership
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("joined_at DESC").
		Find(&memberships).Error
	if err != nil {
		return nil, wrapDB(err)
	}

	summaries := make([]models.RoomSummary, 0, len(memberships))
	for _, m := range memberships {
		summary := models.RoomSummary{RoomID: m.RoomID, IsActive: m.IsActive}

		var other models.ChatMembership
		err := s.DB.WithContext(ctx).
			Where("room_id = ? AND user_id <> ?", m.RoomID, userID).
			First(&other).Error
		if err != nil {
			log.Printf("ERROR: failed to load counterpart for room %s: %v", m.RoomID, err)
			continue
		}
		summary.OtherUserID = other.UserID
		if u, err := s.GetUserByID(ctx, other.UserID); err == nil && u != nil {
			summary.OtherDisplayName = u.DisplayName
		}

		var last []models.Message
		err = s.DB.WithContext(ctx).
			Where("room_id = ?", m.RoomID).
			Order("created_at DESC, id DESC").
			Limit(1).
			Find(&last).Error
		if err == nil && len(last) > 0 {
			summary.LastMessagePreview = previewOf(last[0].Body)
			at := last[0].CreatedAt
			summary.LastMessageAt = &at
		}

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

const previewRunes = 80

func previewOf(body string) string {
	runes := []rune(body)
	if len(runes) <= previewRunes {
		return body
	}
	return string(runes[:previewRunes])
}

// GetMembership returns the membership row, active or not, or nil if the
// user was never placed into the room.
func (s *Service) GetMembership(ctx context.Context, roomID, userID string) (*models.ChatMembership, error) {
	var m models.ChatMembership
	err := s.DB.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapDB(err)
	}
	return &m, nil
}

// SetMembershipActive flips the soft-leave flag. Leaving stamps LeftAt,
// rejoining clears it.
func (s *Service) SetMembershipActive(ctx context.Context, roomID, userID string, active bool) error {
	updates := map[string]interface{}{"is_active": active}
	if active {
		updates["left_at"] = nil
	} else {
		updates["left_at"] = time.Now()
	}
	return wrapDB(s.DB.WithContext(ctx).Model(&models.ChatMembership{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Updates(updates).Error)
}

func (s *Service) IsActiveMember(ctx context.Context, roomID, userID string) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.ChatMembership{}).
		Where("room_id = ? AND user_id = ? AND is_active = ?", roomID, userID, true).
		Count(&count).Error
	if err != nil {
		return false, wrapDB(err)
	}
	return count > 0, nil
}

func (s *Service) GetActiveMemberIDs(ctx context.Context, roomID string) ([]string, error) {
	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.ChatMembership{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, wrapDB(err)
	}
	return ids, nil
}

// --- Messages ---

func (s *Service) SaveMessage(ctx context.Context, msg *models.Message) error {
	return wrapDB(s.DB.WithContext(ctx).Create(msg).Error)
}

// GetMessages returns up to take messages, newest first. A non-nil before
// acts as a pagination cursor: only messages strictly older are returned.
func (s *Service) GetMessages(ctx context.Context, roomID string, take int, before *time.Time) ([]models.Message, error) {
	q := s.DB.WithContext(ctx).Where("room_id = ?", roomID)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	var msgs []models.Message
	err := q.Order("created_at DESC, id DESC").Limit(take).Find(&msgs).Error
	if err != nil {
		return nil, wrapDB(err)
	}
	return msgs, nil
}

// --- Realtime fan-out (Redis Pub/Sub) ---

func roomChannel(roomID string) string { return "room:" + roomID }

// PublishEvent publishes a room event so every server process can fan it
// out to its locally connected members.
func (s *Service) PublishEvent(ctx context.Context, roomID string, ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(ctx, roomChannel(roomID), string(payload)).Err()
}

func (s *Service) SubscribeToRooms(ctx context.Context) *redis.PubSub {
	return s.Redis.PSubscribe(ctx, roomChannel("*"))
}

// --- Catalog cache ---

func movieKey(movieID int64) string { return fmt.Sprintf("movie:%d", movieID) }

// GetCachedMovie returns the cached raw catalog payload, or "" on a miss.
func (s *Service) GetCachedMovie(ctx context.Context, movieID int64) (string, error) {
	payload, err := s.Redis.Get(ctx, movieKey(movieID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return payload, nil
}

func (s *Service) CacheMovie(ctx context.Context, movieID int64, payload string, ttl time.Duration) error {
	return s.Redis.Set(ctx, movieKey(movieID), payload, ttl).Err()
}
