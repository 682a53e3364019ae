package match_test

import (
	"cinematch/backend/internal/models"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of the storage.Storage interface.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) SetLike(ctx context.Context, userID string, movieID int64, liked bool) error {
	args := m.Called(ctx, userID, movieID, liked)
	return args.Error(0)
}

func (m *MockStorage) GetLikedMovieIDs(ctx context.Context, userID string) ([]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockStorage) GetLikersOf(ctx context.Context, movieIDs []int64, excludeUserID string) (map[string][]int64, error) {
	args := m.Called(ctx, movieIDs, excludeUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]int64), args.Error(1)
}

func (m *MockStorage) CreateMatchRequest(ctx context.Context, req *models.MatchRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockStorage) MatchRequestExists(ctx context.Context, requestorID, targetUserID string, movieID int64) (bool, error) {
	args := m.Called(ctx, requestorID, targetUserID, movieID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) HasMatchRequestFrom(ctx context.Context, requestorID, targetUserID string) (bool, error) {
	args := m.Called(ctx, requestorID, targetUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) CreateRoomWithMembers(ctx context.Context, userA, userB string) (*models.ChatRoom, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) GetRoomByPair(ctx context.Context, userA, userB string) (*models.ChatRoom, error) {
	args := m.Called(ctx, userA, userB)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) GetRoomByID(ctx context.Context, roomID string) (*models.ChatRoom, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) ListRoomsFor(ctx context.Context, userID string) ([]models.RoomSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RoomSummary), args.Error(1)
}

func (m *MockStorage) GetMembership(ctx context.Context, roomID, userID string) (*models.ChatMembership, error) {
	args := m.Called(ctx, roomID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMembership), args.Error(1)
}

func (m *MockStorage) SetMembershipActive(ctx context.Context, roomID, userID string, active bool) error {
	args := m.Called(ctx, roomID, userID, active)
	return args.Error(0)
}

func (m *MockStorage) IsActiveMember(ctx context.Context, roomID, userID string) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetActiveMemberIDs(ctx context.Context, roomID string) ([]string, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockStorage) GetMessages(ctx context.Context, roomID string, take int, before *time.Time) ([]models.Message, error) {
	args := m.Called(ctx, roomID, take, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Message), args.Error(1)
}

func (m *MockStorage) PublishEvent(ctx context.Context, roomID string, ev models.Event) error {
	args := m.Called(ctx, roomID, ev)
	return args.Error(0)
}

func (m *MockStorage) SubscribeToRooms(ctx context.Context) *redis.PubSub {
	args := m.Called(ctx)
	return args.Get(0).(*redis.PubSub)
}

func (m *MockStorage) GetCachedMovie(ctx context.Context, movieID int64) (string, error) {
	args := m.Called(ctx, movieID)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) CacheMovie(ctx context.Context, movieID int64, payload string, ttl time.Duration) error {
	args := m.Called(ctx, movieID, payload, ttl)
	return args.Error(0)
}
