package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kendall-kelly/kendalls-studio-api/config"
	"github.com/kendall-kelly/kendalls-studio-api/models"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTokenTaken is returned by Save when the code is already in use
var ErrTokenTaken = errors.New("verification code already in use")

// VerificationTokenStore keeps one pending verification code per user
type VerificationTokenStore interface {
	// Save stores the token, replacing any earlier token of the same user
	Save(ctx context.Context, token models.VerificationToken) error

	// Find looks a token up by code. Unknown codes yield ErrNotFound.
	Find(ctx context.Context, code string) (*models.VerificationToken, error)

	// Delete consumes a token
	Delete(ctx context.Context, code string) error

	// PurgeExpired removes tokens that expired before now and returns how many
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// txTokenStore is a store that can join a transaction on the user database
type txTokenStore interface {
	WithTx(tx *gorm.DB) VerificationTokenStore
}

// NewVerificationTokenStore builds the store selected by TOKEN_STORE
func NewVerificationTokenStore(cfg *config.Config, db *gorm.DB) (VerificationTokenStore, error) {
	switch cfg.TokenStore {
	case "", "gorm":
		return NewGormTokenStore(db), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		logrus.WithField("addr", cfg.RedisAddr).Info("Using Redis verification token store")
		return NewRedisTokenStore(client), nil
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
	}
}

// GormTokenStore keeps tokens in the verification_tokens table
type GormTokenStore struct {
	db *gorm.DB
}

func NewGormTokenStore(db *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: db}
}

// WithTx returns a store that reads and writes through tx
func (s *GormTokenStore) WithTx(tx *gorm.DB) VerificationTokenStore {
	return &GormTokenStore{db: tx}
}

func (s *GormTokenStore) Save(ctx context.Context, token models.VerificationToken) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", token.UserID).Delete(&models.VerificationToken{}).Error; err != nil {
			return fmt.Errorf("failed to replace verification token: %w", err)
		}
		token.ID = 0
		err := tx.Omit(clause.Associations).Create(&token).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrTokenTaken
		}
		if err != nil {
			return fmt.Errorf("failed to store verification token: %w", err)
		}
		return nil
	})
}

func (s *GormTokenStore) Find(ctx context.Context, code string) (*models.VerificationToken, error) {
	var token models.VerificationToken
	err := s.db.WithContext(ctx).Where("token = ?", code).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "VERIFICATION_TOKEN_NOT_FOUND", "verification token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load verification token: %w", err)
	}
	return &token, nil
}

func (s *GormTokenStore) Delete(ctx context.Context, code string) error {
	if err := s.db.WithContext(ctx).Where("token = ?", code).Delete(&models.VerificationToken{}).Error; err != nil {
		return fmt.Errorf("failed to delete verification token: %w", err)
	}
	return nil
}

func (s *GormTokenStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expiration < ?", now).Delete(&models.VerificationToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge verification tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// RedisTokenStore keeps tokens as keys with a native TTL, so expired tokens
// vanish on their own.
type RedisTokenStore struct {
	client redis.UniversalClient
}

func NewRedisTokenStore(client redis.UniversalClient) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

type redisToken struct {
	UserID     uint      `json:"user_id"`
	Expiration time.Time `json:"expiration"`
}

func redisCodeKey(code string) string {
	return "verification:code:" + code
}

func redisUserKey(userID uint) string {
	return "verification:user:" + strconv.FormatUint(uint64(userID), 10)
}

func (s *RedisTokenStore) Save(ctx context.Context, token models.VerificationToken) error {
	ttl := time.Until(token.Expiration)
	if ttl <= 0 {
		return fmt.Errorf("verification token already expired")
	}
	payload, err := json.Marshal(redisToken{UserID: token.UserID, Expiration: token.Expiration})
	if err != nil {
		return fmt.Errorf("failed to encode verification token: %w", err)
	}

	ok, err := s.client.SetNX(ctx, redisCodeKey(token.Token), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store verification token: %w", err)
	}
	if !ok {
		return ErrTokenTaken
	}

	previous, err := s.client.GetSet(ctx, redisUserKey(token.UserID), token.Token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to index verification token: %w", err)
	}
	if err := s.client.Expire(ctx, redisUserKey(token.UserID), ttl).Err(); err != nil {
		return fmt.Errorf("failed to expire verification token index: %w", err)
	}
	if previous != "" && previous != token.Token {
		if err := s.client.Del(ctx, redisCodeKey(previous)).Err(); err != nil {
			return fmt.Errorf("failed to replace verification token: %w", err)
		}
	}
	return nil
}

func (s *RedisTokenStore) Find(ctx context.Context, code string) (*models.VerificationToken, error) {
	raw, err := s.client.Get(ctx, redisCodeKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, newError(ErrNotFound, "VERIFICATION_TOKEN_NOT_FOUND", "verification token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load verification token: %w", err)
	}

	var stored redisToken
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode verification token: %w", err)
	}
	return &models.VerificationToken{Token: code, UserID: stored.UserID, Expiration: stored.Expiration}, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, code string) error {
	token, err := s.Find(ctx, code)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, redisCodeKey(code), redisUserKey(token.UserID)).Err(); err != nil {
		return fmt.Errorf("failed to delete verification token: %w", err)
	}
	return nil
}

// PurgeExpired is a no-op: Redis expires keys itself
func (s *RedisTokenStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// Close releases the Redis connection pool
func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}
