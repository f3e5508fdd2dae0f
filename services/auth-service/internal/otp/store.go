package otp

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrRateLimited  = errors.New("too many otp requests")
	ErrCodeExpired  = errors.New("otp code expired or not requested")
	ErrTooManyTries = errors.New("too many otp attempts")
	ErrCodeMismatch = errors.New("otp code mismatch")
)

// Store keeps pending OTP codes in Redis. Only a bcrypt hash of the code is
// stored; the plaintext travels once, through the notification pipeline.
type Store struct {
	rdb         *redis.Client
	codeTTL     time.Duration
	windowTTL   time.Duration
	maxRequests int
	maxAttempts int
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{
		rdb:         rdb,
		codeTTL:     5 * time.Minute,
		windowTTL:   10 * time.Minute,
		maxRequests: 3,
		maxAttempts: 5,
	}
}

func key(kind, barbershopID, phone string) string {
	return "otp:" + kind + ":" + barbershopID + ":" + phone
}

// Issue enforces the per-phone request window, then stores the code hash.
// A re-request inside the window replaces the previous code and resets the
// attempt counter.
func (s *Store) Issue(ctx context.Context, barbershopID, phone, code string) error {
	reqKey := key("req", barbershopID, phone)
	cnt, err := s.rdb.Incr(ctx, reqKey).Result()
	if err != nil {
		return err
	}
	if cnt == 1 {
		if err := s.rdb.Expire(ctx, reqKey, s.windowTTL).Err(); err != nil {
			return err
		}
	}
	if cnt > int64(s.maxRequests) {
		return ErrRateLimited
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key("code", barbershopID, phone), string(hash), s.codeTTL)
	pipe.Del(ctx, key("tries", barbershopID, phone))
	_, err = pipe.Exec(ctx)
	return err
}

// Check verifies the submitted code against the stored hash. The code is
// single-use: it is deleted on success. Attempts beyond the cap burn the
// code entirely.
func (s *Store) Check(ctx context.Context, barbershopID, phone, code string) error {
	codeKey := key("code", barbershopID, phone)
	hash, err := s.rdb.Get(ctx, codeKey).Result()
	if err == redis.Nil {
		return ErrCodeExpired
	}
	if err != nil {
		return err
	}

	triesKey := key("tries", barbershopID, phone)
	tries, err := s.rdb.Incr(ctx, triesKey).Result()
	if err != nil {
		return err
	}
	if tries == 1 {
		if err := s.rdb.Expire(ctx, triesKey, s.codeTTL).Err(); err != nil {
			return err
		}
	}
	if tries > int64(s.maxAttempts) {
		_ = s.rdb.Del(ctx, codeKey).Err()
		return ErrTooManyTries
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)); err != nil {
		return ErrCodeMismatch
	}

	return s.rdb.Del(ctx, codeKey, triesKey).Err()
}
