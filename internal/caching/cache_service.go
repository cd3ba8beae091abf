package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"casaops/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type CacheService interface {
	// Property caching
	GetProperty(ctx context.Context, tenantID, propertyID uuid.UUID) (*models.Property, error)
	SetProperty(ctx context.Context, tenantID uuid.UUID, property *models.Property, ttl time.Duration) error
	DeleteProperty(ctx context.Context, tenantID, propertyID uuid.UUID) error

	// Booking caching
	GetBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*models.Booking, error)
	SetBooking(ctx context.Context, tenantID uuid.UUID, booking *models.Booking, ttl time.Duration) error
	DeleteBooking(ctx context.Context, tenantID, bookingID uuid.UUID) error

	// Dashboard stats caching
	GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (map[string]interface{}, error)
	SetDashboardStats(ctx context.Context, tenantID uuid.UUID, stats map[string]interface{}, ttl time.Duration) error

	// Cache invalidation
	InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error

	// Session management
	SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	IncrementRateLimit(ctx context.Context, key string, window time.Duration) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port URLs as well as bare host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetProperty(ctx context.Context, tenantID, propertyID uuid.UUID) (*models.Property, error) {
	key := fmt.Sprintf("casaops:property:%s:%s", tenantID.String(), propertyID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var property models.Property
	if err := json.Unmarshal(data, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *redisCacheService) SetProperty(ctx context.Context, tenantID uuid.UUID, property *models.Property, ttl time.Duration) error {
	key := fmt.Sprintf("casaops:property:%s:%s", tenantID.String(), property.ID.String())
	data, err := json.Marshal(property)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteProperty(ctx context.Context, tenantID, propertyID uuid.UUID) error {
	key := fmt.Sprintf("casaops:property:%s:%s", tenantID.String(), propertyID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetBooking(ctx context.Context, tenantID, bookingID uuid.UUID) (*models.Booking, error) {
	key := fmt.Sprintf("casaops:booking:%s:%s", tenantID.String(), bookingID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var booking models.Booking
	if err := json.Unmarshal(data, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *redisCacheService) SetBooking(ctx context.Context, tenantID uuid.UUID, booking *models.Booking, ttl time.Duration) error {
	key := fmt.Sprintf("casaops:booking:%s:%s", tenantID.String(), booking.ID.String())
	data, err := json.Marshal(booking)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteBooking(ctx context.Context, tenantID, bookingID uuid.UUID) error {
	key := fmt.Sprintf("casaops:booking:%s:%s", tenantID.String(), bookingID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetDashboardStats(ctx context.Context, tenantID uuid.UUID) (map[string]interface{}, error) {
	key := fmt.Sprintf("casaops:dashboard:%s", tenantID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *redisCacheService) SetDashboardStats(ctx context.Context, tenantID uuid.UUID, stats map[string]interface{}, ttl time.Duration) error {
	key := fmt.Sprintf("casaops:dashboard:%s", tenantID.String())
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

// InvalidateTenantCache drops every cached entry for a tenant.
func (r *redisCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	patterns := []string{
		fmt.Sprintf("casaops:property:%s:*", tenantID.String()),
		fmt.Sprintf("casaops:booking:%s:*", tenantID.String()),
		fmt.Sprintf("casaops:dashboard:%s", tenantID.String()),
	}

	for _, pattern := range patterns {
		iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
				log.Printf("Failed to delete cache key %s: %v", iter.Val(), err)
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *redisCacheService) SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	key := fmt.Sprintf("casaops:session:%s", sessionID)
	return r.client.Set(ctx, key, userID, ttl).Err()
}

func (r *redisCacheService) GetSession(ctx context.Context, sessionID string) (string, error) {
	key := fmt.Sprintf("casaops:session:%s", sessionID)
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf("casaops:session:%s", sessionID)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("casaops:ratelimit:%s", key)
	count, err := r.client.Get(ctx, redisKey).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= limit, nil
}

func (r *redisCacheService) IncrementRateLimit(ctx context.Context, key string, window time.Duration) error {
	redisKey := fmt.Sprintf("casaops:ratelimit:%s", key)
	pipe := r.client.TxPipeline()
	pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	_, err := pipe.Exec(ctx)
	return err
}
