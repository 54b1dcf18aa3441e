package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL 상수 정의
const (
	TTLTenant  = 1 * time.Minute  // 테넌트 조회 (서브도메인/도메인)
	TTLQuery   = 30 * time.Second // 컬렉션 쿼리 결과
	TTLDefault = 5 * time.Minute  // 기본값
)

// 캐시 키 접두사
const (
	PrefixTenantSubdomain = "tenant:sub:"
	PrefixTenantDomain    = "tenant:domain:"
	PrefixQuery           = "query:"
)

// ErrMiss is returned by getters when the key is absent
var ErrMiss = errors.New("cache miss")

// Service Redis 캐시 서비스 인터페이스
type Service interface {
	// 기본 캐시 연산
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// 테넌트 캐시
	GetTenantBySubdomain(ctx context.Context, subdomain string, dest interface{}) error
	SetTenantBySubdomain(ctx context.Context, subdomain string, data interface{}) error
	GetTenantByDomain(ctx context.Context, host string, dest interface{}) error
	SetTenantByDomain(ctx context.Context, host string, data interface{}) error
	InvalidateTenant(ctx context.Context, subdomain string, host string) error

	// 컬렉션 쿼리 캐시
	GetQuery(ctx context.Context, tenantID, collectionID, viewID string, dest interface{}) error
	SetQuery(ctx context.Context, tenantID, collectionID, viewID string, data interface{}) error
	InvalidateQueries(ctx context.Context, tenantID string) error

	// 유틸리티
	IsAvailable() bool
	Ping(ctx context.Context) error
}

// Options overrides the default TTLs
type Options struct {
	TenantTTL time.Duration
	QueryTTL  time.Duration
}

// redisCache Redis 기반 캐시 구현
type redisCache struct {
	client    *redis.Client
	tenantTTL time.Duration
	queryTTL  time.Duration
}

// NewService 새로운 캐시 서비스 생성
func NewService(client *redis.Client, opts Options) Service {
	c := &redisCache{client: client, tenantTTL: TTLTenant, queryTTL: TTLQuery}
	if opts.TenantTTL > 0 {
		c.tenantTTL = opts.TenantTTL
	}
	if opts.QueryTTL > 0 {
		c.queryTTL = opts.QueryTTL
	}
	return c
}

// IsAvailable Redis 연결 가능 여부
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping Redis 연결 테스트
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get 캐시에서 값 조회
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set 캐시에 값 저장
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // Redis 없으면 무시
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete 캐시 삭제
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Exists 캐시 존재 여부 확인
func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// ========================================
// 테넌트 캐시
// ========================================

func (c *redisCache) GetTenantBySubdomain(ctx context.Context, subdomain string, dest interface{}) error {
	return c.Get(ctx, PrefixTenantSubdomain+subdomain, dest)
}

func (c *redisCache) SetTenantBySubdomain(ctx context.Context, subdomain string, data interface{}) error {
	return c.Set(ctx, PrefixTenantSubdomain+subdomain, data, c.tenantTTL)
}

func (c *redisCache) GetTenantByDomain(ctx context.Context, host string, dest interface{}) error {
	return c.Get(ctx, PrefixTenantDomain+host, dest)
}

func (c *redisCache) SetTenantByDomain(ctx context.Context, host string, data interface{}) error {
	return c.Set(ctx, PrefixTenantDomain+host, data, c.tenantTTL)
}

func (c *redisCache) InvalidateTenant(ctx context.Context, subdomain string, host string) error {
	var keys []string
	if subdomain != "" {
		keys = append(keys, PrefixTenantSubdomain+subdomain)
	}
	if host != "" {
		keys = append(keys, PrefixTenantDomain+host)
	}
	return c.Delete(ctx, keys...)
}

// ========================================
// 컬렉션 쿼리 캐시
// ========================================

func (c *redisCache) queryKey(tenantID, collectionID, viewID string) string {
	if viewID == "" {
		viewID = "default"
	}
	return fmt.Sprintf("%s%s:%s:%s", PrefixQuery, tenantID, collectionID, viewID)
}

func (c *redisCache) GetQuery(ctx context.Context, tenantID, collectionID, viewID string, dest interface{}) error {
	return c.Get(ctx, c.queryKey(tenantID, collectionID, viewID), dest)
}

func (c *redisCache) SetQuery(ctx context.Context, tenantID, collectionID, viewID string, data interface{}) error {
	return c.Set(ctx, c.queryKey(tenantID, collectionID, viewID), data, c.queryTTL)
}

func (c *redisCache) InvalidateQueries(ctx context.Context, tenantID string) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixQuery+tenantID+":*")
}

// deleteByPattern 패턴 매칭 키 삭제 (SCAN 사용)
func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}
