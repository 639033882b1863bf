// Package cache 负责推荐结果的读穿透缓存。
//
// 结果集整体读写：同一 (用户, 场景, 算法) 的缓存条目是完整的一份
// 推荐列表，替换时先删后写，不做逐项合并。存储层故障一律降级为
// 未命中/跳过写入，绝不把缓存问题暴露给推荐调用方。
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/rushteam/personakit/core"
)

// DefaultTTL 是缓存条目的默认有效期。
const DefaultTTL = 24 * time.Hour

// CachedSet 是缓存里的一份推荐结果集。
// ExpiresAt 冗余存一份：即使后端不支持 TTL（或 TTL 配置被改短/改长），
// 读取侧也能独立判断过期。
type CachedSet struct {
	UserID      string       `json:"user_id"`
	Context     string       `json:"context,omitempty"`
	Results     []*core.Item `json:"results"`
	GeneratedAt time.Time    `json:"generated_at"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// RecommendationCache 把任意 core.Store 包装成推荐结果缓存。
type RecommendationCache struct {
	Backend core.Store
	// TTL <= 0 时使用 DefaultTTL
	TTL       time.Duration
	KeyPrefix string
	Logger    zerolog.Logger

	// Now 供测试注入时钟；为 nil 时使用 time.Now
	Now func() time.Time
}

func New(backend core.Store, ttl time.Duration, logger zerolog.Logger) *RecommendationCache {
	return &RecommendationCache{Backend: backend, TTL: ttl, Logger: logger}
}

func (c *RecommendationCache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *RecommendationCache) ttl() time.Duration {
	if c.TTL > 0 {
		return c.TTL
	}
	return DefaultTTL
}

// Key 生成缓存键。同一用户在不同场景、不同算法下各有独立条目。
func (c *RecommendationCache) Key(userID, scene, algorithm string) string {
	prefix := c.KeyPrefix
	if prefix == "" {
		prefix = "rec"
	}
	if scene == "" {
		scene = "default"
	}
	return prefix + ":" + userID + ":" + scene + ":" + algorithm
}

// Store 写入一份结果集，覆盖该键下的旧条目（先删后写）。
// 后端故障只记日志，不向上返回。
func (c *RecommendationCache) Store(ctx context.Context, userID, scene, algorithm string, items []*core.Item) {
	if c == nil || c.Backend == nil {
		return
	}
	now := c.now()
	set := CachedSet{
		UserID:      userID,
		Context:     scene,
		Results:     items,
		GeneratedAt: now,
		ExpiresAt:   now.Add(c.ttl()),
	}
	data, err := json.Marshal(set)
	if err != nil {
		c.Logger.Warn().Err(err).Str("user_id", userID).Msg("cache marshal failed, skip store")
		return
	}
	key := c.Key(userID, scene, algorithm)
	if err := c.Backend.Delete(ctx, key); err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
	}
	ttlSeconds := int(c.ttl() / time.Second)
	if err := c.Backend.Set(ctx, key, data, ttlSeconds); err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("cache store failed")
	}
}

// Retrieve 读取未过期的结果集；未命中/已过期/后端故障统一返回 (nil, false)。
func (c *RecommendationCache) Retrieve(ctx context.Context, userID, scene, algorithm string) ([]*core.Item, bool) {
	if c == nil || c.Backend == nil {
		return nil, false
	}
	key := c.Key(userID, scene, algorithm)
	data, err := c.Backend.Get(ctx, key)
	if err != nil {
		if !core.IsStoreNotFound(err) {
			c.Logger.Warn().Err(err).Str("key", key).Msg("cache read failed, treating as miss")
		}
		return nil, false
	}
	var set CachedSet
	if err := json.Unmarshal(data, &set); err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupted, treating as miss")
		return nil, false
	}
	if !c.now().Before(set.ExpiresAt) {
		return nil, false
	}
	return set.Results, true
}

// Invalidate 主动删除某条缓存（用户画像大幅变化等场景使用）。
func (c *RecommendationCache) Invalidate(ctx context.Context, userID, scene, algorithm string) {
	if c == nil || c.Backend == nil {
		return
	}
	key := c.Key(userID, scene, algorithm)
	if err := c.Backend.Delete(ctx, key); err != nil {
		c.Logger.Warn().Err(err).Str("key", key).Msg("cache invalidate failed")
	}
}
