package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// FeatureCache 诊所功能开关的Redis缓存
// Redis不可用时调用方直接回源数据库，缓存只是加速，不承担正确性
type FeatureCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewFeatureCache 创建功能开关缓存
func NewFeatureCache(client *redis.Client, prefix string) *FeatureCache {
	return &FeatureCache{
		client: client,
		prefix: prefix,
		ttl:    5 * time.Minute,
	}
}

func (c *FeatureCache) key(clinicID uint) string {
	return fmt.Sprintf("%s:features:%d", c.prefix, clinicID)
}

// Get 读取缓存的功能开关映射，未命中或Redis异常返回nil
func (c *FeatureCache) Get(ctx context.Context, clinicID uint) map[string]bool {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, c.key(clinicID)).Bytes()
	if err != nil {
		return nil
	}

	var features map[string]bool
	if err := json.Unmarshal(data, &features); err != nil {
		return nil
	}
	return features
}

// Set 写入功能开关映射
func (c *FeatureCache) Set(ctx context.Context, clinicID uint, features map[string]bool) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(features)
	if err != nil {
		return
	}
	// 写失败忽略，下次回源
	c.client.Set(ctx, c.key(clinicID), data, c.ttl)
}

// Invalidate 功能开关变更后失效缓存
func (c *FeatureCache) Invalidate(ctx context.Context, clinicID uint) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, c.key(clinicID))
}
