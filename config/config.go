// Package config 提供 YAML 配置的加载与装配：从配置文件构建引擎、缓存后端
// 与过滤器链。
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/personakit/engine"
	"github.com/rushteam/personakit/hybrid"
)

// File 是配置文件的顶层结构。
//
// 示例：
//
//	engine:
//	  window_days: 30
//	  snapshot_ttl_seconds: 600
//	  default_top_n: 10
//	  weights:
//	    user_based: 0.4
//	    item_based: 0.4
//	    content_based: 0.2
//	cache:
//	  backend: redis
//	  addr: "127.0.0.1:6379"
//	  ttl_seconds: 86400
//	filters:
//	  - type: filter.rule
//	    name: no-clearance
//	    params:
//	      expr: 'item.category == "clearance"'
type File struct {
	Engine  EngineConfig   `yaml:"engine"`
	Cache   CacheConfig    `yaml:"cache"`
	Filters []FilterConfig `yaml:"filters"`
}

// EngineConfig 是 engine.Config 的 YAML 形态。
// 时长一律用整型秒数表达，避免各 YAML 实现对 duration 字符串的分歧。
type EngineConfig struct {
	WindowDays            int            `yaml:"window_days"`
	SnapshotTTLSeconds    int            `yaml:"snapshot_ttl_seconds"`
	NeighborK             int            `yaml:"neighbor_k"`
	ItemNeighborK         int            `yaml:"item_neighbor_k"`
	MaxEventWeight        float64        `yaml:"max_event_weight"`
	DefaultTopN           int            `yaml:"default_top_n"`
	Weights               hybrid.Weights `yaml:"weights"`
	RequestTimeoutSeconds int            `yaml:"request_timeout_seconds"`
}

// CacheConfig 描述缓存后端。Backend 为空表示不启用缓存。
type CacheConfig struct {
	// Backend 为 "memory" 或 "redis"
	Backend    string `yaml:"backend"`
	Addr       string `yaml:"addr"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	KeyPrefix  string `yaml:"key_prefix"`
}

// FilterConfig 是配置驱动的过滤器声明，Params 交给对应的 FilterBuilder 解析。
type FilterConfig struct {
	Type   string         `yaml:"type"`
	Name   string         `yaml:"name"`
	Params map[string]any `yaml:"params"`
}

// Load 从文件读取并解析配置。
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse 解析 YAML 配置内容。
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &f, nil
}

// EngineConfig 转为引擎运行参数。
func (c EngineConfig) Runtime() engine.Config {
	return engine.Config{
		WindowDays:     c.WindowDays,
		SnapshotTTL:    time.Duration(c.SnapshotTTLSeconds) * time.Second,
		NeighborK:      c.NeighborK,
		ItemNeighborK:  c.ItemNeighborK,
		MaxEventWeight: c.MaxEventWeight,
		DefaultTopN:    c.DefaultTopN,
		Weights:        c.Weights,
		RequestTimeout: time.Duration(c.RequestTimeoutSeconds) * time.Second,
	}
}
