// Package personakit 是一个个性化推荐引擎（Personalization Kit）。
//
// 设计要点：
// - Snapshot-first: 亲和矩阵、物品邻居表、TF-IDF 语料按时间窗口一次构建，全部请求复用
// - Strategy 可互换: 用户协同 / 物品协同 / 内容匹配实现同一接口，混合融合并发执行
// - 依赖显式注入: 数据源、缓存后端、过滤器、冷启动画像源都是引擎字段，无全局状态
package personakit

import (
	"github.com/rushteam/personakit/core"
	"github.com/rushteam/personakit/engine"
)

// 轻量 facade：便于用户直接 import "personakit" 使用核心抽象。
type Engine = engine.Engine
type Config = engine.Config
type Options = core.Options
type Item = core.Item

const (
	AlgorithmUserBased    = core.AlgorithmUserBased
	AlgorithmItemBased    = core.AlgorithmItemBased
	AlgorithmContentBased = core.AlgorithmContentBased
	AlgorithmHybrid       = core.AlgorithmHybrid
)
