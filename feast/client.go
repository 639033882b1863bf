// Package feast 对接 Feast Feature Store，为冷启动用户提供口味画像。
//
// Feast 是开源的 Feature Store（https://github.com/feast-dev/feast），
// 在线存储面向实时预测场景。这里只用到在线特征读取：离线训练产出的
// 用户兴趣特征物化到在线存储后，推荐侧按 user_id 实时取用。
package feast

import (
	"context"
	"time"
)

// Client 是在线特征读取的客户端接口。
// 领域层依赖此接口，gRPC 实现见 GrpcClient；测试用假实现即可。
type Client interface {
	// GetOnlineFeatures 获取在线特征（用于实时预测）
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表，例如 ["user_taste:coffee", "user_taste:laptops"]
	Features []string

	// EntityRows 实体行，例如 [{"user_id": "u1001"}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}

// ClientOption 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig 客户端配置
type ClientConfig struct {
	Endpoint string
	Project  string
	Timeout  time.Duration

	// StaticToken 非空时使用静态 Token 认证
	StaticToken string
}

// WithTimeout 配置选项：设置超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithStaticToken 配置选项：设置静态 Token 认证
func WithStaticToken(token string) ClientOption {
	return func(c *ClientConfig) {
		c.StaticToken = token
	}
}
