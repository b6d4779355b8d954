package llm

import (
	"context"
	"fmt"
	"time"

	"corp_edu_backend/internal/config"
)

// New 按配置创建 provider，调用链为 retry -> logging -> base
func New(ctx context.Context, cfg config.AIConfig) (Provider, error) {
	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.APIKey, cfg.Model)
	case "openai":
		base, err = NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.APIKey, cfg.Model)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, &Error{Kind: KindConfig, Err: fmt.Errorf("unknown ai provider %q", cfg.Provider)}
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	return WithRetry(WithLogging(base), DefaultRetryConfig(cfg.MaxRetries)), nil
}

// Timeout 单次调用的超时时间
func Timeout(cfg config.AIConfig) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// disabledProvider 启动时 provider 初始化失败的占位，所有调用返回配置错误
type disabledProvider struct {
	cause error
}

func Disabled(cause error) Provider {
	return &disabledProvider{cause: cause}
}

func (d *disabledProvider) Name() string { return "disabled" }

func (d *disabledProvider) Generate(context.Context, Request) (*Response, error) {
	return nil, &Error{Kind: KindConfig, Err: d.cause}
}
