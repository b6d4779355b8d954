package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"corp_edu_backend/pkg/logger"
	"corp_edu_backend/pkg/monitoring"
)

type taskKey struct{}

// WithTask 标记本次调用的用途，用于日志与指标
func WithTask(ctx context.Context, task string) context.Context {
	return context.WithValue(ctx, taskKey{}, task)
}

func TaskFrom(ctx context.Context) string {
	if t, ok := ctx.Value(taskKey{}).(string); ok {
		return t
	}
	return "unknown"
}

type loggingProvider struct {
	inner Provider
}

func WithLogging(p Provider) Provider {
	return &loggingProvider{inner: p}
}

func (l *loggingProvider) Name() string { return l.inner.Name() }

func (l *loggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	task := TaskFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	fields := []zap.Field{
		zap.String("provider", l.inner.Name()),
		zap.String("task", task),
		zap.Duration("latency", time.Since(start)),
	}
	if resp != nil {
		fields = append(fields,
			zap.String("model", resp.Model),
			zap.Int("input_tokens", resp.Usage.InputTokens),
			zap.Int("output_tokens", resp.Usage.OutputTokens),
		)
	}

	outcome := "ok"
	if err != nil {
		outcome = string(KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
		logger.Log.Warn("LLM request failed", append(fields, zap.Error(err))...)
	} else {
		logger.Log.Debug("LLM request", fields...)
	}
	monitoring.AIRequests.WithLabelValues(task, outcome).Inc()

	return resp, err
}
