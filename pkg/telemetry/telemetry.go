package telemetry

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/KamineHiro/shift-maker/config"
)

// Telemetry OpenTelemetry 链路追踪
// 未启用时使用全局 noop TracerProvider，调用方无需判空
type Telemetry struct {
	provider *sdktrace.TracerProvider
	cfg      config.TelemetryConfig
}

// New 初始化 OTLP gRPC trace 导出
func New(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*Telemetry, error) {
	if !cfg.Enabled || cfg.ExporterURL == "" {
		logger.Info("链路追踪未启用")
		return &Telemetry{cfg: cfg}, nil
	}

	endpoint := cfg.ExporterURL
	for _, p := range []string{"grpc://", "http://", "https://"} {
		endpoint = strings.TrimPrefix(endpoint, p)
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithTLSCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, fmt.Errorf("创建 trace 导出器失败: %w", err)
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", cfg.ServiceName),
	)

	ratio := cfg.SamplingRatio
	if ratio <= 0 || ratio > 1 {
		ratio = 1
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info("链路追踪已启用",
		zap.String("service", cfg.ServiceName),
		zap.String("endpoint", endpoint),
		zap.Float64("sampling_ratio", ratio),
	)

	return &Telemetry{provider: tp, cfg: cfg}, nil
}

// Enabled 是否已启用导出
func (t *Telemetry) Enabled() bool {
	return t.provider != nil
}

// Tracer 获取命名 Tracer
func (t *Telemetry) Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// Shutdown 刷新并关闭导出器
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	if err := t.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("关闭 trace provider 失败: %w", err)
	}
	return nil
}
