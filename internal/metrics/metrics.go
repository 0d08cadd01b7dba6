package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SigNoz/marketplace-go-app/internal/logger"
	"github.com/SigNoz/marketplace-go-app/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// AppMetrics holds all application metrics
type AppMetrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestsErrors  metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram

	// Database Metrics
	DBQueriesTotal  metric.Int64Counter
	DBQueryDuration metric.Float64Histogram

	// Business Metrics
	ProductsViewed      metric.Int64Counter
	ContainerItemsAdded metric.Int64Counter
	ContainerItemsCount metric.Int64Gauge
	RatingsSubmitted    metric.Int64Counter
	Registrations       metric.Int64Counter
	ScopeDenials        metric.Int64Counter

	// Application Metrics
	ActiveUsersCount metric.Int64Gauge
	CacheHits        metric.Int64Counter
	CacheMisses      metric.Int64Counter

	// Service name for adding to all metrics
	serviceName string
}

// InitMetrics initializes OpenTelemetry metrics
func InitMetrics(ctx context.Context, cfg *config.Config, log *logger.Logger) (*AppMetrics, *sdkmetric.MeterProvider, error) {
	// Use resource.Env() to read from environment variables (OTEL_SERVICE_NAME, etc.)
	// Then merge with explicit attributes to ensure service.name is set correctly
	envRes, err := resource.New(ctx, resource.WithFromEnv())
	if err != nil {
		envRes = resource.Empty()
	}

	explicitRes, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.OTELServiceName),
			semconv.ServiceVersion(cfg.OTELServiceVersion),
			attribute.String("deployment.environment", cfg.OTELDeploymentEnvironment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create explicit resource: %w", err)
	}

	// Merge resources: explicit attributes take precedence over env
	res, err := resource.Merge(envRes, explicitRes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to merge resources: %w", err)
	}

	name := serviceNameOf(res)
	if name == "" {
		return nil, nil, fmt.Errorf("service.name is not set in resource attributes")
	}
	if name != cfg.OTELServiceName {
		log.Warn("service name mismatch", "config", cfg.OTELServiceName, "resource", name)
	}

	if !cfg.OTELMetricsEnabled {
		log.Info("metrics export disabled")
		meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
		m, err := New(meterProvider.Meter(cfg.OTELServiceName), cfg.OTELServiceName)
		if err != nil {
			return nil, nil, err
		}
		return m, meterProvider, nil
	}

	// WithEndpoint expects host:port without a scheme, e.g. ingest.<region>.signoz.cloud:443
	// or localhost:4318. WithInsecure is only for plain http endpoints.
	exporterOpts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(cfg.OTELExporterOTLPEndpoint),
		otlpmetrichttp.WithURLPath("/v1/metrics"),
	}

	headers := parseHeaders(cfg.OTELExporterOTLPHeaders)
	if len(headers) > 0 {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithHeaders(headers))
	}

	if cfg.OTELExporterOTLPInsecure {
		exporterOpts = append(exporterOpts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, exporterOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	log.Info("metrics exporter configured",
		"endpoint", cfg.OTELExporterOTLPEndpoint,
		"path", "/v1/metrics",
		"headers", len(headers),
		"insecure", cfg.OTELExporterOTLPInsecure,
		"interval", "10s",
		"service_name", cfg.OTELServiceName,
	)

	reader := sdkmetric.NewPeriodicReader(exporter,
		sdkmetric.WithInterval(10*time.Second),
	)

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)

	otel.SetMeterProvider(meterProvider)

	m, err := New(meterProvider.Meter(cfg.OTELServiceName), cfg.OTELServiceName)
	if err != nil {
		return nil, nil, err
	}
	return m, meterProvider, nil
}

// NewNoop returns metrics backed by a no-op meter.
func NewNoop() *AppMetrics {
	m, err := New(noop.NewMeterProvider().Meter("noop"), "noop")
	if err != nil {
		// the no-op meter never fails to create instruments
		panic(err)
	}
	return m
}

// New creates all application instruments on meter.
func New(meter metric.Meter, serviceName string) (*AppMetrics, error) {
	// SigNoz default histogram buckets in milliseconds, expanded to 60s
	buckets := []float64{2, 4, 6, 8, 10, 50, 100, 200, 400, 800, 1000, 1400, 2000, 5000, 10000, 15000, 20000, 30000, 45000, 60000}

	m := &AppMetrics{serviceName: serviceName}
	var err error

	// HTTP metrics
	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http requests counter: %w", err)
	}

	if m.HTTPRequestsErrors, err = meter.Int64Counter(
		"http.server.request.error.count",
		metric.WithDescription("Total number of HTTP error requests"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http errors counter: %w", err)
	}

	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	// Database metrics
	if m.DBQueriesTotal, err = meter.Int64Counter(
		"db.client.queries.count",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create db queries counter: %w", err)
	}

	if m.DBQueryDuration, err = meter.Float64Histogram(
		"db.client.queries.duration",
		metric.WithDescription("Database query duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(buckets...),
	); err != nil {
		return nil, fmt.Errorf("failed to create db duration histogram: %w", err)
	}

	// Business metrics
	if m.ProductsViewed, err = meter.Int64Counter(
		"products_viewed_total",
		metric.WithDescription("Total number of product detail views"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create products viewed counter: %w", err)
	}

	if m.ContainerItemsAdded, err = meter.Int64Counter(
		"container_items_added_total",
		metric.WithDescription("Total number of items added to carts, wishlists and orders"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create container items counter: %w", err)
	}

	if m.ContainerItemsCount, err = meter.Int64Gauge(
		"container_items_count",
		metric.WithDescription("Number of items in the most recently modified container"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create container items gauge: %w", err)
	}

	if m.RatingsSubmitted, err = meter.Int64Counter(
		"ratings_submitted_total",
		metric.WithDescription("Total number of product ratings created, updated or deleted"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create ratings counter: %w", err)
	}

	if m.Registrations, err = meter.Int64Counter(
		"registrations_total",
		metric.WithDescription("Total number of completed registrations"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create registrations counter: %w", err)
	}

	if m.ScopeDenials, err = meter.Int64Counter(
		"scope_denials_total",
		metric.WithDescription("Total number of company scope authorization denials"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create scope denials counter: %w", err)
	}

	// Application metrics
	if m.ActiveUsersCount, err = meter.Int64Gauge(
		"active_users_count",
		metric.WithDescription("Currently active authenticated users"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create active users gauge: %w", err)
	}

	if m.CacheHits, err = meter.Int64Counter(
		"cache_hits_total",
		metric.WithDescription("Total number of cache hits"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cache hits counter: %w", err)
	}

	if m.CacheMisses, err = meter.Int64Counter(
		"cache_misses_total",
		metric.WithDescription("Total number of cache misses"),
		metric.WithUnit("1"),
	); err != nil {
		return nil, fmt.Errorf("failed to create cache misses counter: %w", err)
	}

	return m, nil
}

// WithServiceName adds service.name to attributes
func (m *AppMetrics) WithServiceName(attrs []attribute.KeyValue) []attribute.KeyValue {
	return append(attrs, attribute.String("service.name", m.serviceName))
}

// Add increments counter by one with the given attributes plus service.name
func (m *AppMetrics) Add(ctx context.Context, counter metric.Int64Counter, attrs ...attribute.KeyValue) {
	counter.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))
}

// RecordDBQuery records database query metrics including the SQL statement
func (m *AppMetrics) RecordDBQuery(ctx context.Context, operation, table, statement string, start time.Time, success bool) {
	duration := time.Since(start).Milliseconds()

	status := "success"
	if !success {
		status = "error"
	}

	attrs := []attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
		attribute.String("db.statement", statement),
		attribute.String("db.system", "mysql"),
		attribute.String("status", status),
	}

	m.DBQueriesTotal.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))
	m.DBQueryDuration.Record(ctx, float64(duration), metric.WithAttributes(m.WithServiceName(attrs)...))
}

// RecordContainerItems records an item added to a container and its new size
func (m *AppMetrics) RecordContainerItems(ctx context.Context, kind string, added bool, count int64) {
	attrs := []attribute.KeyValue{attribute.String("container.kind", kind)}
	if added {
		m.ContainerItemsAdded.Add(ctx, 1, metric.WithAttributes(m.WithServiceName(attrs)...))
	}
	m.ContainerItemsCount.Record(ctx, count, metric.WithAttributes(m.WithServiceName(attrs)...))
}

func serviceNameOf(res *resource.Resource) string {
	for _, kv := range res.Attributes() {
		if kv.Key == semconv.ServiceNameKey {
			return kv.Value.AsString()
		}
	}
	return ""
}

// parseHeaders parses header string in format "key1=value1,key2=value2"
// and returns a map of headers
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	if headerStr == "" {
		return headers
	}

	pairs := strings.Split(headerStr, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}
