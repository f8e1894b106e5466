package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "medsync"

// Counter создает счетчик в глобальном MeterProvider. Пока провайдер не
// настроен, счетчик ничего не делает. При ошибке создания возвращается noop.
func Counter(name, description string) metric.Int64Counter {
	c, err := otel.Meter(instrumentationName).Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// Tracer возвращает трейсер сервиса
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}
