package world

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/opd-ai/go-hoverslam/pkg/world"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
