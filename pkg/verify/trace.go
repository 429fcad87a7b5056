package verify

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/tqbf/shasync/pkg/verify")
