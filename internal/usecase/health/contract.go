package health

import "context"

// StorePinger checks cache store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// GatewayChecker checks generation provider availability.
type GatewayChecker interface {
	HealthCheck(ctx context.Context) error
}
