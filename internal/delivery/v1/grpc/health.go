package grpc

import (
	"context"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName — имя сервиса в ответах health-проверки. Пустое имя описывает сервер целиком.
const ServiceName = "storefront"

const defaultProbeInterval = 15 * time.Second

// Probe проверяет одну зависимость (Redis, Postgres и т.п.).
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// WatchDependencies периодически опрашивает probes и выставляет статус SERVING,
// только если все зависимости отвечают. Возвращается по отмене ctx.
func (s *GRPCServer) WatchDependencies(ctx context.Context, interval time.Duration, probes ...Probe) {
	if interval <= 0 {
		interval = defaultProbeInterval
	}

	s.probe(ctx, probes)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.probe(ctx, probes)
		}
	}
}

func (s *GRPCServer) probe(ctx context.Context, probes []Probe) {
	status := healthpb.HealthCheckResponse_SERVING
	for _, p := range probes {
		checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err := p.Check(checkCtx)
		cancel()

		if err != nil {
			s.logger.Warnf("health probe %s failed: %v", p.Name, err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}

	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}
