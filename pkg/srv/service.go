package srv

import (
	"context"
	"errors"
	"time"

	"github.com/sandevgo/ceramicsrag/pkg/log"
)

// Service is a long-running component with an explicit lifecycle.
type Service interface {
	Start(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

const DefaultShutdownTimeout = 10 * time.Second

// Run starts every service and blocks until ctx is cancelled or one of them
// fails. Services are then shut down in reverse order.
func Run(ctx context.Context, services ...Service) error {
	logger := log.FromCtx(ctx)
	errCh := make(chan error, len(services))

	for _, service := range services {
		go func(service Service) {
			if err := service.Start(ctx); err != nil {
				logger.Error().Err(err).Msgf("%T failed to start", service)
				errCh <- err
			}
		}(service)
	}

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
	defer cancel()

	return errors.Join(runErr, Shutdown(shutdownCtx, services...))
}

// Shutdown stops services in reverse order and joins their errors.
func Shutdown(ctx context.Context, services ...Service) error {
	var errs []error
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Shutdown(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msgf("%T failed to shutdown", services[i])
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
