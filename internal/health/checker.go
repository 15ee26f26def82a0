// Package health provides the composite health checker, the interval monitor
// with bounded history and alerting, and the HTTP read-model server.
package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pulseobs/pulse/internal/core/domain"
	"github.com/pulseobs/pulse/internal/errs"
	"github.com/pulseobs/pulse/internal/infra/kvstore"
	"github.com/pulseobs/pulse/internal/logging"
)

// probeKey is the sentinel used for the storage write-then-delete round trip.
const probeKey = "pulse:health_probe"

// RemotePinger confirms reachability of the remote persistence service.
type RemotePinger interface {
	FetchSessionState(ctx context.Context) error
}

// Checker runs the three independent health probes and aggregates their
// results. Check never propagates an error: probe failures fold into the
// returned status and error list.
type Checker struct {
	log         *logging.Logger
	store       kvstore.Store
	remote      RemotePinger
	requiredEnv []string
}

// NewChecker creates a composite health checker. requiredEnv names the
// configuration values whose absence fails the environment probe.
func NewChecker(
	log *logging.Logger,
	store kvstore.Store,
	remote RemotePinger,
	requiredEnv []string,
) *Checker {
	return &Checker{
		log:         log,
		store:       store,
		remote:      remote,
		requiredEnv: requiredEnv,
	}
}

// Check runs all probes and derives the aggregate status.
func (c *Checker) Check(ctx context.Context) domain.HealthCheck {
	check := domain.HealthCheck{Timestamp: time.Now()}

	if err := c.checkEnvironment(); err != nil {
		check.Errors = append(check.Errors, err.Error())
	} else {
		check.Checks.Environment = true
	}

	if err := c.checkRemote(ctx); err != nil {
		check.Errors = append(check.Errors, err.Error())
	} else {
		check.Checks.Remote = true
	}

	if err := c.checkStorage(ctx); err != nil {
		check.Errors = append(check.Errors, err.Error())
	} else {
		check.Checks.Storage = true
	}

	check.Status = domain.AggregateStatus(check.Checks)
	return check
}

// checkEnvironment verifies that every required configuration value is set.
func (c *Checker) checkEnvironment() error {
	for _, name := range c.requiredEnv {
		if os.Getenv(name) == "" {
			msg := fmt.Sprintf("environment check failed: missing %s", name)
			return errs.NewValidation(c.log, msg, "health")
		}
	}
	return nil
}

// checkRemote performs a cheap connectivity probe.
func (c *Checker) checkRemote(ctx context.Context) error {
	if c.remote == nil {
		return errs.NewNetwork(c.log, "remote check failed: no remote configured", "health")
	}
	if err := c.remote.FetchSessionState(ctx); err != nil {
		return errs.NewNetwork(c.log, fmt.Sprintf("remote check failed: %v", err), "health")
	}
	return nil
}

// checkStorage round-trips a sentinel key through the local store.
func (c *Checker) checkStorage(ctx context.Context) error {
	if c.store == nil {
		return errs.NewDatabase(c.log, "storage check failed: no store configured", "health")
	}
	if err := c.store.Set(ctx, probeKey, "ok"); err != nil {
		return errs.NewDatabase(c.log, fmt.Sprintf("storage check failed: %v", err), "health")
	}
	if err := c.store.Delete(ctx, probeKey); err != nil {
		return errs.NewDatabase(c.log, fmt.Sprintf("storage check failed: %v", err), "health")
	}
	return nil
}
