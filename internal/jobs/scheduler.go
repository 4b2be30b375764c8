// Package jobs runs the background maintenance tasks of the salon.
package jobs

import (
	"context"
	"fmt"
	"time"

	"salon_backend/internal/services"
	"salon_backend/pkg/utils"

	"github.com/robfig/cron/v3"
)

// ExpirySweeper is the part of the package service the scheduler needs.
type ExpirySweeper interface {
	ExpireOverduePackages() (*services.ExpirySweepResult, error)
}

// Scheduler wraps a cron runner bound to the salon's timezone.
type Scheduler struct {
	cron    *cron.Cron
	sweeper ExpirySweeper
}

// NewScheduler registers the package expiry sweep under schedule (standard
// five-field cron syntax) in loc.
func NewScheduler(schedule string, loc *time.Location, sweeper ExpirySweeper) (*Scheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		sweeper: sweeper,
	}
	if _, err := s.cron.AddFunc(schedule, s.RunExpirySweep); err != nil {
		return nil, fmt.Errorf("invalid expiry sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// RunExpirySweep marks overdue package instances as expired once.
func (s *Scheduler) RunExpirySweep() {
	started := time.Now()
	result, err := s.sweeper.ExpireOverduePackages()
	if err != nil {
		utils.LogError(err, "Package expiry sweep failed")
		return
	}
	utils.LogInfo("Package expiry sweep finished", map[string]interface{}{
		"clients_updated":   result.ClientsUpdated,
		"instances_expired": result.InstancesExpired,
		"duration_ms":       time.Since(started).Milliseconds(),
	})
}

// Start begins running scheduled jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job, or ctx, to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		utils.LogWarn("Scheduler stop timed out with a job still running")
	}
}

// Next reports when the sweep will run next; zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
