package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper evicts games that have been idle for longer than a TTL.
type Sweeper interface {
	Sweep(olderThan time.Duration) int
}

// Scheduler manages the periodic maintenance tasks.
type Scheduler struct {
	Cron    *cron.Cron
	Sweeper Sweeper
	IdleTTL time.Duration
}

// NewScheduler creates a new Scheduler with second-level cron expressions.
func NewScheduler(sw Sweeper, idleTTL time.Duration) *Scheduler {
	return &Scheduler{
		Cron:    cron.New(cron.WithSeconds()),
		Sweeper: sw,
		IdleTTL: idleTTL,
	}
}

// RegisterAll registers the idle-game sweep.
func (s *Scheduler) RegisterAll(sweepCron string) error {
	if _, err := s.Cron.AddFunc(sweepCron, s.sweepTask); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunSweepNow executes the sweep immediately and returns the number of evicted games.
func (s *Scheduler) RunSweepNow() int {
	return s.sweep()
}

func (s *Scheduler) sweepTask() {
	s.sweep()
}

func (s *Scheduler) sweep() int {
	n := s.Sweeper.Sweep(s.IdleTTL)
	if n > 0 {
		log.Printf("[INFO] sweep: evicted %d games idle for more than %v", n, s.IdleTTL)
	}
	return n
}
