package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Retention periodically removes analytics rows older than a cutoff.
type Retention struct {
	db        *DB
	retention time.Duration
	sched     *cron.Cron
}

// NewRetention schedules Cleanup on the given cron spec ("@daily", "0 3 * * *").
func NewRetention(db *DB, spec string, retention time.Duration) (*Retention, error) {
	r := &Retention{
		db:        db,
		retention: retention,
		sched:     cron.New(),
	}
	if _, err := r.sched.AddFunc(spec, r.run); err != nil {
		return nil, fmt.Errorf("invalid cleanup schedule %q: %w", spec, err)
	}
	return r, nil
}

// Start runs one cleanup immediately and then follows the schedule.
func (r *Retention) Start() {
	r.run()
	r.sched.Start()
}

// Stop halts the schedule and waits for a running cleanup to finish.
func (r *Retention) Stop() {
	<-r.sched.Stop().Done()
}

// RunNow performs a cleanup outside the schedule.
func (r *Retention) RunNow(ctx context.Context) (int64, error) {
	return r.db.Cleanup(ctx, r.retention)
}

func (r *Retention) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := r.RunNow(ctx)
	if err != nil {
		log.Printf("Error cleaning up old visitor data: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Privacy cleanup: removed %d rows older than %s", n, r.retention)
	}
}
