package main

import (
	"context"
	"log/slog"
	"time"
)

// stalePruner deletes stored cart records older than a cutoff.
// Satisfied by repo.CartRepo.
type stalePruner interface {
	PruneStale(ctx context.Context, cutoff time.Time) (int64, error)
}

// idleEvicter drops in-memory per-visitor scopes idle since a cutoff.
// Satisfied by cart.Manager and favorite.Toggler.
type idleEvicter interface {
	EvictIdle(cutoff time.Time) int
}

// cartJanitor periodically deletes cart records that have not been touched
// for the retention period, and evicts idle in-memory visitor scopes.
// Visitor IDs are minted per cookie-less request, so without both sweeps
// abandoned scopes accumulate forever — rows in Postgres, stores and
// favorite state in memory.
type cartJanitor struct {
	repo     stalePruner
	evicters []idleEvicter
	log      *slog.Logger

	interval  time.Duration
	retention time.Duration // DB rows
	idleAfter time.Duration // in-memory scopes

	stop chan struct{}
	done chan struct{}
}

func newCartJanitor(r stalePruner, log *slog.Logger, evicters ...idleEvicter) *cartJanitor {
	return &cartJanitor{
		repo:      r,
		evicters:  evicters,
		log:       log,
		interval:  time.Hour,
		retention: 90 * 24 * time.Hour,
		idleAfter: time.Hour,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the cleanup loop. One pass runs immediately so a restart
// never postpones overdue cleanup by a full interval.
func (j *cartJanitor) Start() {
	go func() {
		defer close(j.done)

		j.sweep()

		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				j.sweep()
			case <-j.stop:
				return
			}
		}
	}()
}

// Stop halts the loop and waits for an in-flight pass to finish.
func (j *cartJanitor) Stop() {
	close(j.stop)
	<-j.done
}

func (j *cartJanitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)
	deleted, err := j.repo.PruneStale(ctx, cutoff)
	if err != nil {
		j.log.Error("cart cleanup failed", "error", err)
	} else if deleted > 0 {
		j.log.Info("stale carts pruned", "deleted", deleted, "cutoff", cutoff)
	}

	idleCutoff := time.Now().Add(-j.idleAfter)
	evicted := 0
	for _, e := range j.evicters {
		evicted += e.EvictIdle(idleCutoff)
	}
	if evicted > 0 {
		j.log.Info("idle visitor scopes evicted", "evicted", evicted)
	}
}
