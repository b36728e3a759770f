package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-campaigns/app/lock"
)

// refresher keeps the run lock alive while a campaign runs.
type refresher struct {
	done chan struct{}
	wg   sync.WaitGroup
}

func newRefresher(locker lock.Locker, ttl time.Duration, log logrus.FieldLogger) *refresher {
	r := &refresher{done: make(chan struct{})}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(ttl / 3)
		defer ticker.Stop()
		for {
			select {
			case <-r.done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), ttl/3)
				if err := locker.Refresh(ctx, lock.RunKey, ttl); err != nil {
					log.WithError(err).Warn("Failed to refresh run lock")
				}
				cancel()
			}
		}
	}()
	return r
}

func (r *refresher) stop() {
	close(r.done)
	r.wg.Wait()
}
