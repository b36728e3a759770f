package campaign

import (
	"context"
	"time"

	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
	"golang.org/x/time/rate"
)

// Block is a contiguous slice of the contact list released as one unit.
type Block struct {
	Index int
	Jobs  []*Job
	Last  bool
}

// Partition splits contacts into ordered blocks of size; the last block
// holds the remainder.
func Partition(contacts []entity.Contact, size int) [][]entity.Contact {
	if size <= 0 || len(contacts) == 0 {
		return nil
	}
	blocks := make([][]entity.Contact, 0, (len(contacts)+size-1)/size)
	for start := 0; start < len(contacts); start += size {
		end := min(start+size, len(contacts))
		blocks = append(blocks, contacts[start:end])
	}
	return blocks
}

// Pacer spaces sends. Every worker slot rests for interval after each job,
// and a shared limiter admits at most slots sends per interval overall.
type Pacer struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewPacer builds a pacer for slots concurrent workers.
func NewPacer(interval time.Duration, slots int) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Limit(float64(slots) / interval.Seconds())
	}
	return &Pacer{limiter: rate.NewLimiter(limit, slots), interval: interval}
}

// Admit blocks until the shared limiter allows another send.
func (p *Pacer) Admit(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Rest sleeps out the per-slot interval.
func (p *Pacer) Rest(ctx context.Context) error {
	return sleep(ctx, p.interval)
}

// Scheduler releases blocks strictly in order with a pause between them.
type Scheduler struct {
	blocks [][]entity.Contact
	pause  time.Duration
}

// NewScheduler partitions contacts according to settings.
func NewScheduler(contacts []entity.Contact, settings Settings) *Scheduler {
	return &Scheduler{
		blocks: Partition(contacts, settings.MessagesPerBlock),
		pause:  settings.PauseBetweenBlocks,
	}
}

// Blocks returns the number of blocks.
func (s *Scheduler) Blocks() int {
	return len(s.blocks)
}

// Run hands each block to release and waits for it to return before
// pausing and moving on. No pause follows the final block. Cancelling ctx
// stops further blocks from being released.
func (s *Scheduler) Run(ctx context.Context, release func(ctx context.Context, block Block) error) error {
	offset := 0
	for i, contacts := range s.blocks {
		if err := ctx.Err(); err != nil {
			return err
		}

		block := Block{Index: i, Jobs: make([]*Job, len(contacts)), Last: i == len(s.blocks)-1}
		for j, contact := range contacts {
			block.Jobs[j] = &Job{Index: offset + j, Contact: contact, Status: entity.JobStatusPending}
		}
		offset += len(contacts)

		if err := release(ctx, block); err != nil {
			return err
		}
		if i < len(s.blocks)-1 {
			if err := sleep(ctx, s.pause); err != nil {
				return err
			}
		}
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
