package campaign

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-campaigns/app/entity"
	"golang.org/x/sync/errgroup"
)

type EventType string

const (
	EventStarted     EventType = "started"
	EventJobResolved EventType = "job_resolved"
	EventFinished    EventType = "finished"
)

// Event describes a state transition. Recipient, Delivered, Attempts and
// Error are only set for EventJobResolved.
type Event struct {
	Type      EventType
	RunID     string
	Recipient string
	Delivered bool
	Attempts  int
	Error     string
	Snapshot  Snapshot
}

// Observer receives events. Job events arrive from concurrent workers.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

type Option func(*Dispatcher)

// WithObserver registers an event observer.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) { d.observers = append(d.observers, o) }
}

// WithFinalizer registers fn to run once a run's jobs are done, while the
// run still reports Running. A Start that races with it gets ErrConflict
// rather than finding resources fn has not released yet.
func WithFinalizer(fn func(runID string)) Option {
	return func(d *Dispatcher) { d.finalizers = append(d.finalizers, fn) }
}

// Dispatcher runs one campaign at a time and owns its State.
type Dispatcher struct {
	transport  Transport
	composer   Composer
	log        logrus.FieldLogger
	observers  []Observer
	finalizers []func(runID string)
	state      *State

	mu      sync.Mutex
	current *runner
}

// NewDispatcher builds an idle dispatcher.
func NewDispatcher(transport Transport, composer Composer, log logrus.FieldLogger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		transport: transport,
		composer:  composer,
		log:       log,
		state:     NewState(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Status returns the latest consistent snapshot.
func (d *Dispatcher) Status() Snapshot {
	return d.state.Snapshot()
}

// Start validates req and launches the run in the background. Validation
// failures leave the state untouched.
func (d *Dispatcher) Start(ctx context.Context, req Request) (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state.Snapshot().IsRunning {
		return Snapshot{}, ErrConflict
	}
	if err := ValidateRequest(req); err != nil {
		return Snapshot{}, err
	}

	runID := uuid.NewString()
	snap, err := d.state.begin(runID, len(req.Contacts))
	if err != nil {
		return Snapshot{}, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := &runner{
		runID:    runID,
		req:      req,
		state:    d.state,
		composer: d.composer,
		policy:   NewRetryPolicy(req.Settings),
		pacer:    NewPacer(req.Settings.PauseBetweenMessages, req.Settings.MaxConnections),
		pool:     NewPool(d.transport, req.SMTP, req.Settings.MaxConnections),
		log:      d.log.WithField("run_id", runID),
		notify:   d.notify,
		finalize: d.finalizers,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	d.current = r

	r.log.WithFields(logrus.Fields{
		"contacts":        len(req.Contacts),
		"blocks":          len(Partition(req.Contacts, req.Settings.MessagesPerBlock)),
		"max_connections": req.Settings.MaxConnections,
		"smtp":            req.SMTP.String(),
	}).Info("Campaign started")
	d.notify(Event{Type: EventStarted, RunID: runID, Snapshot: snap})

	go r.run(runCtx)
	return snap, nil
}

// Stop asks the current run to finish gracefully: no new block or job is
// started, in-flight sends complete.
func (d *Dispatcher) Stop() (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == nil || !d.state.Snapshot().IsRunning {
		return Snapshot{}, ErrNotRunning
	}
	d.current.stop()
	d.current.log.Info("Campaign stop requested")
	return d.state.Snapshot(), nil
}

// Wait blocks until the current run, if any, has finished.
func (d *Dispatcher) Wait(ctx context.Context) error {
	d.mu.Lock()
	r := d.current
	d.mu.Unlock()
	if r == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) notify(e Event) {
	for _, o := range d.observers {
		o.Observe(e)
	}
}

// ValidateRequest runs every start-time check.
func ValidateRequest(req Request) error {
	if err := req.Settings.Validate(); err != nil {
		return err
	}
	if err := req.SMTP.Validate(); err != nil {
		return err
	}
	if err := ValidateTemplates(req.Templates); err != nil {
		return err
	}
	if len(req.Contacts) == 0 {
		return &ValidationError{Field: "contacts", Reason: "no contacts found"}
	}
	for i, c := range req.Contacts {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return &ValidationError{Field: fmt.Sprintf("contacts[%d].email", i), Reason: "invalid email address"}
		}
	}
	return nil
}

// runner executes a single run.
type runner struct {
	runID    string
	req      Request
	state    *State
	composer Composer
	policy   RetryPolicy
	pacer    *Pacer
	pool     *Pool
	log      logrus.FieldLogger
	notify   func(Event)
	finalize []func(runID string)

	stopping atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
}

func (r *runner) stop() {
	r.stopping.Store(true)
	r.cancel()
}

func (r *runner) run(ctx context.Context) {
	defer close(r.done)
	defer r.cancel()

	err := NewScheduler(r.req.Contacts, r.req.Settings).Run(ctx, r.runBlock)
	r.pool.Shutdown()

	status := StatusCompleted
	var cause error
	var fatal *FatalError
	switch {
	case errors.As(err, &fatal):
		status, cause = StatusFailed, fatal
	case r.stopping.Load() && r.state.Snapshot().Remaining > 0:
		status = StatusStopped
	case err != nil && !errors.Is(err, context.Canceled):
		status, cause = StatusFailed, err
	}

	for _, fn := range r.finalize {
		fn(r.runID)
	}
	snap := r.state.finish(status, cause)
	entry := r.log.WithFields(logrus.Fields{
		"status":    snap.Status,
		"delivered": snap.Delivered,
		"failed":    snap.Failed,
		"remaining": snap.Remaining,
	})
	if cause != nil {
		entry.WithError(cause).Error("Campaign failed")
	} else {
		entry.Info("Campaign finished")
	}
	r.notify(Event{Type: EventFinished, RunID: r.runID, Snapshot: snap})
}

// runBlock fans the block's jobs out to at most MaxConnections workers and
// returns once every job has resolved or the run was cancelled.
func (r *runner) runBlock(ctx context.Context, block Block) error {
	r.log.WithFields(logrus.Fields{"block": block.Index, "jobs": len(block.Jobs)}).Debug("Releasing block")

	var unstarted atomic.Int64
	unstarted.Store(int64(len(block.Jobs)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.req.Settings.MaxConnections)
	for _, job := range block.Jobs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			unstarted.Add(-1)
			if err := r.process(gctx, job); err != nil {
				return err
			}
			// The slot rests before its next send. Nothing follows the
			// final jobs of the run, so they finish without a rest.
			if block.Last && unstarted.Load() == 0 {
				return nil
			}
			_ = r.pacer.Rest(gctx)
			return nil
		})
	}
	return g.Wait()
}

// process drives one job to a terminal outcome. A job whose first attempt
// never started is left unresolved.
func (r *runner) process(ctx context.Context, job *Job) error {
	if ctx.Err() != nil {
		return nil
	}

	subject, body, err := Render(job.Contact, r.req.Templates, r.req.Settings.Subject)
	if err != nil {
		return &FatalError{Cause: err}
	}
	job.Subject, job.Body = subject, body
	log := r.log.WithField("recipient", job.Contact.Email)

	for {
		if err := r.pacer.Admit(ctx); err != nil {
			return r.abandon(job)
		}

		job.Attempts++
		job.Status = entity.JobStatusSending
		err := r.attempt(ctx, job)
		if err == nil {
			r.resolve(job, nil)
			break
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return fatal
		}
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			job.Attempts--
			return r.abandon(job)
		}

		job.LastErr = err
		kind := r.policy.Classify(err)
		if kind == Permanent || !r.policy.ShouldRetry(job) {
			r.resolve(job, err)
			break
		}

		log.WithFields(logrus.Fields{"attempt": job.Attempts, "kind": kind}).WithError(err).Warn("Send failed, retrying")
		if err := sleep(ctx, r.policy.Backoff); err != nil {
			return r.abandon(job)
		}
	}
	return nil
}

// attempt composes and sends the message over a pooled session. The send
// itself is not cancelled by a stop request.
func (r *runner) attempt(ctx context.Context, job *Job) error {
	msg, err := r.composer.Compose(ctx, r.req.SMTP.Sender(), job.Contact.Email, job.Subject, job.Body, r.req.Attachments)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			return &FatalError{Cause: err}
		}
		return err
	}

	session, err := r.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	sendErr := session.Send(context.WithoutCancel(ctx), msg)
	r.pool.Release(session, sendErr == nil)
	return sendErr
}

// abandon handles cancellation between attempts: a job that was already
// attempted resolves as failed, an untouched one stays unresolved.
func (r *runner) abandon(job *Job) error {
	if job.Attempts > 0 {
		cause := job.LastErr
		if cause == nil {
			cause = errors.New("campaign stopped")
		}
		r.resolve(job, cause)
	}
	return nil
}

func (r *runner) resolve(job *Job, err error) {
	event := Event{
		Type:      EventJobResolved,
		RunID:     r.runID,
		Recipient: job.Contact.Email,
		Attempts:  job.Attempts,
	}
	var failure string
	if err == nil {
		job.Status = entity.JobStatusDelivered
		event.Delivered = true
	} else {
		job.Status = entity.JobStatusFailed
		failure = fmt.Sprintf("Failed to send to %s: %v", job.Contact.Email, err)
		event.Error = err.Error()
	}
	event.Snapshot = r.state.resolve(err == nil, failure)

	log := r.log.WithFields(logrus.Fields{
		"recipient": job.Contact.Email,
		"attempts":  job.Attempts,
		"remaining": event.Snapshot.Remaining,
	})
	if err != nil {
		log.WithError(err).Warn("Message failed")
	} else {
		log.Debug("Message delivered")
	}
	r.notify(event)
}
