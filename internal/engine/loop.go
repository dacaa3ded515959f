package engine

import (
	"context"
	"errors"
	"time"
)

// DefaultFPS is the frame rate of the loop when none is configured.
const DefaultFPS = 60

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("loop stopped")

// Loop is the single logical thread of a project. Frames and commands are
// serialised through one select, so the scheduler needs no locking.
type Loop struct {
	sched    *Scheduler
	interval time.Duration
	cmds     chan command
	stopped  chan struct{}
	now      func() time.Time
}

type command struct {
	fn   func() error
	done chan error
}

func NewLoop(s *Scheduler, fps int) *Loop {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return &Loop{
		sched:    s,
		interval: time.Second / time.Duration(fps),
		cmds:     make(chan command),
		stopped:  make(chan struct{}),
		now:      time.Now,
	}
}

// Interval is the time between frames.
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Run drives frames and commands until ctx is cancelled. A playing
// scheduler is paused on exit.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer close(l.stopped)

	origin := l.now()
	for {
		select {
		case <-ctx.Done():
			if l.sched.Playing() {
				l.sched.Pause()
				l.sched.Frame(float64(l.now().Sub(origin)) / float64(time.Millisecond))
			}
			return ctx.Err()
		case c := <-l.cmds:
			c.done <- l.safe(c.fn)
		case tm := <-ticker.C:
			l.sched.Frame(float64(tm.Sub(origin)) / float64(time.Millisecond))
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func() error) error {
	c := command{fn: fn, done: make(chan error, 1)}
	select {
	case l.cmds <- c:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) safe(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.sched.log.Errorf("[!] command panicked: %v", r)
			err = errors.New("command panicked")
		}
	}()
	return fn()
}
