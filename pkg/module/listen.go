package module

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// tick requests get a few intervals to answer before counting as failed
const tickTimeoutIntervals = 5

// PollHealth consecutive status poll failures, reset by any successful poll
type PollHealth struct {
	ConsecutiveFailures int `json:"consecutiveFailures"`
}

// StatusListener poll backend status at a fixed interval and feed the session.
// After failLimit consecutive failures the loop stops for good.
type StatusListener struct {
	session   *Session
	roster    *WorkerRoster
	interval  time.Duration
	failLimit int
	broken    atomic.Bool
	stop      chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

func NewStatusListener(session *Session, roster *WorkerRoster, interval time.Duration,
	failLimit int) *StatusListener {
	return &StatusListener{
		session:   session,
		roster:    roster,
		interval:  interval,
		failLimit: failLimit,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start run the poll loop in the background
func (l *StatusListener) Start() {
	go l.run()
}

func (l *StatusListener) run() {
	defer close(l.done)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			if !l.Tick(context.Background()) {
				logrus.WithFields(logrus.Fields{"sessionId": l.session.Id}).
					Errorf("status poll stopped after %d failures", l.failLimit)
				return
			}
		}
	}
}

// Tick one poll, returns false once the circuit breaker tripped
func (l *StatusListener) Tick(ctx context.Context) bool {
	if l.broken.Load() {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, tickTimeoutIntervals*l.interval)
	defer cancel()
	snapshot, err := l.session.backend.Status(ctx)
	if err != nil {
		logrus.WithFields(logrus.Fields{"sessionId": l.session.Id}).Debugf("status poll fail err=%s", err.Error())
		if failures := l.session.statusFailed(l.failLimit); failures >= l.failLimit {
			l.broken.Store(true)
			return false
		}
		return true
	}
	l.session.statusSucceeded(snapshot)
	if l.roster != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), tickTimeoutIntervals*l.interval)
			defer cancel()
			l.roster.Refresh(ctx)
		}()
	}
	return true
}

// Stopped the circuit breaker tripped
func (l *StatusListener) Stopped() bool {
	return l.broken.Load()
}

// Done closed when the loop has exited
func (l *StatusListener) Done() <-chan struct{} {
	return l.done
}

// Close stop the loop on shutdown
func (l *StatusListener) Close() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}
