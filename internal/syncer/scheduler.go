package syncer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/IAmMasterCraft/expense-tracker/internal/store"
)

const defaultDebounce = 1500 * time.Millisecond

// Scheduler coalesces pending-change bursts into single push attempts.
// Each Notify restarts the debounce timer, so only the latest burst of
// intent triggers one flush; a skipped or failed flush leaves the queue
// intact to be retried on the next change or reconnect.
type Scheduler struct {
	store       *store.Store
	rec         *Reconciler
	session     *Session
	delay       time.Duration
	pushTimeout time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewScheduler(st *store.Store, rec *Reconciler, session *Session, delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = defaultDebounce
	}
	return &Scheduler{
		store:       st,
		rec:         rec,
		session:     session,
		delay:       delay,
		pushTimeout: 30 * time.Second,
	}
}

// Notify marks the scheduler flush-pending and (re)starts the debounce
// timer. Wired as the store's change callback.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.Flush)
}

// Reconnect records restored connectivity or a fresh authorization and
// re-evaluates immediately, regardless of how the queue got its
// entries; the flush is skipped only if the queue is empty.
func (s *Scheduler) Reconnect() {
	s.session.SetOnline(true)
	s.Flush()
}

// Stop cancels any armed debounce timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Flush attempts one push if automatic sync is enabled, a credential
// and network path are available, and there is pending work. Every
// skip leaves the queue untouched.
func (s *Scheduler) Flush() {
	enabled, err := s.store.GetBoolSetting(store.SettingAutoSync, false)
	if err != nil {
		logger.Warn().Err(err).Msg("flush: read auto-sync setting")
		return
	}
	if !enabled {
		return
	}
	if !s.session.Online() {
		logger.Debug().Msg("flush skipped: offline")
		return
	}
	if !s.session.Valid() {
		logger.Debug().Msg("flush skipped: no valid credential")
		return
	}

	pending, err := s.store.PendingCount()
	if err != nil {
		logger.Warn().Err(err).Msg("flush: count pending changes")
		return
	}
	if pending == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.pushTimeout)
	defer cancel()

	if err := s.rec.Push(ctx); err != nil {
		if errors.Is(err, ErrSyncBusy) {
			logger.Debug().Msg("flush skipped: push already in flight")
			return
		}
		// queue stays intact; the next change or reconnect retries
		logger.Warn().Err(err).Int64("pending", pending).Msg("flush failed")
		return
	}
	logger.Info().Int64("pending", pending).Msg("flush complete")
}
