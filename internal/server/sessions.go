package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/eastertrail/internal/game"
	"github.com/playperu/eastertrail/internal/storybook"
)

// playSession wraps a game.Session with the lock and timer the HTTP layer
// needs. All access to the game goes through Do.
type playSession struct {
	id     string
	sess   *game.Session
	broker *Broker

	mu       sync.Mutex
	lastSeen time.Time
	timer    *time.Timer
	closed   bool
}

// Do runs fn against the game under the session lock, then publishes the
// resulting snapshot and schedules a push for the next timed transition.
// Publishing happens under the lock so subscribers see snapshots in the
// order the commands were applied.
func (p *playSession) Do(fn func(*game.Session) error) (game.State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastSeen = time.Now()
	if fn == nil {
		return p.sess.Snapshot(), nil
	}
	err := fn(p.sess)
	st := p.sess.Snapshot()
	p.scheduleLocked()
	if err == nil {
		p.broker.Publish(p.id, st)
	}
	return st, err
}

func (p *playSession) Snapshot() game.State {
	st, _ := p.Do(nil)
	return st
}

func (p *playSession) scheduleLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	if p.closed {
		return
	}
	at, ok := p.sess.NextDeadline()
	if !ok {
		return
	}
	p.timer = time.AfterFunc(time.Until(at), p.tick)
}

func (p *playSession) tick() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	st := p.sess.Snapshot()
	p.scheduleLocked()
	p.broker.Publish(p.id, st)
}

func (p *playSession) idleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

func (p *playSession) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Sessions is the in-memory registry of play sessions. Sessions that see
// no traffic for ttl are evicted by Run.
type Sessions struct {
	mu     sync.RWMutex
	byID   map[string]*playSession
	ttl    time.Duration
	broker *Broker
	logger *slog.Logger
	opts   []game.Option
}

func NewSessions(logger *slog.Logger, broker *Broker, ttl time.Duration, opts ...game.Option) *Sessions {
	return &Sessions{
		byID:   make(map[string]*playSession),
		ttl:    ttl,
		broker: broker,
		logger: logger,
		opts:   opts,
	}
}

func (s *Sessions) Create(view storybook.DayView) *playSession {
	p := &playSession{
		id:       uuid.NewString(),
		sess:     game.New(view, s.opts...),
		broker:   s.broker,
		lastSeen: time.Now(),
	}
	s.mu.Lock()
	s.byID[p.id] = p
	s.mu.Unlock()
	return p
}

func (s *Sessions) Get(id string) (*playSession, bool) {
	s.mu.RLock()
	p, ok := s.byID[id]
	s.mu.RUnlock()
	return p, ok
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Sweep evicts sessions idle since before now-ttl and returns how many
// were removed. A session with live subscribers is kept.
func (s *Sessions) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, p := range s.byID {
		if p.idleSince().After(cutoff) || s.broker.Subscribers(id) > 0 {
			continue
		}
		p.close()
		delete(s.byID, id)
		n++
	}
	return n
}

// Run sweeps periodically until ctx is done.
func (s *Sessions) Run(ctx context.Context) error {
	interval := max(s.ttl/4, time.Second)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.Close()
			return nil
		case now := <-ticker.C:
			if n := s.Sweep(now); n > 0 {
				s.logger.Info("evicted idle play sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}

func (s *Sessions) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.byID {
		p.close()
		delete(s.byID, id)
	}
}
