package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/pallet-service/internal/metrics"
)

const (
	// DefaultAutoSaveDebounce collapses bursts of mutations into one save.
	DefaultAutoSaveDebounce = 1500 * time.Millisecond
	// DefaultAutoSaveTimeout bounds a single persistence call.
	DefaultAutoSaveTimeout = 10 * time.Second
)

// ErrSchedulerStopped is returned by triggers issued after Stop.
var ErrSchedulerStopped = errors.New("auto-save scheduler stopped")

// SaveRequest is handed to the SaveFunc for one persistence call.
type SaveRequest struct {
	Stream  string
	Kind    string
	Payload any
	Hash    string
	Forced  bool

	skipSaved bool
}

// SaveFunc persists a payload. A nil error marks the payload hash as saved.
type SaveFunc func(ctx context.Context, req SaveRequest) error

// SaveStats counts scheduler outcomes for one stream.
type SaveStats struct {
	Scheduled    int `json:"scheduled"`
	Saved        int `json:"saved"`
	Deduplicated int `json:"deduplicated"`
	Dropped      int `json:"dropped"`
	Failed       int `json:"failed"`
}

type saveStream struct {
	timer    *time.Timer
	pending  *SaveRequest
	saving   bool
	lastHash string
	stats    SaveStats
	run      sync.Mutex
}

// SchedulerOption configures an AutoSaveScheduler.
type SchedulerOption func(*AutoSaveScheduler)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) SchedulerOption {
	return func(s *AutoSaveScheduler) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithSaveTimeout bounds each persistence call.
func WithSaveTimeout(d time.Duration) SchedulerOption {
	return func(s *AutoSaveScheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// AutoSaveScheduler debounces save triggers per stream and skips payloads whose
// content hash matches the last successful save. A trigger arriving while the
// stream is saving is dropped; the next trigger carries the newer state anyway.
type AutoSaveScheduler struct {
	save     SaveFunc
	debounce time.Duration
	timeout  time.Duration

	mu      sync.Mutex
	streams map[string]*saveStream
	stopped bool
	wg      sync.WaitGroup
}

// NewAutoSaveScheduler creates a scheduler calling save for every persisted payload.
func NewAutoSaveScheduler(save SaveFunc, opts ...SchedulerOption) *AutoSaveScheduler {
	s := &AutoSaveScheduler{
		save:     save,
		debounce: DefaultAutoSaveDebounce,
		timeout:  DefaultAutoSaveTimeout,
		streams:  make(map[string]*saveStream),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ContentHash returns the hex sha256 of the JSON encoding of payload.
func ContentHash(payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("hash payload: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Trigger schedules payload to be saved after the debounce window.
func (s *AutoSaveScheduler) Trigger(stream, kind string, payload any) error {
	hash, err := ContentHash(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSchedulerStopped
	}

	st := s.stream(stream)
	switch {
	case st.saving:
		st.stats.Dropped++
		metrics.RecordAutoSave(stream, "dropped")
		return nil
	case hash == st.lastHash:
		// the latest state is already persisted, so an older pending one must not overwrite it
		s.cancelPending(st)
		st.stats.Deduplicated++
		metrics.RecordAutoSave(stream, "deduplicated")
		return nil
	}

	st.pending = &SaveRequest{Stream: stream, Kind: kind, Payload: payload, Hash: hash}
	if st.timer != nil {
		st.timer.Stop()
	}
	st.timer = time.AfterFunc(s.debounce, func() { s.fire(stream) })
	st.stats.Scheduled++
	metrics.RecordAutoSave(stream, "scheduled")
	return nil
}

// ForceSave cancels any pending save of stream and persists payload now,
// bypassing debounce and deduplication. It waits for an in-flight save to end.
func (s *AutoSaveScheduler) ForceSave(ctx context.Context, stream, kind string, payload any) error {
	hash, err := ContentHash(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSchedulerStopped
	}
	st := s.stream(stream)
	s.cancelPending(st)
	st.saving = true
	s.mu.Unlock()

	metrics.RecordAutoSave(stream, "forced")
	return s.run(ctx, st, SaveRequest{Stream: stream, Kind: kind, Payload: payload, Hash: hash, Forced: true})
}

// SaveLatest persists payload now unless it matches the last successful save
// of stream. It waits for an in-flight save to end before comparing.
func (s *AutoSaveScheduler) SaveLatest(ctx context.Context, stream, kind string, payload any) error {
	hash, err := ContentHash(payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSchedulerStopped
	}
	st := s.stream(stream)
	s.cancelPending(st)
	st.saving = true
	s.mu.Unlock()

	return s.run(ctx, st, SaveRequest{Stream: stream, Kind: kind, Payload: payload, Hash: hash, Forced: true, skipSaved: true})
}

// Flush saves every pending payload immediately.
func (s *AutoSaveScheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	type job struct {
		st  *saveStream
		req SaveRequest
	}
	var jobs []job
	for _, st := range s.streams {
		if st.pending == nil {
			continue
		}
		req := *st.pending
		s.cancelPending(st)
		st.saving = true
		jobs = append(jobs, job{st: st, req: req})
	}
	s.mu.Unlock()

	var errs []error
	for _, j := range jobs {
		if err := s.run(ctx, j.st, j.req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Stop cancels pending timers and waits for in-flight timer saves.
func (s *AutoSaveScheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	for _, st := range s.streams {
		s.cancelPending(st)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Pending reports whether stream has a scheduled save.
func (s *AutoSaveScheduler) Pending(stream string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.streams[stream]
	return ok && st.pending != nil
}

// Stats returns the counters of stream.
func (s *AutoSaveScheduler) Stats(stream string) SaveStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.streams[stream]; ok {
		return st.stats
	}
	return SaveStats{}
}

func (s *AutoSaveScheduler) fire(stream string) {
	s.mu.Lock()
	st, ok := s.streams[stream]
	if s.stopped || !ok || st.pending == nil || st.saving {
		s.mu.Unlock()
		return
	}
	req := *st.pending
	st.pending = nil
	st.timer = nil
	st.saving = true
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	_ = s.run(context.Background(), st, req)
}

// run performs one save. Callers set st.saving before calling it.
func (s *AutoSaveScheduler) run(ctx context.Context, st *saveStream, req SaveRequest) error {
	st.run.Lock()
	defer st.run.Unlock()

	if req.skipSaved {
		s.mu.Lock()
		saved := req.Hash == st.lastHash
		if saved {
			st.saving = false
			st.stats.Deduplicated++
		}
		s.mu.Unlock()
		if saved {
			metrics.RecordAutoSave(req.Stream, "deduplicated")
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	err := s.save(ctx, req)

	s.mu.Lock()
	st.saving = false
	if err != nil {
		st.stats.Failed++
	} else {
		st.lastHash = req.Hash
		st.stats.Saved++
	}
	s.mu.Unlock()

	if err != nil {
		metrics.RecordAutoSave(req.Stream, "failed")
		log.Warn().Err(err).Str("stream", req.Stream).Str("kind", req.Kind).Bool("forced", req.Forced).Msg("Auto-save failed")
		return fmt.Errorf("save %s: %w", req.Stream, err)
	}
	metrics.RecordAutoSave(req.Stream, "saved")
	return nil
}

func (s *AutoSaveScheduler) stream(name string) *saveStream {
	st, ok := s.streams[name]
	if !ok {
		st = &saveStream{}
		s.streams[name] = st
	}
	return st
}

func (s *AutoSaveScheduler) cancelPending(st *saveStream) {
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}
	st.pending = nil
}
