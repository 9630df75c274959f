// ABOUTME: Service wiring the pipeline operations to an entity store
// ABOUTME: Carries the logger, clock and relance threshold
package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/harperreed/prospecta/models"
	"github.com/harperreed/prospecta/store"
)

// DefaultRelanceThresholdDays is how long a sample may wait for feedback
// before it is flagged for follow-up.
const DefaultRelanceThresholdDays = 15

type Service struct {
	store     store.Store
	logger    *zap.Logger
	now       func() time.Time
	threshold int
}

type Option func(*Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRelanceThreshold sets the follow-up threshold in days. Negative
// values are ignored.
func WithRelanceThreshold(days int) Option {
	return func(s *Service) {
		if days >= 0 {
			s.threshold = days
		}
	}
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:     st,
		logger:    zap.NewNop(),
		now:       time.Now,
		threshold: DefaultRelanceThresholdDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() store.Store {
	return s.store
}

func (s *Service) RelanceThreshold() int {
	return s.threshold
}

// Now returns the service clock truncated to the second, the precision
// every backend keeps.
func (s *Service) Now() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *Service) runLogger(op string) *zap.Logger {
	return s.logger.With(zap.String("op", op), zap.String("run_id", ulid.Make().String()))
}

func (s *Service) at(t time.Time) time.Time {
	if t.IsZero() {
		return s.Now()
	}
	return t.UTC()
}

// list wraps unclassified backend failures as transient so callers can
// tell an unreachable store from a vanished record. Permanent faults pass
// through untouched and are never worth a retry.
func (s *Service) list(ctx context.Context, kind store.Kind, filter store.Filter) ([]store.Record, error) {
	recs, err := s.store.List(ctx, kind, filter)
	if err != nil {
		if store.IsTransient(err) || store.IsPermanent(err) {
			return nil, err
		}
		return nil, &store.TransientIOError{Op: "list", Kind: kind, Err: err}
	}
	return recs, nil
}

func (s *Service) getOne(ctx context.Context, kind store.Kind, id models.RecordID) (store.Record, error) {
	recs, err := s.list(ctx, kind, store.ByID(id))
	if err != nil {
		return store.Record{}, err
	}
	if len(recs) == 0 {
		return store.Record{}, &store.NotFoundError{Kind: kind, ID: id}
	}
	return recs[0], nil
}

func (s *Service) GetProspect(ctx context.Context, id models.RecordID) (*models.Prospect, error) {
	rec, err := s.getOne(ctx, store.KindProspects, id)
	if err != nil {
		return nil, err
	}
	p := prospectFromRecord(rec)
	return &p, nil
}

func (s *Service) GetSample(ctx context.Context, id models.RecordID) (*models.Sample, error) {
	rec, err := s.getOne(ctx, store.KindSamples, id)
	if err != nil {
		return nil, err
	}
	sm := sampleFromRecord(rec)
	return &sm, nil
}

func (s *Service) ListContacts(ctx context.Context, prospectID models.RecordID) ([]models.Contact, error) {
	recs, err := s.list(ctx, store.KindContacts, store.ByProspect(prospectID))
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	out := make([]models.Contact, 0, len(recs))
	for _, rec := range recs {
		out = append(out, contactFromRecord(rec))
	}
	return out, nil
}
