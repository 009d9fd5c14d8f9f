package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/drstein77/storefront/internal/catalog"
	"github.com/drstein77/storefront/internal/debounce"
	"github.com/drstein77/storefront/internal/logger"
	"github.com/drstein77/storefront/internal/models"
	"github.com/drstein77/storefront/internal/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound = errors.New("not found")
	ErrNoKeeper = errors.New("observation keeper is not configured")
)

type Log interface {
	Debug(string, ...zap.Field)
	Info(string, ...zap.Field)
	Error(string, ...zap.Field)
}

// Source is the upstream product catalog.
type Source interface {
	Products(ctx context.Context, req catalog.Request) (*models.ProductPage, error)
	Categories(ctx context.Context) ([]models.Category, error)
	FacetSample(ctx context.Context) (*catalog.FacetSample, error)
	Product(ctx context.Context, id models.ProductID) (*models.Product, error)
}

// Keeper interface for database operations
type Keeper interface {
	Ping(context.Context) bool
	RecordObservations(ctx context.Context, products []models.Product) error
	Summary(ctx context.Context) (*models.ProcessResponse, error)
	History(ctx context.Context, id models.ProductID) ([]models.Observation, error)
	Close() bool
}

type deps struct {
	source Source
	keeper Keeper
	log    Log
}

// Store is the single dispatch point for session state. Transitions are
// serialised by mx; asynchronous work runs outside the lock and reports back
// through Dispatch.
type Store struct {
	ctx    context.Context
	cancel context.CancelFunc
	mx     sync.RWMutex
	wg     sync.WaitGroup

	state       AppState
	window      int
	cancelFetch context.CancelFunc
	subscribers map[int]chan AppState
	nextSub     int

	search *debounce.Debouncer
	deps   deps
}

type Option func(*Store)

// WithRefineWindow fetches n candidates from offset 0 whenever client-side
// refinement is needed, so that pages are cut after filtering.
func WithRefineWindow(n int) Option {
	return func(s *Store) {
		s.window = max(n, 0)
	}
}

// WithSearchDebounce sets the quiet window for TypeSearch.
func WithSearchDebounce(d time.Duration) Option {
	return func(s *Store) {
		s.search = debounce.New(d)
	}
}

// NewStore creates a session store. keeper may be nil.
func NewStore(ctx context.Context, source Source, keeper Keeper, log Log, opts ...Option) *Store {
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Store{
		ctx:         ctx,
		cancel:      cancel,
		state:       NewAppState(uuid.NewString()),
		subscribers: make(map[int]chan AppState),
		search:      debounce.New(debounce.DefaultDuration),
		deps:        deps{source: source, keeper: keeper, log: log},
	}
	for _, opt := range opts {
		opt(s)
	}

	if keeper != nil && !keeper.Ping(ctx) {
		log.Info("observation keeper is not reachable, observations may be lost")
	}
	log.Info("session started", zap.String("session", s.state.SessionID))
	return s
}

// Start loads the facet catalogs and the first catalog page.
func (s *Store) Start() {
	s.Dispatch(LoadFacets{})
	s.Dispatch(Refresh{})
}

// Dispatch applies a and starts whatever asynchronous work it implies.
func (s *Store) Dispatch(a Action) {
	if a == nil {
		return
	}

	s.mx.Lock()
	next, effects := a.reduce(s.state)
	params := next.Params()
	key := params.Key()
	issue := query.NeedsQuery(next.Catalog, key)
	if issue {
		next.Catalog = query.Begin(next.Catalog, key)
	}
	s.state = next
	s.publish()

	if s.ctx.Err() != nil {
		s.mx.Unlock()
		return
	}
	if issue {
		s.issueQuery(next.Catalog.Seq, params)
	}
	for _, e := range effects {
		s.run(e)
	}
	s.mx.Unlock()
}

// issueQuery must be called with mx held.
func (s *Store) issueQuery(seq uint64, params query.Params) {
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelFetch = cancel

	plan := query.BuildRequest(params, s.window)
	reqID := uuid.NewString()
	s.deps.log.Info("catalog query issued",
		zap.String("session", s.state.SessionID),
		zap.String("request", reqID),
		zap.Uint64("seq", seq),
		zap.Stringer("endpoint", plan.Request.Endpoint),
		zap.String("uri", plan.Request.URI()),
	)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		started := time.Now()
		page, err := s.deps.source.Products(ctx, plan.Request)
		if err != nil {
			s.deps.log.Error("catalog query failed",
				zap.String("request", reqID),
				zap.Uint64("seq", seq),
				zap.Error(err),
			)
			s.Dispatch(pageFailed{seq: seq, msg: err.Error()})
			return
		}
		s.deps.log.Debug("catalog query resolved",
			zap.String("request", reqID),
			zap.Uint64("seq", seq),
			zap.Int("products", len(page.Products)),
			zap.Duration("took", time.Since(started)),
		)
		s.Dispatch(pageLoaded{seq: seq, params: params, plan: plan, page: page})
	}()
}

// run must be called with mx held.
func (s *Store) run(e Effect) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if next := e(s.ctx, s.deps); next != nil {
			s.Dispatch(next)
		}
	}()
}

// TypeSearch records a keystroke. The text is committed once typing pauses.
func (s *Store) TypeSearch(text string) {
	s.search.Debounce(func() {
		s.Dispatch(SetSearch{Text: text})
	})
}

// FlushSearch commits pending search text immediately.
func (s *Store) FlushSearch() bool {
	return s.search.Flush()
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() AppState {
	s.mx.RLock()
	defer s.mx.RUnlock()
	return s.state.Clone()
}

// Subscribe returns a channel carrying the latest state after every
// transition. Slow readers only see the most recent state.
func (s *Store) Subscribe() (<-chan AppState, func()) {
	s.mx.Lock()
	defer s.mx.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan AppState, 1)
	ch <- s.state.Clone()
	s.subscribers[id] = ch

	return ch, func() {
		s.mx.Lock()
		defer s.mx.Unlock()
		if c, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(c)
		}
	}
}

// publish must be called with mx held.
func (s *Store) publish() {
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.state.Clone()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

// ResolveProduct finds a product the session already holds, falling back to
// the upstream catalog.
func (s *Store) ResolveProduct(ctx context.Context, id models.ProductID) (models.Product, error) {
	s.mx.RLock()
	p, ok := s.state.findProduct(id)
	s.mx.RUnlock()
	if ok {
		return p, nil
	}

	got, err := s.deps.source.Product(ctx, id)
	if err != nil {
		if catalog.IsNotFound(err) {
			return models.Product{}, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return models.Product{}, fmt.Errorf("product %s: %w", id, err)
	}
	return *got, nil
}

// ObservationSummary reports what the keeper has recorded so far.
func (s *Store) ObservationSummary(ctx context.Context) (*models.ProcessResponse, error) {
	if s.deps.keeper == nil {
		return nil, ErrNoKeeper
	}
	return s.deps.keeper.Summary(ctx)
}

// PriceHistory returns the recorded observations of one product.
func (s *Store) PriceHistory(ctx context.Context, id models.ProductID) ([]models.Observation, error) {
	if s.deps.keeper == nil {
		return nil, ErrNoKeeper
	}
	return s.deps.keeper.History(ctx, id)
}

// Wait blocks until every in-flight task has completed.
func (s *Store) Wait() {
	s.wg.Wait()
}

// Close cancels in-flight work, waits for it and closes subscriptions.
func (s *Store) Close() {
	s.search.Cancel()
	s.cancel()
	s.wg.Wait()

	s.mx.Lock()
	defer s.mx.Unlock()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}
