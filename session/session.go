package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/uyouii/growthfit/common"
	"github.com/uyouii/growthfit/model"
	"github.com/uyouii/growthfit/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Analyzer turns one series and its parameters into an analysis. growth.Analyzer and
// qpcr.Analyzer implement it.
type Analyzer interface {
	Name() string
	DefaultWindow(s model.Series) model.Window
	Analyze(ctx context.Context, s model.Series, params model.Params) model.Analysis
}

type Record struct {
	ID       int
	Series   model.Series
	Params   model.Params
	Visible  bool
	Analysis model.Analysis
}

// clone copies r deep enough that writes through the copy never reach the session.
func (r *Record) clone() Record {
	res := *r
	if r.Params.Threshold != nil {
		res.Params = r.Params.WithThreshold(*r.Params.Threshold)
	}
	res.Series = model.Series{
		Labels: r.Series.CopyLabels(),
		Points: append([]model.Point(nil), r.Series.Points...),
	}
	if r.Analysis.Crossing != nil {
		crossing := *r.Analysis.Crossing
		res.Analysis.Crossing = &crossing
	}
	if r.Analysis.Fit != nil {
		fit := *r.Analysis.Fit
		fit.Line = append([]model.Point(nil), r.Analysis.Fit.Line...)
		res.Analysis.Fit = &fit
	}
	return res
}

// Session holds the loaded series of one analysis and keeps their results current.
type Session struct {
	mu       sync.RWMutex
	analyzer Analyzer
	records  map[int]*Record
	nextID   int

	threshold *float64
	hidden    bool
	listener  Listener
}

type Option func(*Session)

// WithListener registers the function that receives a RenderRequest after every change.
func WithListener(listener Listener) Option {
	return func(s *Session) {
		s.listener = listener
	}
}

// WithThreshold sets the threshold applied to every added record.
func WithThreshold(threshold float64) Option {
	return func(s *Session) {
		s.threshold = &threshold
	}
}

// WithHiddenRecords makes added records start hidden, as plate wells do.
func WithHiddenRecords() Option {
	return func(s *Session) {
		s.hidden = true
	}
}

func New(analyzer Analyzer, opts ...Option) *Session {
	s := &Session{
		analyzer: analyzer,
		records:  map[int]*Record{},
		nextID:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Analyzer() Analyzer {
	return s.analyzer
}

// Add validates series, gives it the analyzer's default window and the session threshold and
// analyses it.
func (s *Session) Add(ctx context.Context, series model.Series) (int, error) {
	ids, err := s.AddAll(ctx, []model.Series{series})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// AddAll adds the valid series and reports the invalid ones in the returned error. The ids
// belong to the added series in input order.
func (s *Session) AddAll(ctx context.Context, series []model.Series) ([]int, error) {
	logger := utils.GetLogger(ctx)

	var (
		ids  []int
		errs error
	)
	s.mu.Lock()
	for i := range series {
		if err := series[i].Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s: %v", common.ErrorInvalidValue, series[i].Name(), err))
			continue
		}
		params := model.Params{Window: s.analyzer.DefaultWindow(series[i])}
		if s.threshold != nil {
			params = params.WithThreshold(*s.threshold)
		}
		rec := &Record{
			ID:      s.nextID,
			Series:  series[i],
			Params:  params,
			Visible: !s.hidden,
		}
		s.nextID++
		s.records[rec.ID] = rec
		errs = multierr.Append(errs, s.recompute(ctx, rec))
		ids = append(ids, rec.ID)
	}
	s.mu.Unlock()

	logger.Info("records added", zap.String("analyzer", s.analyzer.Name()), zap.Int("added", len(ids)),
		zap.Int("rejected", len(series)-len(ids)))
	if len(ids) > 0 {
		s.emit(RenderRequest{Change: ChangeAdded, IDs: ids})
	}
	return ids, errs
}

func (s *Session) Remove(id int) error {
	s.mu.Lock()
	if _, ok := s.records[id]; !ok {
		s.mu.Unlock()
		return notFound(id)
	}
	delete(s.records, id)
	s.mu.Unlock()

	s.emit(RenderRequest{Change: ChangeRemoved, IDs: []int{id}})
	return nil
}

// Get returns a copy of the record.
func (s *Session) Get(id int) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, notFound(id)
	}
	return rec.clone(), nil
}

// List returns copies of all records ordered by id.
func (s *Session) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		res = append(res, rec.clone())
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].ID < res[j].ID
	})
	return res
}

func (s *Session) Visible() []Record {
	res := []Record{}
	for _, rec := range s.List() {
		if rec.Visible {
			res = append(res, rec)
		}
	}
	return res
}

// SetWindow moves the fit window of one record. The zero window restores the default.
func (s *Session) SetWindow(ctx context.Context, id int, w model.Window) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return notFound(id)
	}
	if w.IsZero() {
		w = s.analyzer.DefaultWindow(rec.Series)
	} else if !w.Valid(rec.Series.Len()) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %v for %d points", common.ErrorInvalidWindow, w, rec.Series.Len())
	}
	rec.Params.Window = w
	err := s.recompute(ctx, rec)
	s.mu.Unlock()

	s.emit(RenderRequest{Change: ChangeWindow, IDs: []int{id}})
	return err
}

// SetThreshold applies threshold to every record, nil clears it.
func (s *Session) SetThreshold(ctx context.Context, threshold *float64) error {
	s.mu.Lock()
	if threshold != nil {
		v := *threshold
		threshold = &v
	}
	s.threshold = threshold

	var errs error
	ids := make([]int, 0, len(s.records))
	for id, rec := range s.records {
		rec.Params.Threshold = threshold
		errs = multierr.Append(errs, s.recompute(ctx, rec))
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Ints(ids)
	s.emit(RenderRequest{Change: ChangeThreshold, IDs: ids})
	return errs
}

// Threshold returns the session threshold, nil when none is set.
func (s *Session) Threshold() *float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.threshold == nil {
		return nil
	}
	v := *s.threshold
	return &v
}

func (s *Session) SetVisible(id int, visible bool) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return notFound(id)
	}
	rec.Visible = visible
	s.mu.Unlock()

	s.emit(RenderRequest{Change: ChangeVisibility, IDs: []int{id}})
	return nil
}

func (s *Session) Recompute(ctx context.Context, id int) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return notFound(id)
	}
	err := s.recompute(ctx, rec)
	s.mu.Unlock()

	s.emit(RenderRequest{Change: ChangeRecomputed, IDs: []int{id}})
	return err
}

// RecomputeAll reanalyses every record. The returned error combines the records whose
// analysis panicked.
func (s *Session) RecomputeAll(ctx context.Context) error {
	s.mu.Lock()
	var errs error
	ids := make([]int, 0, len(s.records))
	for id, rec := range s.records {
		errs = multierr.Append(errs, s.recompute(ctx, rec))
		ids = append(ids, id)
	}
	s.mu.Unlock()

	sort.Ints(ids)
	s.emit(RenderRequest{Change: ChangeRecomputed, IDs: ids})
	return errs
}

// recompute runs the analyzer on rec. The caller holds the write lock.
func (s *Session) recompute(ctx context.Context, rec *Record) (err error) {
	logger := utils.GetLogger(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("recompute recover panic error!", zap.Any("err", r),
				zap.String("panic info", utils.GetPanicInfo()), zap.String("series", rec.Series.DebugString()))
			err = fmt.Errorf("%w: analysing %s panicked: %v", common.ErrorInvalidValue, rec.Series.Name(), r)
		}
	}()

	rec.Analysis = s.analyzer.Analyze(ctx, rec.Series, rec.Params)
	if rec.Analysis.FitErr != nil {
		logger.Debug("fit unavailable", zap.Int("id", rec.ID), zap.String("series", rec.Series.Name()),
			zap.Error(rec.Analysis.FitErr))
	}
	return nil
}

func notFound(id int) error {
	return fmt.Errorf("%w: id %d", common.ErrorSeriesNotFound, id)
}
