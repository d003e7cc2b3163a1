// Package report builds the per-state views from the current dataset.
package report

import (
	"sync"
	"time"

	"github.com/j-veylop/accidents-dashboard-tui/internal/aggregator"
	"github.com/j-veylop/accidents-dashboard-tui/internal/geo"
	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// Service runs the aggregation pipeline with the configured options. Reports
// are built fresh on every call and never stored.
type Service struct {
	mu   sync.RWMutex
	opts aggregator.Options
}

// New creates a report service. Zero values in opts fall back to
// aggregator.DefaultOptions.
func New(opts aggregator.Options) *Service {
	def := aggregator.DefaultOptions()
	if opts.TopN <= 0 {
		opts.TopN = def.TopN
	}
	if len(opts.CorrelationFields) == 0 {
		opts.CorrelationFields = def.CorrelationFields
	}
	return &Service{opts: opts}
}

// Options returns the options used for new reports.
func (s *Service) Options() aggregator.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// SetGranularity changes the default period granularity.
func (s *Service) SetGranularity(g models.Granularity) {
	s.mu.Lock()
	s.opts.Granularity = g
	s.mu.Unlock()
}

// Build computes the report for one state filter.
func (s *Service) Build(ds *models.Dataset, filter models.StateFilter, granularity models.Granularity) (*models.StateReport, error) {
	opts := s.Options()
	opts.Granularity = granularity

	start := time.Now()
	rep, err := aggregator.BuildReport(ds, filter, opts)
	if err != nil {
		logger.Error("failed to build report", "state", filter.String(), "error", err)
		return nil, err
	}

	logger.Debug("report built",
		"state", filter.String(),
		"granularity", granularity.String(),
		"accidents", rep.TotalAccidents,
		"no_data", rep.NoData,
		"duration", time.Since(start))
	return rep, nil
}

// Map projects the report's accidents onto a cols x rows density grid framed
// by the outlines of the selected state.
func (s *Service) Map(rep *models.StateReport, outlines geo.Outlines, cols, rows int) *geo.DensityGrid {
	if rep == nil {
		return geo.NewDensityGrid(nil, nil, cols, rows)
	}
	return geo.NewDensityGrid(rep.Accidents, outlines.Select(rep.Filter), cols, rows)
}
