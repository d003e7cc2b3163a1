package dataset

import (
	"github.com/j-veylop/accidents-dashboard-tui/internal/geo"
	"github.com/j-veylop/accidents-dashboard-tui/internal/loader"
	"github.com/j-veylop/accidents-dashboard-tui/internal/logger"
)

const kindBoundaries = "boundaries"

// loadBoundaries reads the state outlines, preferring the cached copy when
// the shapefile has not changed.
func (s *Service) loadBoundaries() error {
	src, err := loader.Stat(s.opts.BoundariesPath, kindBoundaries)
	if err != nil {
		return err
	}

	if s.db != nil {
		encoded, err := s.db.GetBoundaries(src)
		if err != nil {
			logger.Warn("failed to read cached boundaries", "error", err)
		} else if encoded != nil {
			outlines, err := geo.DecodeOutlines(encoded)
			if err == nil {
				s.setOutlines(outlines)
				logger.Debug("boundaries loaded from cache", "states", len(outlines))
				return nil
			}
			logger.Warn("discarding unreadable boundary cache", "error", err)
		}
	}

	outlines, err := geo.LoadBoundaries(s.opts.BoundariesPath)
	if err != nil {
		return err
	}
	s.setOutlines(outlines)

	if s.db != nil {
		encoded, err := outlines.Encode()
		if err == nil {
			err = s.db.SaveBoundaries(src, encoded)
		}
		if err != nil {
			logger.Warn("failed to cache boundaries", "error", err)
		}
	}

	logger.Info("boundaries loaded", "path", s.opts.BoundariesPath, "states", len(outlines))
	return nil
}

func (s *Service) setOutlines(o geo.Outlines) {
	s.mu.Lock()
	s.outlines = o
	s.mu.Unlock()
}
