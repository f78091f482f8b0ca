package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/bnema/challenge-harvester/internal/ports"
)

const DefaultSubmissionVersion = "v2"

type SubmitterConfig struct {
	Version   string
	SourceURL string
}

// Submitter hands acquired tokens to the collection endpoint. Failures are returned to the
// caller for status reporting but never stop scheduling.
type Submitter struct {
	collector ports.Collector
	cfg       SubmitterConfig
	logger    *slog.Logger
}

func NewSubmitter(collector ports.Collector, cfg SubmitterConfig, logger *slog.Logger) *Submitter {
	if cfg.Version == "" {
		cfg.Version = DefaultSubmissionVersion
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Submitter{collector: collector, cfg: cfg, logger: logger}
}

func (s *Submitter) Submit(ctx context.Context, token domain.AcquisitionToken, harvestNumber uint) (int, error) {
	submission := domain.Submission{
		Token:         token.Value,
		Version:       s.cfg.Version,
		Action:        token.Strategy.Action(),
		HarvestNumber: harvestNumber,
		SourceURL:     s.cfg.SourceURL,
	}
	if err := submission.Validate(); err != nil {
		return 0, &domain.SubmitError{Err: err}
	}

	total, err := s.collector.Submit(ctx, submission)
	if err != nil {
		var submitErr *domain.SubmitError
		if !errors.As(err, &submitErr) {
			err = &domain.SubmitError{Err: err}
		}
		s.logger.Warn("token submission failed",
			"strategy", token.Strategy,
			"harvest", harvestNumber,
			"error", err,
		)
		return 0, err
	}

	s.logger.Info("token stored",
		"strategy", token.Strategy,
		"harvest", harvestNumber,
		"length", len(token.Value),
		"total", total,
	)

	return total, nil
}
