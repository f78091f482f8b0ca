package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/challenge-harvester/internal/domain"
	"github.com/bnema/challenge-harvester/internal/ports"
	"github.com/google/uuid"
)

const DefaultMaxTokens = 10

type StoreResult struct {
	Record     domain.TokenRecord
	EntryIndex int
	TotalCount int
	MaxTokens  int
}

type TokenList struct {
	Tokens      []domain.TokenRecord `json:"tokens"`
	TotalCount  int                  `json:"total_count"`
	LastUpdated time.Time            `json:"last_updated,omitzero"`
}

// CollectorService backs the collection endpoint: a rolling window of the newest tokens.
type CollectorService struct {
	repo      ports.TokenRepository
	clock     ports.Clock
	maxTokens int
	logger    *slog.Logger
}

func NewCollectorService(repo ports.TokenRepository, clock ports.Clock, maxTokens int, logger *slog.Logger) *CollectorService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CollectorService{repo: repo, clock: clock, maxTokens: maxTokens, logger: logger}
}

func (s *CollectorService) MaxTokens() int {
	return s.maxTokens
}

func (s *CollectorService) Store(ctx context.Context, submission domain.Submission) (StoreResult, error) {
	if err := submission.Validate(); err != nil {
		return StoreResult{}, err
	}

	record := domain.NewTokenRecord(uuid.New().String(), submission, s.clock.Now().UTC())
	records, err := s.repo.Append(ctx, record, s.maxTokens)
	if err != nil {
		return StoreResult{}, fmt.Errorf("append token record: %w", err)
	}

	s.logger.Info("token received",
		"version", record.Version,
		"action", record.Action,
		"harvest", record.HarvestNumber,
		"length", record.Length,
		"total", len(records),
		"max", s.maxTokens,
	)

	return StoreResult{
		Record:     record,
		EntryIndex: len(records) - 1,
		TotalCount: len(records),
		MaxTokens:  s.maxTokens,
	}, nil
}

func (s *CollectorService) List(ctx context.Context) (TokenList, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return TokenList{}, fmt.Errorf("list token records: %w", err)
	}

	if records == nil {
		records = []domain.TokenRecord{}
	}

	list := TokenList{Tokens: records, TotalCount: len(records)}
	if len(records) > 0 {
		list.LastUpdated = records[len(records)-1].ReceivedAt
	}

	return list, nil
}

func (s *CollectorService) Latest(ctx context.Context) (domain.TokenRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return domain.TokenRecord{}, fmt.Errorf("list token records: %w", err)
	}
	if len(records) == 0 {
		return domain.TokenRecord{}, domain.ErrNoTokens
	}

	return records[len(records)-1], nil
}

func (s *CollectorService) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear token records: %w", err)
	}

	s.logger.Info("token records cleared")
	return nil
}
