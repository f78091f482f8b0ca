package ports

import (
	"context"

	"github.com/bnema/challenge-harvester/internal/domain"
)

type Collector interface {
	// Submit delivers one token and returns the endpoint's running total.
	Submit(ctx context.Context, submission domain.Submission) (int, error)
}

type StatusPublisher interface {
	Publish(status domain.Status)
}

type TokenRepository interface {
	List(ctx context.Context) ([]domain.TokenRecord, error)
	Append(ctx context.Context, record domain.TokenRecord, keep int) ([]domain.TokenRecord, error)
	Clear(ctx context.Context) error
}
