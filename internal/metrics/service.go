package metrics

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

var ErrNoRunID = errors.New("run has no id")

// Run identifies one analysis execution.
type Run struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Documents  int
	Failed     int
}

func NewRun(startedAt time.Time) Run {
	return Run{ID: uuid.New(), StartedAt: startedAt}
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=metrics
type Repository interface {
	SaveRun(ctx context.Context, run Run, clients []ClientMetrics) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Publish stores a finished run and its client metrics, ordered by client ID.
func (s *Service) Publish(ctx context.Context, run Run, clients []ClientMetrics) error {
	if run.ID == uuid.Nil {
		return ErrNoRunID
	}

	sorted := slices.Clone(clients)
	slices.SortFunc(sorted, func(a, b ClientMetrics) int {
		return cmp.Compare(a.ClientID, b.ClientID)
	})

	if err := s.repo.SaveRun(ctx, run, sorted); err != nil {
		return fmt.Errorf("saving run %s: %w", run.ID, err)
	}

	return nil
}
