package budget

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, line *Line) error
	// Update replaces every import-managed attribute of an existing line.
	Update(ctx context.Context, line *Line) error
	// UpdateAmounts patches dotation_initiale and dotation_modifiee only,
	// leaving all other attributes untouched.
	UpdateAmounts(ctx context.Context, id uuid.UUID, dotation float64) error

	Get(ctx context.Context, id uuid.UUID) (*Line, error)
	ListByExercice(ctx context.Context, exercice int) ([]*Line, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Line, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByExercice(ctx context.Context, exercice int) ([]*Line, error) {
	return s.repo.ListByExercice(ctx, exercice)
}
