package season

import "context"

type Repository interface {
	Create(ctx context.Context, s Season) error
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
	List(ctx context.Context) ([]Season, error)
}
