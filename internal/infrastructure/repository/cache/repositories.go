package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/tournament-engine/internal/domain/season"
	basecache "github.com/riskibarqy/tournament-engine/internal/platform/cache"
)

const (
	seasonListKey      = "season:list"
	seasonByIDPrefix   = "season:id:"
	seasonKeyNamespace = "season:"
)

type cachedSeasonByID struct {
	value  season.Season
	exists bool
}

// SeasonRepository caches season reads. Seasons never change after creation, so only
// Create has to invalidate.
type SeasonRepository struct {
	next  season.Repository
	byID  *basecache.Store[cachedSeasonByID]
	lists *basecache.Store[[]season.Season]
}

func NewSeasonRepository(next season.Repository, ttl time.Duration) *SeasonRepository {
	return &SeasonRepository{
		next:  next,
		byID:  basecache.NewStore[cachedSeasonByID](ttl),
		lists: basecache.NewStore[[]season.Season](ttl),
	}
}

func (r *SeasonRepository) Create(ctx context.Context, s season.Season) error {
	if err := r.next.Create(ctx, s); err != nil {
		return err
	}
	r.byID.DeletePrefix(ctx, seasonKeyNamespace)
	r.lists.Delete(ctx, seasonListKey)
	return nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	cached, err := r.byID.GetOrLoad(ctx, seasonByIDPrefix+seasonID, func(ctx context.Context) (cachedSeasonByID, error) {
		item, exists, err := r.next.GetByID(ctx, seasonID)
		if err != nil {
			return cachedSeasonByID{}, err
		}
		return cachedSeasonByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	items, err := r.lists.GetOrLoad(ctx, seasonListKey, func(ctx context.Context) ([]season.Season, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]season.Season(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]season.Season(nil), items...), nil
}
