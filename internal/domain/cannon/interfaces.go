package cannon

import (
	"context"

	"github.com/rpggio/cannonplot/internal/domain/activity"
)

// Repository provides persistence for cannons. Implementations assign the
// record ID on Create and ReplaceAll.
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, opts ListOptions) ([]Record, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	ReplaceAll(ctx context.Context, recs []Record) error
}

// ActivityRepository logs cannon activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
