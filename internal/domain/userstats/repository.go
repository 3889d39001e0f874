package userstats

import "context"

type Repository interface {
	Upsert(ctx context.Context, stats Stats) error
	GetByUser(ctx context.Context, userID string) (Stats, bool, error)
}
