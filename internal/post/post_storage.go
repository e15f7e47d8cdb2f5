package post

import (
	"context"

	"github.com/Luiz-altf4/Rose-Forum/internal/vote"
	"github.com/Luiz-altf4/Rose-Forum/models"
)

type PostStorage interface {
	ListAll(ctx context.Context) ([]models.Post, error)
	Get(ctx context.Context, id string) (models.Post, error)
	Create(ctx context.Context, input NewPost) (models.Post, error)
	Update(ctx context.Context, id string, changes PostUpdate) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	IncrementViews(ctx context.Context, id string) (bool, error)
	Like(ctx context.Context, id string) (bool, error)
	Vote(ctx context.Context, id string, direction vote.Direction) (models.Post, error)
}
