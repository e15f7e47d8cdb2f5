package comment

import (
	"context"

	"github.com/Luiz-altf4/Rose-Forum/internal/vote"
	"github.com/Luiz-altf4/Rose-Forum/models"
)

type CommentStorage interface {
	Create(ctx context.Context, postID, content string, parentID *string) (models.Comment, error)
	Get(ctx context.Context, id string) (models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	ListThread(ctx context.Context, postID string) ([]*Thread, error)
	CountTopLevel(ctx context.Context, postID string) (int, error)
	Count(ctx context.Context, postID string) (int, error)
	Update(ctx context.Context, id, content string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	DeleteByPost(ctx context.Context, postID string) (int, error)
	PruneOrphans(ctx context.Context, livePosts map[string]struct{}) (int, error)
	Vote(ctx context.Context, id string, direction vote.Direction) (models.Comment, error)
}

// PostLookup is the part of the post repository comments depend on.
type PostLookup interface {
	Get(ctx context.Context, id string) (models.Post, error)
}
