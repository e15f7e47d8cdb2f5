// Package forum wires the repositories of one local forum over a single store.
package forum

import (
	"context"
	"fmt"
	"time"

	"github.com/Luiz-altf4/Rose-Forum/internal/chat"
	"github.com/Luiz-altf4/Rose-Forum/internal/comment"
	"github.com/Luiz-altf4/Rose-Forum/internal/draft"
	"github.com/Luiz-altf4/Rose-Forum/internal/identity"
	"github.com/Luiz-altf4/Rose-Forum/internal/idgen"
	"github.com/Luiz-altf4/Rose-Forum/internal/post"
	"github.com/Luiz-altf4/Rose-Forum/internal/query"
	"github.com/Luiz-altf4/Rose-Forum/internal/social"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/Luiz-altf4/Rose-Forum/internal/subscription"
	"github.com/Luiz-altf4/Rose-Forum/models"
	"go.uber.org/zap"
)

type Options struct {
	Logger           *zap.Logger
	Events           subscription.Manager
	IDs              idgen.Generator
	ChatHistoryLimit int
	ChatReplyDelay   time.Duration
	ChatReplier      chat.Replier
	AutosaveDelay    time.Duration
	Now              func() time.Time
}

type Forum struct {
	Identity  *identity.Repository
	Posts     *post.Repository
	Comments  *comment.Repository
	Social    *social.Repository
	Chat      *chat.Service
	Drafts    *draft.Repository
	AutoSaver *draft.AutoSaver
	Events    subscription.Manager

	log *zap.Logger
	now func() time.Time
}

func New(store storage.Store, opts Options) *Forum {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	events := opts.Events
	if events == nil {
		events = subscription.NewSubscriptionManager()
	}
	ids := opts.IDs
	if ids == nil {
		ids = idgen.UUID{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	users := identity.NewRepository(store, log.Named("identity"))
	posts := post.NewRepository(store, users, log.Named("posts"),
		post.WithIDGenerator(ids),
		post.WithPublisher(events),
		post.WithClock(now),
	)
	comments := comment.NewRepository(store, posts, users, log.Named("comments"),
		comment.WithIDGenerator(ids),
		comment.WithPublisher(events),
		comment.WithClock(now),
	)
	drafts := draft.NewRepository(store, log.Named("draft"))

	return &Forum{
		Identity: users,
		Posts:    posts,
		Comments: comments,
		Social:   social.NewRepository(store, users, ids, log.Named("social")),
		Chat: chat.NewService(store, users, log.Named("chat"), chat.Options{
			HistoryLimit: opts.ChatHistoryLimit,
			ReplyDelay:   opts.ChatReplyDelay,
			Replier:      opts.ChatReplier,
			IDs:          ids,
			Publisher:    events,
			Now:          now,
		}),
		Drafts:    drafts,
		AutoSaver: draft.NewAutoSaver(drafts, opts.AutosaveDelay, log.Named("draft")),
		Events:    events,
		log:       log,
		now:       now,
	}
}

// DeletePost removes a post together with all of its comments. Comments left
// behind by an earlier failed delete are removed as well.
func (f *Forum) DeletePost(ctx context.Context, id string) (bool, error) {
	ok, err := f.Posts.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}

	removed, err := f.PruneComments(ctx)
	if err != nil {
		return true, fmt.Errorf("post %s deleted but its comments remain: %w", id, err)
	}
	f.log.Debug("post deleted", zap.String("id", id), zap.Int("comments", removed))
	return true, nil
}

// PruneComments removes every comment whose post no longer exists.
func (f *Forum) PruneComments(ctx context.Context) (int, error) {
	posts, err := f.Posts.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	live := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		live[p.ID] = struct{}{}
	}
	return f.Comments.PruneOrphans(ctx, live)
}

type ViewedPost struct {
	Post     models.Post
	Thread   []*comment.Thread
	Comments int
}

// ViewPost counts a view and returns the post with its comment thread.
func (f *Forum) ViewPost(ctx context.Context, id string) (ViewedPost, error) {
	if _, err := f.Posts.IncrementViews(ctx, id); err != nil {
		return ViewedPost{}, err
	}
	p, err := f.Posts.Get(ctx, id)
	if err != nil {
		return ViewedPost{}, err
	}
	thread, err := f.Comments.ListThread(ctx, id)
	if err != nil {
		return ViewedPost{}, err
	}
	count, err := f.Comments.Count(ctx, id)
	if err != nil {
		return ViewedPost{}, err
	}
	return ViewedPost{Post: p, Thread: thread, Comments: count}, nil
}

type Listing struct {
	Query    string
	Category string
	Sort     query.SortMode
	Page     int
}

// List runs search, category filter, sort and pagination over every post.
func (f *Forum) List(ctx context.Context, l Listing) (query.Page, error) {
	posts, err := f.Posts.ListAll(ctx)
	if err != nil {
		return query.Page{}, err
	}
	posts = query.Search(l.Query, posts)
	posts = query.FilterByCategory(l.Category, posts)
	posts = query.Sort(l.Sort, posts)
	return query.Paginate(posts, l.Page, query.PageSize), nil
}

func (f *Forum) Stats(ctx context.Context) (query.Stats, error) {
	posts, err := f.Posts.ListAll(ctx)
	if err != nil {
		return query.Stats{}, err
	}
	return query.ComputeStats(posts, f.now()), nil
}

// SeedDemo stores the demo user and demo posts where nothing exists yet.
// It reports whether the posts were written.
func (f *Forum) SeedDemo(ctx context.Context) (bool, error) {
	if _, err := f.Identity.Seed(ctx, models.Identity{Name: DemoUserName, JoinDate: f.now()}); err != nil {
		return false, fmt.Errorf("could not seed demo user: %w", err)
	}
	seeded, err := f.Posts.SeedIfEmpty(ctx, demoPosts(f.now()))
	if err != nil {
		return false, fmt.Errorf("could not seed demo posts: %w", err)
	}
	if removed, err := f.PruneComments(ctx); err != nil {
		f.log.Warn("could not prune orphaned comments", zap.Error(err))
	} else if removed > 0 {
		f.log.Info("orphaned comments removed", zap.Int("count", removed))
	}
	if seeded {
		f.log.Info("demo posts created")
	}
	return seeded, nil
}

// Close writes a pending draft and drops pending chat replies.
func (f *Forum) Close() {
	f.AutoSaver.Flush()
	f.Chat.Close()
}
