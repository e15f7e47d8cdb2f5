package post

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/Luiz-altf4/Rose-Forum/internal/idgen"
	"github.com/Luiz-altf4/Rose-Forum/internal/identity"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/Luiz-altf4/Rose-Forum/internal/subscription"
	"github.com/Luiz-altf4/Rose-Forum/internal/vote"
	"github.com/Luiz-altf4/Rose-Forum/models"
	"go.uber.org/zap"
)

var (
	ErrNotFound   = errors.New("post not found")
	ErrValidation = errors.New("invalid post")
)

const (
	MinTitleLength   = 3
	MinContentLength = 10
)

type NewPost struct {
	Title    string
	Content  string
	Category string
	Tags     []string
}

// PostUpdate holds the fields to merge; nil fields are left alone.
type PostUpdate struct {
	Title    *string
	Content  *string
	Category *string
	Tags     *[]string
}

// Repository keeps every post in one document, newest first.
// Each operation reads the whole collection, changes it and writes it back.
type Repository struct {
	mu      sync.Mutex
	doc     *storage.Document[[]models.Post]
	ids     idgen.Generator
	authors identity.AuthorResolver
	events  subscription.Publisher
	now     func() time.Time
}

var _ PostStorage = (*Repository)(nil)

type Option func(*Repository)

func WithIDGenerator(ids idgen.Generator) Option {
	return func(r *Repository) { r.ids = ids }
}

func WithPublisher(p subscription.Publisher) Option {
	return func(r *Repository) { r.events = p }
}

func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func NewRepository(store storage.Store, authors identity.AuthorResolver, log *zap.Logger, opts ...Option) *Repository {
	r := &Repository{
		doc:     storage.NewDocument[[]models.Post](store, storage.PostsKey, log),
		ids:     idgen.UUID{},
		authors: authors,
		events:  subscription.Nop{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) ListAll(ctx context.Context) ([]models.Post, error) {
	posts, _, err := r.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func (r *Repository) Get(ctx context.Context, id string) (models.Post, error) {
	posts, err := r.ListAll(ctx)
	if err != nil {
		return models.Post{}, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return models.Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return posts[i], nil
}

func (r *Repository) Create(ctx context.Context, input NewPost) (models.Post, error) {
	title, err := validTitle(input.Title)
	if err != nil {
		return models.Post{}, err
	}
	content, err := validContent(input.Content)
	if err != nil {
		return models.Post{}, err
	}

	author, err := r.authors.Author(ctx)
	if err != nil {
		return models.Post{}, fmt.Errorf("could not resolve author: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.ListAll(ctx)
	if err != nil {
		return models.Post{}, err
	}

	post := models.Post{
		ID:       r.ids.NewID(),
		Title:    title,
		Content:  content,
		Category: category(input.Category),
		Tags:     copyTags(input.Tags),
		Date:     r.now(),
		Author:   author,
	}

	updated := make([]models.Post, 0, len(posts)+1)
	updated = append(updated, post)
	updated = append(updated, posts...)
	if err := r.doc.Save(ctx, updated); err != nil {
		return models.Post{}, err
	}

	r.events.Publish(subscription.Event{Topic: subscription.TopicPosts, Kind: subscription.PostCreated, ID: post.ID})
	return post, nil
}

// Update merges changes into the post. It returns false when id is unknown.
func (r *Repository) Update(ctx context.Context, id string, changes PostUpdate) (bool, error) {
	var title, content string
	var err error
	if changes.Title != nil {
		if title, err = validTitle(*changes.Title); err != nil {
			return false, err
		}
	}
	if changes.Content != nil {
		if content, err = validContent(*changes.Content); err != nil {
			return false, err
		}
	}

	_, found, err := r.modify(ctx, id, subscription.PostUpdated, func(p *models.Post) error {
		if changes.Title != nil {
			p.Title = title
		}
		if changes.Content != nil {
			p.Content = content
		}
		if changes.Category != nil {
			p.Category = category(*changes.Category)
		}
		if changes.Tags != nil {
			p.Tags = copyTags(*changes.Tags)
		}
		updatedAt := r.now()
		p.UpdatedAt = &updatedAt
		return nil
	})
	return found, err
}

func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.ListAll(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return false, nil
	}

	remaining := make([]models.Post, 0, len(posts)-1)
	remaining = append(remaining, posts[:i]...)
	remaining = append(remaining, posts[i+1:]...)
	if err := r.doc.Save(ctx, remaining); err != nil {
		return false, err
	}

	r.events.Publish(subscription.Event{Topic: subscription.TopicPosts, Kind: subscription.PostDeleted, ID: id})
	return true, nil
}

func (r *Repository) IncrementViews(ctx context.Context, id string) (bool, error) {
	_, found, err := r.modify(ctx, id, subscription.PostUpdated, func(p *models.Post) error {
		p.Views++
		return nil
	})
	return found, err
}

// Like bumps the likes counter. It is independent of votes.
func (r *Repository) Like(ctx context.Context, id string) (bool, error) {
	_, found, err := r.modify(ctx, id, subscription.PostUpdated, func(p *models.Post) error {
		p.Likes++
		return nil
	})
	return found, err
}

func (r *Repository) Vote(ctx context.Context, id string, direction vote.Direction) (models.Post, error) {
	post, found, err := r.modify(ctx, id, subscription.PostUpdated, func(p *models.Post) error {
		return vote.Toggle(&p.Tally, direction)
	})
	if err != nil {
		return models.Post{}, err
	}
	if !found {
		return models.Post{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return post, nil
}

// SeedIfEmpty stores posts as the whole collection when none exist yet.
func (r *Repository) SeedIfEmpty(ctx context.Context, posts []models.Post) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.ListAll(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}
	if err := r.doc.Save(ctx, posts); err != nil {
		return false, err
	}
	return true, nil
}

// modify applies fn to the post with the given id and writes the collection.
// When fn or the write fails the stored collection is left as it was.
func (r *Repository) modify(ctx context.Context, id, kind string, fn func(p *models.Post) error) (models.Post, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	posts, err := r.ListAll(ctx)
	if err != nil {
		return models.Post{}, false, err
	}
	i := indexOf(posts, id)
	if i < 0 {
		return models.Post{}, false, nil
	}

	post := posts[i]
	if err := fn(&post); err != nil {
		return models.Post{}, true, err
	}
	posts[i] = post

	if err := r.doc.Save(ctx, posts); err != nil {
		return models.Post{}, true, err
	}

	r.events.Publish(subscription.Event{Topic: subscription.TopicPosts, Kind: kind, ID: id})
	return post, true, nil
}

func indexOf(posts []models.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}

func validTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) < MinTitleLength {
		return "", fmt.Errorf("%w: title must have at least %d characters", ErrValidation, MinTitleLength)
	}
	return title, nil
}

func validContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) < MinContentLength {
		return "", fmt.Errorf("%w: content must have at least %d characters", ErrValidation, MinContentLength)
	}
	return content, nil
}

func category(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return models.DefaultCategory
	}
	return c
}

func copyTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

// ParseTags splits the comma separated tag input of the post form.
func ParseTags(raw string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
