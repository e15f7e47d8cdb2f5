package comment

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
	ErrNotFound      = errors.New("comment not found")
	ErrValidation    = errors.New("invalid comment")
	ErrInvalidParent = errors.New("invalid parent comment")
)

const MaxContentLength = 2000

// Thread is a comment with its replies, oldest first.
type Thread struct {
	models.Comment
	Children []*Thread
}

// Repository stores all comments of all posts flat in one document.
type Repository struct {
	mu      sync.Mutex
	doc     *storage.Document[[]models.Comment]
	posts   PostLookup
	ids     idgen.Generator
	authors identity.AuthorResolver
	events  subscription.Publisher
	now     func() time.Time
}

var _ CommentStorage = (*Repository)(nil)

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

func NewRepository(store storage.Store, posts PostLookup, authors identity.AuthorResolver, log *zap.Logger, opts ...Option) *Repository {
	r := &Repository{
		doc:     storage.NewDocument[[]models.Comment](store, storage.CommentsKey, log),
		posts:   posts,
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

func (r *Repository) all(ctx context.Context) ([]models.Comment, error) {
	comments, _, err := r.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

func (r *Repository) Create(ctx context.Context, postID, content string, parentID *string) (models.Comment, error) {
	content, err := validContent(content)
	if err != nil {
		return models.Comment{}, err
	}

	if _, err := r.posts.Get(ctx, postID); err != nil {
		return models.Comment{}, fmt.Errorf("could not comment on post %s: %w", postID, err)
	}

	author, err := r.authors.Author(ctx)
	if err != nil {
		return models.Comment{}, fmt.Errorf("could not resolve author: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	comments, err := r.all(ctx)
	if err != nil {
		return models.Comment{}, err
	}

	var parentPtr *string
	if parentID != nil {
		i := indexOf(comments, *parentID)
		if i < 0 || comments[i].PostID != postID {
			return models.Comment{}, fmt.Errorf("%w: %s", ErrInvalidParent, *parentID)
		}
		parent := *parentID
		parentPtr = &parent
	}

	c := models.Comment{
		ID:       r.ids.NewID(),
		PostID:   postID,
		ParentID: parentPtr,
		Content:  content,
		Author:   author,
		Date:     r.now(),
	}

	if err := r.doc.Save(ctx, append(comments, c)); err != nil {
		return models.Comment{}, err
	}

	r.events.Publish(subscription.Event{Topic: subscription.PostTopic(postID), Kind: subscription.CommentCreated, ID: c.ID})
	return c, nil
}

func (r *Repository) Get(ctx context.Context, id string) (models.Comment, error) {
	comments, err := r.all(ctx)
	if err != nil {
		return models.Comment{}, err
	}
	i := indexOf(comments, id)
	if i < 0 {
		return models.Comment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return comments[i], nil
}

func (r *Repository) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	comments, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	return byPost(comments, postID), nil
}

// ListThread returns the top-level comments of a post with their replies.
// Comments whose parent is missing or belongs to another post are not reachable.
func (r *Repository) ListThread(ctx context.Context, postID string) ([]*Thread, error) {
	comments, err := r.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return BuildThread(comments), nil
}

// BuildThread arranges comments of a single post into a forest.
func BuildThread(comments []models.Comment) []*Thread {
	children := make(map[string][]models.Comment)
	roots := make([]models.Comment, 0)
	for _, c := range comments {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var build func(c models.Comment) *Thread
	build = func(c models.Comment) *Thread {
		node := &Thread{Comment: c, Children: make([]*Thread, 0, len(children[c.ID]))}
		for _, child := range children[c.ID] {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	forest := make([]*Thread, 0, len(roots))
	for _, c := range roots {
		forest = append(forest, build(c))
	}
	return forest
}

func (r *Repository) CountTopLevel(ctx context.Context, postID string) (int, error) {
	comments, err := r.ListByPost(ctx, postID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range comments {
		if c.ParentID == nil {
			n++
		}
	}
	return n, nil
}

func (r *Repository) Count(ctx context.Context, postID string) (int, error) {
	comments, err := r.ListByPost(ctx, postID)
	if err != nil {
		return 0, err
	}
	return len(comments), nil
}

func (r *Repository) Update(ctx context.Context, id, content string) (bool, error) {
	content, err := validContent(content)
	if err != nil {
		return false, err
	}
	_, found, err := r.modify(ctx, id, subscription.CommentUpdated, func(c *models.Comment) error {
		c.Content = content
		return nil
	})
	return found, err
}

// Delete removes the comment together with every reply below it.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments, err := r.all(ctx)
	if err != nil {
		return false, err
	}
	i := indexOf(comments, id)
	if i < 0 {
		return false, nil
	}
	postID := comments[i].PostID

	doomed := map[string]bool{id: true}
	for grew := true; grew; {
		grew = false
		for _, c := range comments {
			if c.ParentID != nil && doomed[*c.ParentID] && !doomed[c.ID] {
				doomed[c.ID] = true
				grew = true
			}
		}
	}

	remaining := make([]models.Comment, 0, len(comments)-len(doomed))
	for _, c := range comments {
		if !doomed[c.ID] {
			remaining = append(remaining, c)
		}
	}
	if err := r.doc.Save(ctx, remaining); err != nil {
		return false, err
	}

	r.events.Publish(subscription.Event{Topic: subscription.PostTopic(postID), Kind: subscription.CommentDeleted, ID: id})
	return true, nil
}

// DeleteByPost removes every comment of a post and reports how many were removed.
func (r *Repository) DeleteByPost(ctx context.Context, postID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments, err := r.all(ctx)
	if err != nil {
		return 0, err
	}

	remaining := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if c.PostID != postID {
			remaining = append(remaining, c)
		}
	}
	removed := len(comments) - len(remaining)
	if removed == 0 {
		return 0, nil
	}
	if err := r.doc.Save(ctx, remaining); err != nil {
		return 0, err
	}
	return removed, nil
}

// PruneOrphans removes comments whose post is not in livePosts and reports how many were removed.
func (r *Repository) PruneOrphans(ctx context.Context, livePosts map[string]struct{}) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments, err := r.all(ctx)
	if err != nil {
		return 0, err
	}

	remaining := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		if _, ok := livePosts[c.PostID]; ok {
			remaining = append(remaining, c)
		}
	}
	removed := len(comments) - len(remaining)
	if removed == 0 {
		return 0, nil
	}
	if err := r.doc.Save(ctx, remaining); err != nil {
		return 0, err
	}
	return removed, nil
}

func (r *Repository) Vote(ctx context.Context, id string, direction vote.Direction) (models.Comment, error) {
	c, found, err := r.modify(ctx, id, subscription.CommentUpdated, func(c *models.Comment) error {
		return vote.Toggle(&c.Tally, direction)
	})
	if err != nil {
		return models.Comment{}, err
	}
	if !found {
		return models.Comment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return c, nil
}

func (r *Repository) modify(ctx context.Context, id, kind string, fn func(c *models.Comment) error) (models.Comment, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	comments, err := r.all(ctx)
	if err != nil {
		return models.Comment{}, false, err
	}
	i := indexOf(comments, id)
	if i < 0 {
		return models.Comment{}, false, nil
	}

	c := comments[i]
	if err := fn(&c); err != nil {
		return models.Comment{}, true, err
	}
	comments[i] = c

	if err := r.doc.Save(ctx, comments); err != nil {
		return models.Comment{}, true, err
	}

	r.events.Publish(subscription.Event{Topic: subscription.PostTopic(c.PostID), Kind: kind, ID: id})
	return c, true, nil
}

func indexOf(comments []models.Comment, id string) int {
	for i := range comments {
		if comments[i].ID == id {
			return i
		}
	}
	return -1
}

func byPost(comments []models.Comment, postID string) []models.Comment {
	out := make([]models.Comment, 0)
	for _, c := range comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out
}

func validContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" || utf8.RuneCountInString(content) > MaxContentLength {
		return "", fmt.Errorf("%w: content is too long or empty", ErrValidation)
	}
	return content, nil
}
