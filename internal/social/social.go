package social

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Luiz-altf4/Rose-Forum/internal/idgen"
	"github.com/Luiz-altf4/Rose-Forum/internal/identity"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/Luiz-altf4/Rose-Forum/models"
	"go.uber.org/zap"
)

var (
	ErrNotFound      = errors.New("friend request not found")
	ErrNotPending    = errors.New("friend request already resolved")
	ErrAlreadyExists = errors.New("friendship already exists or is pending")
	ErrInvalidTarget = errors.New("invalid friend request target")
)

// Repository keeps the friend list and the friend requests of the local identity.
type Repository struct {
	mu       sync.Mutex
	friends  *storage.Document[[]models.Friend]
	requests *storage.Document[[]models.FriendRequest]
	ids      idgen.Generator
	authors  identity.AuthorResolver
	log      *zap.Logger
	now      func() time.Time
}

func NewRepository(store storage.Store, authors identity.AuthorResolver, ids idgen.Generator, log *zap.Logger) *Repository {
	if ids == nil {
		ids = idgen.UUID{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{
		friends:  storage.NewDocument[[]models.Friend](store, storage.FriendsKey, log),
		requests: storage.NewDocument[[]models.FriendRequest](store, storage.FriendRequestsKey, log),
		ids:      ids,
		authors:  authors,
		log:      log,
		now:      time.Now,
	}
}

func (r *Repository) Friends(ctx context.Context) ([]models.Friend, error) {
	friends, _, err := r.friends.Load(ctx)
	if err != nil {
		return nil, err
	}
	if friends == nil {
		friends = []models.Friend{}
	}
	return friends, nil
}

func (r *Repository) Requests(ctx context.Context) ([]models.FriendRequest, error) {
	requests, _, err := r.requests.Load(ctx)
	if err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.FriendRequest{}
	}
	return requests, nil
}

func (r *Repository) SendRequest(ctx context.Context, to string) (models.FriendRequest, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return models.FriendRequest{}, fmt.Errorf("%w: empty username", ErrInvalidTarget)
	}

	from, err := r.authors.Author(ctx)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("could not resolve author: %w", err)
	}
	if strings.EqualFold(from, to) {
		return models.FriendRequest{}, fmt.Errorf("%w: cannot befriend yourself", ErrInvalidTarget)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	friends, err := r.Friends(ctx)
	if err != nil {
		return models.FriendRequest{}, err
	}
	for _, f := range friends {
		if strings.EqualFold(f.Username, to) {
			return models.FriendRequest{}, fmt.Errorf("%w: %s is already a friend", ErrAlreadyExists, to)
		}
	}

	requests, err := r.Requests(ctx)
	if err != nil {
		return models.FriendRequest{}, err
	}
	for _, req := range requests {
		if req.Status == models.RequestPending && strings.EqualFold(other(req, from), to) {
			return models.FriendRequest{}, fmt.Errorf("%w: request to %s is pending", ErrAlreadyExists, to)
		}
	}

	req := models.FriendRequest{
		ID:     r.ids.NewID(),
		From:   from,
		To:     to,
		Status: models.RequestPending,
		Date:   r.now(),
	}
	if err := r.requests.Save(ctx, append(requests, req)); err != nil {
		return models.FriendRequest{}, err
	}
	return req, nil
}

// Accept resolves a pending request and adds the other party as a friend.
func (r *Repository) Accept(ctx context.Context, id string) (models.Friend, error) {
	me, err := r.authors.Author(ctx)
	if err != nil {
		return models.Friend{}, fmt.Errorf("could not resolve author: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	requests, i, err := r.pending(ctx, id)
	if err != nil {
		return models.Friend{}, err
	}
	friends, err := r.Friends(ctx)
	if err != nil {
		return models.Friend{}, err
	}

	requests[i].Status = models.RequestAccepted
	if err := r.requests.Save(ctx, requests); err != nil {
		return models.Friend{}, err
	}

	username := other(requests[i], me)
	for _, f := range friends {
		if strings.EqualFold(f.Username, username) {
			return f, nil
		}
	}

	friend := models.Friend{
		ID:       r.ids.NewID(),
		Username: username,
		Since:    r.now(),
	}
	if err := r.friends.Save(ctx, append(friends, friend)); err != nil {
		requests[i].Status = models.RequestPending
		if rollbackErr := r.requests.Save(ctx, requests); rollbackErr != nil {
			r.log.Error("could not reopen friend request",
				zap.String("id", id),
				zap.Error(rollbackErr),
			)
		}
		return models.Friend{}, err
	}
	return friend, nil
}

func (r *Repository) Reject(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	requests, i, err := r.pending(ctx, id)
	if err != nil {
		return err
	}
	requests[i].Status = models.RequestRejected
	return r.requests.Save(ctx, requests)
}

// RemoveFriend reports whether username was in the friend list.
func (r *Repository) RemoveFriend(ctx context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	friends, err := r.Friends(ctx)
	if err != nil {
		return false, err
	}

	remaining := make([]models.Friend, 0, len(friends))
	for _, f := range friends {
		if !strings.EqualFold(f.Username, username) {
			remaining = append(remaining, f)
		}
	}
	if len(remaining) == len(friends) {
		return false, nil
	}
	if err := r.friends.Save(ctx, remaining); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Repository) pending(ctx context.Context, id string) ([]models.FriendRequest, int, error) {
	requests, err := r.Requests(ctx)
	if err != nil {
		return nil, -1, err
	}
	for i := range requests {
		if requests[i].ID != id {
			continue
		}
		if requests[i].Status != models.RequestPending {
			return nil, -1, fmt.Errorf("%w: %s is %s", ErrNotPending, id, requests[i].Status)
		}
		return requests, i, nil
	}
	return nil, -1, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// other returns the party of req that is not me.
func other(req models.FriendRequest, me string) string {
	if strings.EqualFold(req.From, me) {
		return req.To
	}
	return req.From
}
