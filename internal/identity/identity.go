package identity

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/Luiz-altf4/Rose-Forum/models"
	"go.uber.org/zap"
)

var ErrEmptyName = errors.New("identity name cannot be empty")

// AuthorResolver names the author of new posts, comments and messages.
type AuthorResolver interface {
	Author(ctx context.Context) (string, error)
}

// Static resolves every author to the same name.
type Static string

func (s Static) Author(ctx context.Context) (string, error) {
	if name, ok := NameFromContext(ctx); ok {
		return name, nil
	}
	return string(s), nil
}

// Repository owns the single local identity document.
type Repository struct {
	mu  sync.Mutex
	doc *storage.Document[*models.Identity]
	now func() time.Time
}

func NewRepository(store storage.Store, log *zap.Logger) *Repository {
	return &Repository{
		doc: storage.NewDocument[*models.Identity](store, storage.IdentityKey, log),
		now: time.Now,
	}
}

// Current returns the local identity, creating it on first access.
func (r *Repository) Current(ctx context.Context) (*models.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current(ctx)
}

func (r *Repository) current(ctx context.Context) (*models.Identity, error) {
	user, found, err := r.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if found && user != nil && user.Name != "" {
		return user, nil
	}

	user = &models.Identity{
		Name:     DefaultName(),
		JoinDate: r.now(),
	}
	if err := r.doc.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) Rename(ctx context.Context, name string) (*models.Identity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.current(ctx)
	if err != nil {
		return nil, err
	}
	updated := *user
	updated.Name = name
	if err := r.doc.Save(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Seed stores user only when no identity exists yet and reports whether it did.
func (r *Repository) Seed(ctx context.Context, user models.Identity) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, found, err := r.doc.Load(ctx)
	if err != nil {
		return false, err
	}
	if found && existing != nil && existing.Name != "" {
		return false, nil
	}
	if err := r.doc.Save(ctx, &user); err != nil {
		return false, fmt.Errorf("could not store identity: %w", err)
	}
	return true, nil
}

// Author prefers a name carried by ctx over the stored identity.
func (r *Repository) Author(ctx context.Context) (string, error) {
	if name, ok := NameFromContext(ctx); ok {
		return name, nil
	}
	user, err := r.Current(ctx)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

func DefaultName() string {
	return fmt.Sprintf("Usuario%04d", rand.Intn(10000))
}
