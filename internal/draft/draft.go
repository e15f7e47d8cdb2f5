package draft

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Luiz-altf4/Rose-Forum/internal/debounce"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/Luiz-altf4/Rose-Forum/models"
	"go.uber.org/zap"
)

var ErrEmptyDraft = errors.New("draft has no title and no content")

const DefaultAutosaveDelay = 5 * time.Second

// Repository holds the single unfinished post of the local identity.
type Repository struct {
	doc *storage.Document[*models.Draft]
	now func() time.Time
}

func NewRepository(store storage.Store, log *zap.Logger) *Repository {
	return &Repository{
		doc: storage.NewDocument[*models.Draft](store, storage.DraftKey, log),
		now: time.Now,
	}
}

// Save overwrites the stored draft and stamps SavedAt.
func (r *Repository) Save(ctx context.Context, d models.Draft) (models.Draft, error) {
	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == "" {
		return models.Draft{}, ErrEmptyDraft
	}
	d.SavedAt = r.now()
	if err := r.doc.Save(ctx, &d); err != nil {
		return models.Draft{}, err
	}
	return d, nil
}

func (r *Repository) Load(ctx context.Context) (models.Draft, bool, error) {
	d, _, err := r.doc.Load(ctx)
	if err != nil || d == nil {
		return models.Draft{}, false, err
	}
	return *d, true, nil
}

func (r *Repository) Clear(ctx context.Context) error {
	return r.doc.Remove(ctx)
}

// AutoSaver saves the latest touched draft once editing has been idle for the delay.
type AutoSaver struct {
	repo     *Repository
	debounce *debounce.Debouncer
	log      *zap.Logger

	mu      sync.Mutex
	latest  models.Draft
	lastErr error
}

func NewAutoSaver(repo *Repository, delay time.Duration, log *zap.Logger) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AutoSaver{
		repo:     repo,
		debounce: debounce.New(delay),
		log:      log,
	}
}

// Touch records the current form state and restarts the idle timer.
func (a *AutoSaver) Touch(d models.Draft) {
	a.mu.Lock()
	a.latest = d
	a.mu.Unlock()

	a.debounce.Trigger(a.save)
}

// Flush saves a pending draft immediately. It reports whether one was pending.
func (a *AutoSaver) Flush() bool {
	return a.debounce.Flush()
}

// Err returns the error of the most recent save attempt, nil after a successful one.
func (a *AutoSaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// Stop drops a pending save.
func (a *AutoSaver) Stop() {
	a.debounce.Cancel()
}

func (a *AutoSaver) save() {
	a.mu.Lock()
	d := a.latest
	a.mu.Unlock()

	_, err := a.repo.Save(context.Background(), d)

	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()

	switch {
	case err == nil:
	case errors.Is(err, ErrEmptyDraft):
		a.log.Debug("skipping autosave of empty draft")
	default:
		a.log.Warn("draft autosave failed", zap.Error(err))
	}
}
