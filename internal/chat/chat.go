package chat

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Luiz-altf4/Rose-Forum/internal/debounce"
	"github.com/Luiz-altf4/Rose-Forum/internal/idgen"
	"github.com/Luiz-altf4/Rose-Forum/internal/identity"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/Luiz-altf4/Rose-Forum/internal/subscription"
	"github.com/Luiz-altf4/Rose-Forum/models"
	"go.uber.org/zap"
)

var (
	ErrEmptyMessage = errors.New("empty chat message")
	ErrClosed       = errors.New("chat is closed")
)

const (
	DefaultHistoryLimit = 50
	DefaultReplyDelay   = 2 * time.Second
)

// Replier produces the simulated answer of a friend.
type Replier func(with, text string) string

var cannedReplies = []string{
	"Haha, verdade!",
	"Interessante, me conta mais.",
	"Concordo totalmente.",
	"Depois a gente conversa melhor sobre isso.",
	"Boa! Vi seu último post no fórum.",
}

func RandomReply(with, text string) string {
	return cannedReplies[rand.Intn(len(cannedReplies))]
}

type Options struct {
	HistoryLimit int
	ReplyDelay   time.Duration
	Replier      Replier
	IDs          idgen.Generator
	Publisher    subscription.Publisher
	Now          func() time.Time
}

// Service stores chat messages and answers them with a delayed simulated reply.
// Only the last message of a burst gets a reply.
type Service struct {
	mu      sync.Mutex
	doc     *storage.Document[[]models.ChatMessage]
	authors identity.AuthorResolver
	log     *zap.Logger
	opts    Options

	replyMu sync.Mutex
	replies map[string]*debounce.Debouncer
	closed  bool
}

func NewService(store storage.Store, authors identity.AuthorResolver, log *zap.Logger, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = DefaultReplyDelay
	}
	if opts.Replier == nil {
		opts.Replier = RandomReply
	}
	if opts.IDs == nil {
		opts.IDs = idgen.UUID{}
	}
	if opts.Publisher == nil {
		opts.Publisher = subscription.Nop{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		doc:     storage.NewDocument[[]models.ChatMessage](store, storage.ChatKey, log),
		authors: authors,
		log:     log,
		opts:    opts,
		replies: make(map[string]*debounce.Debouncer),
	}
}

func (s *Service) all(ctx context.Context) ([]models.ChatMessage, error) {
	messages, _, err := s.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}

// History returns the stored messages of one conversation, oldest first.
func (s *Service) History(ctx context.Context, with string) ([]models.ChatMessage, error) {
	messages, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.ChatMessage, 0)
	for _, m := range messages {
		if m.With == with {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Service) Send(ctx context.Context, with, text string) (models.ChatMessage, error) {
	with = strings.TrimSpace(with)
	text = strings.TrimSpace(text)
	if with == "" || text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	s.replyMu.Lock()
	closed := s.closed
	s.replyMu.Unlock()
	if closed {
		return models.ChatMessage{}, ErrClosed
	}

	me, err := s.authors.Author(ctx)
	if err != nil {
		return models.ChatMessage{}, fmt.Errorf("could not resolve author: %w", err)
	}

	msg, err := s.append(ctx, with, me, text)
	if err != nil {
		return models.ChatMessage{}, err
	}

	s.scheduleReply(with, text)
	return msg, nil
}

// FlushReply writes the pending reply for a conversation right away.
func (s *Service) FlushReply(with string) bool {
	s.replyMu.Lock()
	d, ok := s.replies[with]
	s.replyMu.Unlock()
	if !ok {
		return false
	}
	return d.Flush()
}

// Close cancels every pending reply. Later sends fail with ErrClosed.
func (s *Service) Close() {
	s.replyMu.Lock()
	defer s.replyMu.Unlock()

	s.closed = true
	for _, d := range s.replies {
		d.Cancel()
	}
}

func (s *Service) scheduleReply(with, text string) {
	s.replyMu.Lock()
	defer s.replyMu.Unlock()

	if s.closed {
		return
	}
	d, ok := s.replies[with]
	if !ok {
		d = debounce.New(s.opts.ReplyDelay)
		s.replies[with] = d
	}
	d.Trigger(func() {
		reply := s.opts.Replier(with, text)
		if _, err := s.append(context.Background(), with, with, reply); err != nil {
			s.log.Error("failed to store chat reply", zap.String("with", with), zap.Error(err))
		}
	})
}

func (s *Service) append(ctx context.Context, with, from, text string) (models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages, err := s.all(ctx)
	if err != nil {
		return models.ChatMessage{}, err
	}

	msg := models.ChatMessage{
		ID:   s.opts.IDs.NewID(),
		With: with,
		From: from,
		Text: text,
		Date: s.opts.Now(),
	}
	messages = append(messages, msg)
	if over := len(messages) - s.opts.HistoryLimit; over > 0 {
		messages = messages[over:]
	}

	if err := s.doc.Save(ctx, messages); err != nil {
		return models.ChatMessage{}, err
	}

	s.opts.Publisher.Publish(subscription.Event{Topic: subscription.ChatTopic(with), Kind: subscription.ChatMessage, ID: msg.ID})
	return msg, nil
}
