// Package storage defines the key-value boundary every repository persists
// through. Values are JSON documents stored under well-known keys.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrStorageFailure marks a rejected write. Nothing was stored.
	ErrStorageFailure = errors.New("storage failure")
	ErrQuotaExceeded  = errors.New("storage quota exceeded")
)

const (
	PostsKey          = "rose_forum_posts"
	CommentsKey       = "rose_forum_comments"
	IdentityKey       = "rose_forum_user"
	FriendsKey        = "rose_forum_friends"
	FriendRequestsKey = "rose_forum_friend_requests"
	ChatKey           = "rose_forum_chat"
	DraftKey          = "rose_forum_draft"
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}
