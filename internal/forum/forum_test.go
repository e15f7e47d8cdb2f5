package forum

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Luiz-altf4/Rose-Forum/internal/idgen"
	"github.com/Luiz-altf4/Rose-Forum/internal/mocks"
	"github.com/Luiz-altf4/Rose-Forum/internal/post"
	"github.com/Luiz-altf4/Rose-Forum/internal/query"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage"
	"github.com/Luiz-altf4/Rose-Forum/internal/storage/memory"
	"github.com/Luiz-altf4/Rose-Forum/internal/subscription"
	"github.com/Luiz-altf4/Rose-Forum/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newForum(t *testing.T) *Forum {
	f := New(memory.NewStore(), Options{
		IDs:            idgen.NewSequence("id"),
		ChatReplyDelay: time.Hour,
		AutosaveDelay:  time.Hour,
		Now:            func() time.Time { return fixedNow },
	})
	t.Cleanup(f.Close)
	return f
}

func TestForum_SeedDemo(t *testing.T) {
	ctx := context.Background()
	f := newForum(t)

	seeded, err := f.SeedDemo(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	posts, err := f.Posts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	assert.Equal(t, "demo1", posts[0].ID)
	assert.Equal(t, fixedNow.Add(-24*time.Hour), posts[0].Date)

	user, err := f.Identity.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, DemoUserName, user.Name)

	t.Run("Not seeded twice", func(t *testing.T) {
		_, err := f.Posts.Delete(ctx, "demo1")
		require.NoError(t, err)

		seeded, err := f.SeedDemo(ctx)
		require.NoError(t, err)
		assert.False(t, seeded)

		posts, err := f.Posts.ListAll(ctx)
		require.NoError(t, err)
		assert.Len(t, posts, 4)
	})
}

func TestForum_SeedDemoKeepsExistingIdentity(t *testing.T) {
	ctx := context.Background()
	f := newForum(t)

	_, err := f.Identity.Rename(ctx, "Rosa")
	require.NoError(t, err)
	_, err = f.SeedDemo(ctx)
	require.NoError(t, err)

	author, err := f.Identity.Author(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rosa", author)
}

func TestForum_PostLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newForum(t)

	events, cancel := f.Events.Subscribe(subscription.TopicPosts)

	_, err := f.Identity.Rename(ctx, "Rosa")
	require.NoError(t, err)

	p, err := f.Posts.Create(ctx, post.NewPost{Title: "Hello World", Content: "First content here", Tags: []string{"a"}})
	require.NoError(t, err)
	assert.Equal(t, "Rosa", p.Author)

	select {
	case e := <-events:
		assert.Equal(t, subscription.PostCreated, e.Kind)
		assert.Equal(t, p.ID, e.ID)
	case <-time.After(time.Second):
		t.Fatal("no post event received")
	}
	cancel()

	root, err := f.Comments.Create(ctx, p.ID, "C1", nil)
	require.NoError(t, err)
	_, err = f.Comments.Create(ctx, p.ID, "C2", &root.ID)
	require.NoError(t, err)

	t.Run("View counts and threads", func(t *testing.T) {
		viewed, err := f.ViewPost(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, viewed.Post.Views)
		assert.Equal(t, 2, viewed.Comments)
		require.Len(t, viewed.Thread, 1)
		assert.Len(t, viewed.Thread[0].Children, 1)
	})

	t.Run("Delete cascades to comments", func(t *testing.T) {
		ok, err := f.DeletePost(ctx, p.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		n, err := f.Comments.Count(ctx, p.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		ok, err = f.DeletePost(ctx, p.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Viewing a missing post", func(t *testing.T) {
		_, err := f.ViewPost(ctx, p.ID)
		assert.ErrorIs(t, err, post.ErrNotFound)
	})
}

func TestForum_ListAndStats(t *testing.T) {
	ctx := context.Background()
	f := newForum(t)

	_, err := f.SeedDemo(ctx)
	require.NoError(t, err)

	page, err := f.List(ctx, Listing{Query: "rust"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "demo2", page.Items[0].ID)

	page, err = f.List(ctx, Listing{Sort: query.SortOldest, Page: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 5)
	assert.Equal(t, "demo5", page.Items[0].ID)
	assert.False(t, page.HasMore)

	page, err = f.List(ctx, Listing{Category: "livros"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	_, err = f.Posts.Create(ctx, post.NewPost{Title: "Fresh post", Content: "Posted today for stats"})
	require.NoError(t, err)

	stats, err := f.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 1, stats.PostedToday)
	assert.Equal(t, 5, stats.DistinctCategories)
}

func TestForum_CloseFlushesDraft(t *testing.T) {
	ctx := context.Background()
	f := New(memory.NewStore(), Options{AutosaveDelay: time.Hour})

	f.AutoSaver.Touch(models.Draft{Title: "Pending"})
	f.Close()

	d, ok, err := f.Drafts.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Pending", d.Title)
}

func TestForum_DeletePostCleansUpAfterFailedCommentWrite(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewMockFailingStore(memory.NewStore())
	f := New(store, Options{IDs: idgen.NewSequence("id"), ChatReplyDelay: time.Hour, AutosaveDelay: time.Hour})
	t.Cleanup(f.Close)

	first, err := f.Posts.Create(ctx, post.NewPost{Title: "First post", Content: "First post content"})
	require.NoError(t, err)
	second, err := f.Posts.Create(ctx, post.NewPost{Title: "Second post", Content: "Second post content"})
	require.NoError(t, err)
	_, err = f.Comments.Create(ctx, first.ID, "On the first", nil)
	require.NoError(t, err)
	kept, err := f.Comments.Create(ctx, second.ID, "On the second", nil)
	require.NoError(t, err)

	store.FailNextSet(storage.CommentsKey, errors.New("backend down"))
	ok, err := f.DeletePost(ctx, first.ID)
	assert.True(t, ok)
	require.ErrorIs(t, err, storage.ErrStorageFailure)

	n, err := f.Comments.Count(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	t.Run("Next seed removes the leftovers", func(t *testing.T) {
		_, err := f.SeedDemo(ctx)
		require.NoError(t, err)

		n, err := f.Comments.Count(ctx, first.ID)
		require.NoError(t, err)
		assert.Zero(t, n)

		_, err = f.Comments.Get(ctx, kept.ID)
		assert.NoError(t, err)
	})

	t.Run("Next delete removes the leftovers", func(t *testing.T) {
		orphanPost, err := f.Posts.Create(ctx, post.NewPost{Title: "Third post", Content: "Third post content"})
		require.NoError(t, err)
		_, err = f.Comments.Create(ctx, orphanPost.ID, "Left behind", nil)
		require.NoError(t, err)

		store.FailNextSet(storage.CommentsKey, errors.New("backend down"))
		_, err = f.DeletePost(ctx, orphanPost.ID)
		require.Error(t, err)

		ok, err := f.DeletePost(ctx, second.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		n, err := f.Comments.Count(ctx, orphanPost.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
