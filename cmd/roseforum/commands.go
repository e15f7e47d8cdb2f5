package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/Luiz-altf4/Rose-Forum/internal/comment"
	"github.com/Luiz-altf4/Rose-Forum/internal/draft"
	"github.com/Luiz-altf4/Rose-Forum/internal/forum"
	"github.com/Luiz-altf4/Rose-Forum/internal/post"
	"github.com/Luiz-altf4/Rose-Forum/internal/query"
	"github.com/Luiz-altf4/Rose-Forum/internal/subscription"
	"github.com/Luiz-altf4/Rose-Forum/internal/vote"
	"github.com/Luiz-altf4/Rose-Forum/models"
	"github.com/urfave/cli/v2"
)

var errUsage = errors.New("wrong number of arguments")

func (a *app) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:   "seed",
			Usage:  "create the demo user and demo posts when the forum is empty",
			Action: a.seed,
		},
		{
			Name:  "whoami",
			Usage: "show or rename the local identity",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "rename", Usage: "new display name"},
			},
			Action: a.whoami,
		},
		{
			Name:  "post",
			Usage: "list, read and write posts",
			Subcommands: []*cli.Command{
				{
					Name:  "list",
					Usage: "search, filter, sort and page through posts",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "query", Aliases: []string{"q"}},
						&cli.StringFlag{Name: "category", Aliases: []string{"c"}},
						&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Value: string(query.SortRecent), Usage: "recentes, antigos, titulo or categoria"},
						&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Value: 1},
					},
					Action: a.postList,
				},
				{
					Name:      "show",
					Usage:     "read a post with its comments",
					ArgsUsage: "POST_ID",
					Action:    a.postShow,
				},
				{
					Name:   "create",
					Usage:  "publish a post",
					Flags:  postFlags(true),
					Action: a.postCreate,
				},
				{
					Name:      "edit",
					Usage:     "change fields of a post",
					ArgsUsage: "POST_ID",
					Flags:     postFlags(false),
					Action:    a.postEdit,
				},
				{
					Name:      "delete",
					Usage:     "delete a post and its comments",
					ArgsUsage: "POST_ID",
					Action:    a.postDelete,
				},
				{
					Name:      "vote",
					Usage:     "toggle an up or down vote",
					ArgsUsage: "POST_ID up|down",
					Action:    a.postVote,
				},
				{
					Name:      "like",
					ArgsUsage: "POST_ID",
					Action:    a.postLike,
				},
			},
		},
		{
			Name:  "comment",
			Usage: "write and vote on comments",
			Subcommands: []*cli.Command{
				{
					Name:      "add",
					Usage:     "comment on a post or reply to a comment",
					ArgsUsage: "POST_ID TEXT",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "reply-to", Usage: "parent comment id"},
					},
					Action: a.commentAdd,
				},
				{
					Name:      "edit",
					ArgsUsage: "COMMENT_ID TEXT",
					Action:    a.commentEdit,
				},
				{
					Name:      "delete",
					Usage:     "delete a comment and its replies",
					ArgsUsage: "COMMENT_ID",
					Action:    a.commentDelete,
				},
				{
					Name:      "vote",
					ArgsUsage: "COMMENT_ID up|down",
					Action:    a.commentVote,
				},
			},
		},
		{
			Name:  "stats",
			Usage: "forum statistics",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "store-metrics", Usage: "also print storage operation counters of this run"},
			},
			Action: a.stats,
		},
		{
			Name:  "draft",
			Usage: "manage the unfinished post",
			Subcommands: []*cli.Command{
				{Name: "save", Flags: postFlags(false), Action: a.draftSave},
				{Name: "show", Action: a.draftShow},
				{Name: "clear", Action: a.draftClear},
				{
					Name:   "publish",
					Usage:  "publish the draft as a post and clear it",
					Action: a.draftPublish,
				},
			},
		},
		{
			Name:  "friend",
			Usage: "friend requests and friend list",
			Subcommands: []*cli.Command{
				{Name: "list", Action: a.friendList},
				{Name: "request", ArgsUsage: "USERNAME", Action: a.friendRequest},
				{Name: "accept", ArgsUsage: "REQUEST_ID", Action: a.friendAccept},
				{Name: "reject", ArgsUsage: "REQUEST_ID", Action: a.friendReject},
				{Name: "remove", ArgsUsage: "USERNAME", Action: a.friendRemove},
			},
		},
		{
			Name:  "chat",
			Usage: "simulated chat with friends",
			Subcommands: []*cli.Command{
				{Name: "send", ArgsUsage: "USERNAME TEXT", Action: a.chatSend},
				{Name: "history", ArgsUsage: "USERNAME", Action: a.chatHistory},
			},
		},
	}
}

func postFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: required},
		&cli.StringFlag{Name: "content", Required: required},
		&cli.StringFlag{Name: "category"},
		&cli.StringFlag{Name: "tags", Usage: "comma separated"},
	}
}

func args(c *cli.Context, n int) ([]string, error) {
	if c.NArg() != n {
		return nil, fmt.Errorf("%w: %s %s", errUsage, c.Command.Name, c.Command.ArgsUsage)
	}
	return c.Args().Slice(), nil
}

func (a *app) seed(c *cli.Context) error {
	seeded, err := a.forum.SeedDemo(c.Context)
	if err != nil {
		return err
	}
	if !seeded {
		fmt.Fprintln(c.App.Writer, "forum already has posts, nothing to seed")
		return nil
	}
	fmt.Fprintln(c.App.Writer, "demo posts created")
	return nil
}

func (a *app) whoami(c *cli.Context) error {
	if c.IsSet("rename") {
		user, err := a.forum.Identity.Rename(c.Context, c.String("rename"))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "renamed to %s\n", user.Name)
		return nil
	}

	user, err := a.forum.Identity.Current(c.Context)
	if err != nil {
		return err
	}
	author, err := a.forum.Identity.Author(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s (since %s)\n", author, user.JoinDate.Format("02/01/2006"))
	return nil
}

func (a *app) postList(c *cli.Context) error {
	mode, err := query.ParseSortMode(c.String("sort"))
	if err != nil {
		return err
	}
	page, err := a.forum.List(c.Context, forum.Listing{
		Query:    c.String("query"),
		Category: c.String("category"),
		Sort:     mode,
		Page:     c.Int("page"),
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCORE\tVIEWS\tCATEGORY\tTITLE\tAUTHOR\tDATE")
	for _, p := range page.Items {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.Score(), p.Views, p.Category, p.Title, p.Author, p.Date.Format("02/01/2006 15:04"))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "page %d of %d\n", page.Page, page.TotalPages)
	return nil
}

func (a *app) postShow(c *cli.Context) error {
	in, err := args(c, 1)
	if err != nil {
		return err
	}
	viewed, err := a.forum.ViewPost(c.Context, in[0])
	if err != nil {
		return err
	}

	p := viewed.Post
	out := c.App.Writer
	fmt.Fprintf(out, "%s\n%s | %s | %s\n", p.Title, p.Author, p.Category, p.Date.Format("02/01/2006 15:04"))
	if len(p.Tags) > 0 {
		fmt.Fprintf(out, "tags: %s\n", strings.Join(p.Tags, ", "))
	}
	fmt.Fprintf(out, "\n%s\n\n", p.Content)
	fmt.Fprintf(out, "score %d (%d up, %d down) | %d views | %d likes | %d comments\n",
		p.Score(), p.Upvotes, p.Downvotes, p.Views, p.Likes, viewed.Comments)
	printThread(out, viewed.Thread, 0)
	return nil
}

func printThread(out io.Writer, nodes []*comment.Thread, depth int) {
	for _, n := range nodes {
		fmt.Fprintf(out, "%s[%s] %s (%d): %s\n", strings.Repeat("  ", depth), n.ID, n.Author, n.Score(), n.Content)
		printThread(out, n.Children, depth+1)
	}
}

func (a *app) postCreate(c *cli.Context) error {
	p, err := a.forum.Posts.Create(c.Context, post.NewPost{
		Title:    c.String("title"),
		Content:  c.String("content"),
		Category: c.String("category"),
		Tags:     post.ParseTags(c.String("tags")),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "created post %s\n", p.ID)
	return nil
}

func (a *app) postEdit(c *cli.Context) error {
	in, err := args(c, 1)
	if err != nil {
		return err
	}

	var changes post.PostUpdate
	if c.IsSet("title") {
		v := c.String("title")
		changes.Title = &v
	}
	if c.IsSet("content") {
		v := c.String("content")
		changes.Content = &v
	}
	if c.IsSet("category") {
		v := c.String("category")
		changes.Category = &v
	}
	if c.IsSet("tags") {
		v := post.ParseTags(c.String("tags"))
		changes.Tags = &v
	}

	ok, err := a.forum.Posts.Update(c.Context, in[0], changes)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", post.ErrNotFound, in[0])
	}
	fmt.Fprintln(c.App.Writer, "post updated")
	return nil
}

func (a *app) postDelete(c *cli.Context) error {
	in, err := args(c, 1)
	if err != nil {
		return err
	}
	ok, err := a.forum.DeletePost(c.Context, in[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", post.ErrNotFound, in[0])
	}
	fmt.Fprintln(c.App.Writer, "post deleted")
	return nil
}

func (a *app) postVote(c *cli.Context) error {
	in, err := args(c, 2)
	if err != nil {
		return err
	}
	d, err := vote.ParseDirection(in[1])
	if err != nil {
		return err
	}
	p, err := a.forum.Posts.Vote(c.Context, in[0], d)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "score %d\n", p.Score())
	return nil
}

func (a *app) postLike(c *cli.Context) error {
	in, err := args(c, 1)
	if err != nil {
		return err
	}
	ok, err := a.forum.Posts.Like(c.Context, in[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", post.ErrNotFound, in[0])
	}
	return nil
}

func (a *app) commentAdd(c *cli.Context) error {
	in, err := args(c, 2)
	if err != nil {
		return err
	}
	var parent *string
	if c.IsSet("reply-to") {
		v := c.String("reply-to")
		parent = &v
	}
	cm, err := a.forum.Comments.Create(c.Context, in[0], in[1], parent)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "created comment %s\n", cm.ID)
	return nil
}

func (a *app) commentEdit(c *cli.Context) error {
	in, err := args(c, 2)
	if err != nil {
		return err
	}
	ok, err := a.forum.Comments.Update(c.Context, in[0], in[1])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", comment.ErrNotFound, in[0])
	}
	return nil
}

func (a *app) commentDelete(c *cli.Context) error {
	in, err := args(c, 1)
	if err != nil {
		return err
	}
	ok, err := a.forum.Comments.Delete(c.Context, in[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", comment.ErrNotFound, in[0])
	}
	return nil
}

func (a *app) commentVote(c *cli.Context) error {
	in, err := args(c, 2)
	if err != nil {
		return err
	}
	d, err := vote.ParseDirection(in[1])
	if err != nil {
		return err
	}
	cm, err := a.forum.Comments.Vote(c.Context, in[0], d)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "score %d\n", cm.Score())
	return nil
}

func (a *app) stats(c *cli.Context) error {
	s, err := a.forum.Stats(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "posts: %d\ntoday: %d\ncategories: %d\n", s.Total, s.PostedToday, s.DistinctCategories)

	if !c.Bool("store-metrics") {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			sort.Strings(labels)
			if counter := m.GetCounter(); counter != nil {
				fmt.Fprintf(c.App.Writer, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), counter.GetValue())
			}
		}
	}
	return nil
}

func (a *app) draftSave(c *cli.Context) error {
	d, _, err := a.forum.Drafts.Load(c.Context)
	if err != nil {
		return err
	}
	if c.IsSet("title") {
		d.Title = c.String("title")
	}
	if c.IsSet("content") {
		d.Content = c.String("content")
	}
	if c.IsSet("category") {
		d.Category = c.String("category")
	}
	if c.IsSet("tags") {
		d.Tags = c.String("tags")
	}

	if strings.TrimSpace(d.Title) == "" && strings.TrimSpace(d.Content) == "" {
		return draft.ErrEmptyDraft
	}

	// the autosaver would write it after the idle delay; the process exits first
	a.forum.AutoSaver.Touch(d)
	a.forum.AutoSaver.Flush()
	if err := a.forum.AutoSaver.Err(); err != nil {
		return err
	}
	saved, _, err := a.forum.Drafts.Load(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "draft saved at %s\n", saved.SavedAt.Format("15:04:05"))
	return nil
}

func (a *app) draftShow(c *cli.Context) error {
	d, ok, err := a.forum.Drafts.Load(c.Context)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(c.App.Writer, "no draft")
		return nil
	}
	fmt.Fprintf(c.App.Writer, "title: %s\ncategory: %s\ntags: %s\nsaved: %s\n\n%s\n",
		d.Title, d.Category, d.Tags, d.SavedAt.Format("02/01/2006 15:04:05"), d.Content)
	return nil
}

func (a *app) draftClear(c *cli.Context) error {
	return a.forum.Drafts.Clear(c.Context)
}

func (a *app) draftPublish(c *cli.Context) error {
	d, ok, err := a.forum.Drafts.Load(c.Context)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("no draft to publish")
	}
	p, err := a.forum.Posts.Create(c.Context, post.NewPost{
		Title:    d.Title,
		Content:  d.Content,
		Category: d.Category,
		Tags:     post.ParseTags(d.Tags),
	})
	if err != nil {
		return err
	}
	if err := a.forum.Drafts.Clear(c.Context); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "created post %s\n", p.ID)
	return nil
}

func (a *app) friendList(c *cli.Context) error {
	friends, err := a.forum.Social.Friends(c.Context)
	if err != nil {
		return err
	}
	requests, err := a.forum.Social.Requests(c.Context)
	if err != nil {
		return err
	}

	out := c.App.Writer
	for _, f := range friends {
		fmt.Fprintf(out, "friend %s (since %s)\n", f.Username, f.Since.Format("02/01/2006"))
	}
	for _, r := range requests {
		if r.Status == models.RequestPending {
			fmt.Fprintf(out, "pending %s: %s -> %s\n", r.ID, r.From, r.To)
		}
	}
	return nil
}

func (a *app) friendRequest(c *cli.Context) error {
	in, err := args(c, 1)
	if err != nil {
		return err
	}
	req, err := a.forum.Social.SendRequest(c.Context, in[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "request %s sent to %s\n", req.ID, req.To)
	return nil
}

func (a *app) friendAccept(c *cli.Context) error {
	in, err := args(c, 1)
	if err != nil {
		return err
	}
	f, err := a.forum.Social.Accept(c.Context, in[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s is now a friend\n", f.Username)
	return nil
}

func (a *app) friendReject(c *cli.Context) error {
	in, err := args(c, 1)
	if err != nil {
		return err
	}
	return a.forum.Social.Reject(c.Context, in[0])
}

func (a *app) friendRemove(c *cli.Context) error {
	in, err := args(c, 1)
	if err != nil {
		return err
	}
	ok, err := a.forum.Social.RemoveFriend(c.Context, in[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not a friend", in[0])
	}
	return nil
}

func (a *app) chatSend(c *cli.Context) error {
	in, err := args(c, 2)
	if err != nil {
		return err
	}
	with := in[0]

	events, cancel := a.forum.Events.Subscribe(subscription.ChatTopic(with))
	received := collect(events)

	_, sendErr := a.forum.Chat.Send(c.Context, with, in[1])
	if sendErr == nil {
		// the process exits right away, so the simulated reply is written now
		a.forum.Chat.FlushReply(with)
	}
	cancel()
	ids := received()
	if sendErr != nil {
		return sendErr
	}

	history, err := a.forum.Chat.History(c.Context, with)
	if err != nil {
		return err
	}
	byID := make(map[string]models.ChatMessage, len(history))
	for _, m := range history {
		byID[m.ID] = m
	}
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			fmt.Fprintf(c.App.Writer, "%s %s: %s\n", m.Date.Format("15:04"), m.From, m.Text)
		}
	}
	return nil
}

// collect drains events until the subscription is cancelled and returns a
// function that waits for the ids of every event seen.
func collect(events <-chan subscription.Event) func() []string {
	done := make(chan []string, 1)
	go func() {
		ids := make([]string, 0)
		for e := range events {
			ids = append(ids, e.ID)
		}
		done <- ids
	}()
	return func() []string { return <-done }
}

func (a *app) chatHistory(c *cli.Context) error {
	in, err := args(c, 1)
	if err != nil {
		return err
	}
	return a.printChat(c, in[0])
}

func (a *app) printChat(c *cli.Context, with string) error {
	history, err := a.forum.Chat.History(c.Context, with)
	if err != nil {
		return err
	}
	for _, m := range history {
		fmt.Fprintf(c.App.Writer, "%s %s: %s\n", m.Date.Format("15:04"), m.From, m.Text)
	}
	return nil
}
