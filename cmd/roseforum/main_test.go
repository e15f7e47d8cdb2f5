package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Luiz-altf4/Rose-Forum/internal/draft"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	a := &app{}
	cliApp := a.cliApp()
	cliApp.Writer = &out
	cliApp.ErrWriter = &out
	err := cliApp.Run(append([]string{"roseforum", "--storage", "memory"}, args...))
	return out.String(), err
}

func TestSeed(t *testing.T) {
	out, err := run(t, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "demo posts created")
}

func TestPostCreate(t *testing.T) {
	out, err := run(t, "--as", "Rosa", "post", "create", "--title", "Hello World", "--content", "First content here", "--tags", "go, rust")
	require.NoError(t, err)
	assert.Contains(t, out, "created post ")

	_, err = run(t, "post", "create", "--title", "Hi", "--content", "First content here")
	assert.Error(t, err)
}

func TestPostList(t *testing.T) {
	out, err := run(t, "post", "list", "--sort", "titulo")
	require.NoError(t, err)
	assert.Contains(t, out, "page 1 of 1")

	_, err = run(t, "post", "list", "--sort", "popular")
	assert.Error(t, err)
}

func TestArgumentCount(t *testing.T) {
	_, err := run(t, "post", "show")
	assert.ErrorIs(t, err, errUsage)
}

func TestWhoamiUsesContextName(t *testing.T) {
	out, err := run(t, "--as", "Visitante", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Visitante")
}

func TestChatSendPrintsReplyFromEvents(t *testing.T) {
	out, err := run(t, "--as", "Rosa", "chat", "send", "Ana", "Oi")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Rosa: Oi")
	assert.Contains(t, lines[1], "Ana: ")
}

func TestDraftSave(t *testing.T) {
	out, err := run(t, "draft", "save", "--title", "Rascunho")
	require.NoError(t, err)
	assert.Contains(t, out, "draft saved at")

	_, err = run(t, "draft", "save", "--category", "arte")
	assert.ErrorIs(t, err, draft.ErrEmptyDraft)
}
