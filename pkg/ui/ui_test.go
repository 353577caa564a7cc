package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"igapi/pkg/models"
)

func TestProfileCard(t *testing.T) {
	link := "https://example.com"
	card := ProfileCard(&models.Profile{
		Username:    "alice",
		FullName:    "Alice Liddell",
		Biography:   "down the rabbit hole",
		Followers:   1_300_000,
		Followees:   980,
		PostsCount:  1_500,
		IsVerified:  true,
		IsPrivate:   true,
		ExternalURL: &link,
	})

	for _, want := range []string{"@alice", "Alice Liddell", "rabbit hole", "1.3M", "980", "1.5K", "followers", link, "private account"} {
		assert.Contains(t, card, want)
	}
}

func TestProfileCardMinimal(t *testing.T) {
	card := ProfileCard(&models.Profile{Username: "bob"})
	assert.Contains(t, card, "@bob")
	assert.NotContains(t, card, "private account")
	assert.NotContains(t, card, "link")
}

func TestSessionTable(t *testing.T) {
	assert.Contains(t, SessionTable(nil), "no stored sessions")

	out := SessionTable([]SessionRow{
		{Username: "alice", SessionID: "1234...cdef", Modified: time.Date(2024, 1, 2, 3, 4, 0, 0, time.Local)},
		{Username: "env", SessionID: "abcd...wxyz"},
	})
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "1234...cdef")
	assert.Contains(t, out, "2024-01-02 03:04")
	assert.Contains(t, out, "env")
	assert.Contains(t, out, "-")
}

func TestPrintHelpers(t *testing.T) {
	var buf bytes.Buffer
	prev := Output
	Output = &buf
	t.Cleanup(func() { Output = prev })

	PrintError("load failed", "no such file")
	PrintWarning("careful")
	PrintSuccess("done")
	PrintInfo("Listening", ":8000")

	out := buf.String()
	assert.Contains(t, out, "load failed: no such file")
	assert.Contains(t, out, "careful")
	assert.Contains(t, out, "done")
	assert.Contains(t, out, "Listening")
	assert.Contains(t, out, ":8000")
}
