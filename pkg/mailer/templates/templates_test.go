package templates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	subject, text, html, err := Render("welcome", WelcomeData("Alice Carter", "alice"))
	require.NoError(t, err)
	require.Equal(t, "Welcome to Vidora", subject)
	require.NotEmpty(t, text)
	require.Contains(t, html, "Alice Carter")
	require.Contains(t, html, "@alice")
}

func TestRenderLoginNotice(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	subject, _, html, err := Render("login_notice", LoginNoticeData("Alice Carter", "alice", "203.0.113.9", "Firefox", at))
	require.NoError(t, err)
	require.Equal(t, "New login to your account", subject)
	require.Contains(t, html, "203.0.113.9")
	require.Contains(t, html, "Firefox")
	require.Contains(t, html, "14 March 2026")
}

func TestRenderLoginNoticeOmitsEmptyFields(t *testing.T) {
	_, _, html, err := Render("login_notice", LoginNoticeData("Alice", "alice", "", "", time.Now()))
	require.NoError(t, err)
	require.NotContains(t, html, "<td>IP</td>")
	require.NotContains(t, html, "<td>Device</td>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, _, err := Render("nope", nil)
	require.Error(t, err)
}
