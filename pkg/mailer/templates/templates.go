package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// Render renders a named template into (subject, text, html).
func Render(name string, data map[string]any) (string, string, string, error) {
	t, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.html.Execute(&buf, data); err != nil {
		return "", "", "", err
	}
	return t.subject, t.text, buf.String(), nil
}

type emailTemplate struct {
	subject string
	text    string
	html    *template.Template
}

var registry = map[string]emailTemplate{
	"welcome": {
		subject: "Welcome to Vidora",
		text:    "Your channel is ready. Sign in and upload your first video.",
		html: template.Must(template.New("welcome").Parse(`
<html><body style="font-family:sans-serif">
<h2>Welcome, {{.FullName}}!</h2>
<p>Your channel <b>@{{.Username}}</b> is ready. Sign in and upload your first video.</p>
<p style="color:#888;font-size:12px">You are receiving this because an account was registered with this address.</p>
</body></html>`)),
	},
	"login_notice": {
		subject: "New login to your account",
		text:    "A new login to your account was detected. If this wasn't you, change your password.",
		html: template.Must(template.New("login_notice").Parse(`
<html><body style="font-family:sans-serif">
<h2>New login detected</h2>
<p>Hi {{.FullName}}, your account <b>@{{.Username}}</b> was just signed in to.</p>
<table style="font-size:13px;color:#444">
<tr><td>Time</td><td>{{.TimeAt}}</td></tr>
{{if .IP}}<tr><td>IP</td><td>{{.IP}}</td></tr>{{end}}
{{if .UserAgent}}<tr><td>Device</td><td>{{.UserAgent}}</td></tr>{{end}}
</table>
<p>If this wasn't you, change your password immediately.</p>
</body></html>`)),
	},
}

// WelcomeData builds template data for the welcome email.
func WelcomeData(fullName, username string) map[string]any {
	return map[string]any{"FullName": fullName, "Username": username}
}

// LoginNoticeData builds template data for the new-login notification.
func LoginNoticeData(fullName, username, ip, userAgent string, at time.Time) map[string]any {
	return map[string]any{
		"FullName":  fullName,
		"Username":  username,
		"IP":        ip,
		"UserAgent": userAgent,
		"TimeAt":    at.UTC().Format("02 January 2006, 15:04 MST"),
	}
}
