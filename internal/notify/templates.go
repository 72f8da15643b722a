package notify

import (
	htmltemplate "html/template"
	"io"
	"strings"
	texttemplate "text/template"
)

var welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { font-size: 24px; font-weight: bold; margin-bottom: 20px; color: #1a1a1a; }
  .highlight { background: #f0f9ff; padding: 15px; border-radius: 8px; margin: 20px 0; }
  .footer { font-size: 12px; color: #666; margin-top: 30px; border-top: 1px solid #eee; padding-top: 20px; }
</style>
</head>
<body>
  <div class="header">Hey {{.FirstName}}, you're in!</div>
  <p>Thanks for joining the waitlist. We're glad to have you.</p>
  <div class="highlight">
    <strong>What happens next?</strong><br>
    We'll let you know as soon as it's your turn to get access.
  </div>
  <p>Keep an eye on your inbox for updates and early access news.</p>
  <div class="footer">You received this email because you signed up for our waitlist.</div>
</body>
</html>
`))

var contactText = texttemplate.Must(texttemplate.New("contact").Parse(`New contact form message #{{.ID}}

From:     {{.Name}} <{{.Email}}>
Subject:  {{.Subject}}
{{- if .IP}}
IP:       {{.IP}}
{{- end}}
Received: {{.Received}}

{{.Message}}
`))

// parseSubject compiles a one-line subject template such as
// "Welcome to the Waitlist, {{.FirstName}}!".
func parseSubject(name, src string) (*texttemplate.Template, error) {
	return texttemplate.New(name).Option("missingkey=error").Parse(src)
}

type executor interface {
	Execute(w io.Writer, data any) error
}

func render(t executor, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
