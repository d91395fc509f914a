// Package notify renders and sends the message telling a recipient
// where their cloned tree is.
package notify

import (
	"bytes"
	"context"
	"html/template"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Tokens recognised in the message body
const (
	LinkToken     = "[LINK_DO_GOOGLE_DRIVE]"
	FullNameToken = "[IMIE_NAZWISKO]"
)

// Defaults used when the config doesn't set them
const (
	DefaultSubject = "Dysk do korepetycji z IT"
	DefaultBody    = "# Cześć, [IMIE_NAZWISKO]!\n\n[**Otwórz folder**]([LINK_DO_GOOGLE_DRIVE])\n\n---\nJeśli link nie działa, skopiuj ten adres:\n\n```\n[LINK_DO_GOOGLE_DRIVE]\n```\n\nPozdrawiam,\nZespół korepetycji IT"
	DefaultAccent  = "#0ea5e9"
	DefaultTitle   = "Korepetycje IT"
	DefaultFooter  = "© 2025 Korepetycje IT • W razie pytań odpisz na tego maila."
)

// Options for the message, read from the email config section
type Options struct {
	Subject string `config:"subject"`
	BodyMD  string `config:"body_md"`
	Body    string `config:"body"` // used if BodyMD is empty
	From    string `config:"from"`

	// Credentials for sending
	ServiceAccountFile        string `config:"service_account_file"`
	ServiceAccountCredentials string `config:"service_account_credentials"`
	TokenFile                 string `config:"token_file"`
	Impersonate               string `config:"impersonate"`
	Endpoint                  string `config:"endpoint"`
}

// DefaultOptions returns the Options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		Subject: DefaultSubject,
	}
}

// Markdown returns the message body, falling back to Body then
// DefaultBody
func (opt *Options) Markdown() string {
	switch {
	case opt.BodyMD != "":
		return opt.BodyMD
	case opt.Body != "":
		return opt.Body
	}
	return DefaultBody
}

// Brand is the look of the HTML message, read from the brand config
// section
type Brand struct {
	Accent string `config:"accent"`
	Title  string `config:"title"`
	Footer string `config:"footer"`
}

// DefaultBrand returns the Brand used when nothing is configured
func DefaultBrand() Brand {
	return Brand{
		Accent: DefaultAccent,
		Title:  DefaultTitle,
		Footer: DefaultFooter,
	}
}

// Message is a rendered message ready to send
type Message struct {
	From    string
	To      string
	Subject string
	Text    string // plain text alternative
	HTML    string
}

// Sender delivers a Message returning the ID the service gave it
type Sender interface {
	Send(ctx context.Context, msg *Message) (id string, err error)
}

var emailRegexp = regexp.MustCompile(`^[A-Za-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@` +
	`[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?` +
	`(?:\.[A-Za-z0-9](?:[A-Za-z0-9-]{0,61}[A-Za-z0-9])?)+$`)

// ValidEmail returns true if s looks like an email address
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && emailRegexp.MatchString(s)
}

// ValidFullName returns true if s looks like a first name and a
// surname - at least 3 characters with a space or hyphen in
func ValidFullName(s string) bool {
	s = strings.TrimSpace(s)
	return utf8.RuneCountInString(s) >= 3 && strings.ContainsAny(s, " -")
}

// Substitute replaces the link and full name tokens in body.
//
// placeholder is also replaced by the full name if set so the same
// token used in folder names works in the message.
func Substitute(body, link, fullName, placeholder string) string {
	body = strings.Replace(body, LinkToken, link, -1)
	body = strings.Replace(body, FullNameToken, fullName, -1)
	if placeholder != "" {
		body = strings.Replace(body, placeholder, fullName, -1)
	}
	return body
}

var (
	markdownOnce sync.Once
	markdown     goldmark.Markdown
)

func getMarkdown() goldmark.Markdown {
	markdownOnce.Do(func() {
		markdown = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})
	return markdown
}

// layout wraps the rendered body in the branded page
var layout = template.Must(template.New("layout").Parse(`<!doctype html>
<html>
  <body style="margin:0;padding:0;background:#f6f7f9;">
    <div style="max-width:640px;margin:0 auto;padding:24px;">
      <div style="background:#ffffff;border-radius:12px;padding:24px;box-shadow:0 1px 3px rgba(0,0,0,.06),0 1px 2px rgba(0,0,0,.04);">
        <div style="font-family:system-ui,-apple-system,Segoe UI,Roboto,Ubuntu,'Helvetica Neue',Arial,sans-serif;line-height:1.5;color:#111827;">
          <div style="font-size:18px;margin-bottom:16px;">
            <strong style="color:{{.Accent}};">{{.Title}}</strong>
          </div>
          <div>{{.Body}}</div>
        </div>
      </div>
      <div style="font-family:system-ui,-apple-system,Segoe UI,Roboto,Ubuntu,'Helvetica Neue',Arial,sans-serif;color:#6b7280;font-size:12px;margin-top:12px;text-align:center;">
        {{.Footer}}
      </div>
    </div>
  </body>
</html>
`))

// RenderHTML renders the Markdown md inside the branded layout
func RenderHTML(md string, brand Brand) (string, error) {
	var body bytes.Buffer
	if err := getMarkdown().Convert([]byte(md), &body); err != nil {
		return "", errors.Wrap(err, "failed to render message")
	}
	if brand.Accent == "" {
		brand.Accent = DefaultAccent
	}
	var out bytes.Buffer
	err := layout.Execute(&out, struct {
		Brand
		Body template.HTML
	}{
		Brand: brand,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to render layout")
	}
	return out.String(), nil
}

// Render makes the Message for to from the options.
//
// The plain text alternative is the substituted Markdown.
func Render(opt Options, brand Brand, to, link, fullName, placeholder string) (*Message, error) {
	if !ValidEmail(to) {
		return nil, errors.Errorf("invalid email address %q", to)
	}
	md := Substitute(opt.Markdown(), link, fullName, placeholder)
	htmlBody, err := RenderHTML(md, brand)
	if err != nil {
		return nil, err
	}
	subject := opt.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	return &Message{
		From:    opt.From,
		To:      strings.TrimSpace(to),
		Subject: subject,
		Text:    md,
		HTML:    htmlBody,
	}, nil
}
