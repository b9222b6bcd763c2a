// Package i18n renders notification titles and messages from embedded
// locale files.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// Message pairs the title and body message IDs of one notification kind.
type Message struct {
	Title string
	Body  string
}

var (
	Enrollment     = Message{Title: "EnrollmentTitle", Body: "EnrollmentMessage"}
	LeaveRequested = Message{Title: "LeaveRequestedTitle", Body: "LeaveRequestedMessage"}
	LeaveApproved  = Message{Title: "LeaveApprovedTitle", Body: "LeaveApprovedMessage"}
	LeaveRejected  = Message{Title: "LeaveRejectedTitle", Body: "LeaveRejectedMessage"}
	ManualEntry    = Message{Title: "ManualEntryTitle", Body: "ManualEntryMessage"}
	LeaveTypeAdded = Message{Title: "LeaveTypeAddedTitle", Body: "LeaveTypeAddedMessage"}
	DeviceReset    = Message{Title: "DeviceResetTitle", Body: "DeviceResetMessage"}
)

// Translator holds the parsed bundle.
type Translator struct {
	bundle        *goi18n.Bundle
	defaultLocale string
}

// New loads every embedded locale file. defaultLocale is used when a
// context carries no locale; it falls back to "en" when empty.
func New(defaultLocale string) (*Translator, error) {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	if _, err := language.Parse(defaultLocale); err != nil {
		return nil, fmt.Errorf("i18n: invalid default locale %q: %w", defaultLocale, err)
	}

	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
	}
	slog.Debug("i18n: locales loaded", "files", len(entries), "default", defaultLocale)

	return &Translator{bundle: bundle, defaultLocale: defaultLocale}, nil
}

// Languages lists the loaded locale tags.
func (t *Translator) Languages() []string {
	tags := t.bundle.LanguageTags()
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tag.String()
	}
	return out
}

// T translates messageID for the context's locale. Unknown IDs come back
// unchanged.
func (t *Translator) T(ctx context.Context, messageID string, data map[string]any) string {
	l := goi18n.NewLocalizer(t.bundle, t.LocaleFromContext(ctx), t.defaultLocale)

	msg, err := l.Localize(&goi18n.LocalizeConfig{MessageID: messageID, TemplateData: data})
	if err != nil {
		return messageID
	}
	return msg
}

// Render returns the localized title and body of m.
func (t *Translator) Render(ctx context.Context, m Message, data map[string]any) (title, body string) {
	return t.T(ctx, m.Title, data), t.T(ctx, m.Body, data)
}

type ctxKey struct{}

// WithLocale returns a context carrying locale (e.g. "en", "id").
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext returns the context's locale or the default.
func (t *Translator) LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return t.defaultLocale
}
