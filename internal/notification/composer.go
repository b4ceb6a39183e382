// Package notification собирает письма о новом сообщении.
package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	texttemplate "text/template"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/mail"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

type Translator interface {
	T(locale valueobject.Locale, key string, args ...string) string
}

// ReportSummary: данные сообщения, которые попадают в письма.
type ReportSummary struct {
	ReportID      uuid.UUID
	TypeName      string
	SubtypeName   string
	Address       string
	Latitude      float64
	Longitude     float64
	Description   string
	ReporterName  string
	ReporterEmail string
	ReporterPhone string
	Locale        valueobject.Locale
}

type Config struct {
	From         string
	InternalTo   []string
	InternalBCC  []string
	InternalLang valueobject.Locale
	PublicAppURL string
}

type Composer struct {
	cfg  Config
	tr   Translator
	html *htmltemplate.Template
	text *texttemplate.Template
}

func NewComposer(cfg Config, tr Translator) (*Composer, error) {
	html, err := htmltemplate.ParseFS(templatesFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("notification: не удалось разобрать HTML шаблон: %w", err)
	}
	text, err := texttemplate.ParseFS(templatesFS, "templates/report.txt.tmpl")
	if err != nil {
		return nil, fmt.Errorf("notification: не удалось разобрать текстовый шаблон: %w", err)
	}
	if !cfg.InternalLang.IsValid() {
		cfg.InternalLang = valueobject.DefaultLocale
	}
	return &Composer{cfg: cfg, tr: tr, html: html, text: text}, nil
}

type row struct {
	Label string
	Value string
}

type body struct {
	Locale    valueobject.Locale
	Greeting  string
	Intro     string
	Rows      []row
	Link      string
	LinkLabel string
	Closing   string
}

// Internal: уведомление команде.
func (c *Composer) Internal(s ReportSummary) (mail.Message, error) {
	l := c.cfg.InternalLang
	b := body{
		Locale: l,
		Intro:  c.tr.T(l, "mail.internal.intro"),
		Rows:   c.rows(l, s, true),
	}
	if c.cfg.PublicAppURL != "" {
		b.Link = c.cfg.PublicAppURL + "/admin/reports/" + s.ReportID.String()
		b.LinkLabel = c.tr.T(l, "mail.labels.link")
	}

	msg, err := c.render(b)
	if err != nil {
		return mail.Message{}, err
	}
	msg.From = c.cfg.From
	msg.To = c.cfg.InternalTo
	msg.BCC = c.cfg.InternalBCC
	msg.Subject = c.tr.T(l, "mail.internal.subject", "id", shortID(s.ReportID), "type", s.TypeName)
	return msg, nil
}

// Reporter: подтверждение заявителю на его языке.
func (c *Composer) Reporter(s ReportSummary) (mail.Message, error) {
	l := s.Locale
	if !l.IsValid() {
		l = valueobject.DefaultLocale
	}
	b := body{
		Locale:   l,
		Greeting: c.tr.T(l, "mail.reporter.greeting", "name", s.ReporterName),
		Intro:    c.tr.T(l, "mail.reporter.intro"),
		Rows:     c.rows(l, s, false),
		Closing:  c.tr.T(l, "mail.reporter.closing"),
	}

	msg, err := c.render(b)
	if err != nil {
		return mail.Message{}, err
	}
	msg.From = c.cfg.From
	msg.To = []string{s.ReporterEmail}
	msg.Subject = c.tr.T(l, "mail.reporter.subject", "id", shortID(s.ReportID))
	return msg, nil
}

func (c *Composer) rows(l valueobject.Locale, s ReportSummary, withContact bool) []row {
	label := func(k string) string { return c.tr.T(l, "mail.labels."+k) }

	rows := []row{
		{label("report_id"), s.ReportID.String()},
		{label("type"), s.TypeName},
	}
	if s.SubtypeName != "" {
		rows = append(rows, row{label("subtype"), s.SubtypeName})
	}
	rows = append(rows,
		row{label("address"), s.Address},
		row{label("coordinates"), strconv.FormatFloat(s.Latitude, 'f', 6, 64) + ", " + strconv.FormatFloat(s.Longitude, 'f', 6, 64)},
	)
	if s.Description != "" {
		rows = append(rows, row{label("description"), s.Description})
	}
	rows = append(rows, row{label("reporter"), s.ReporterName})
	if withContact {
		rows = append(rows, row{label("email"), s.ReporterEmail})
		if s.ReporterPhone != "" {
			rows = append(rows, row{label("phone"), s.ReporterPhone})
		}
	}
	return rows
}

func (c *Composer) render(b body) (mail.Message, error) {
	var html, text bytes.Buffer
	if err := c.html.Execute(&html, b); err != nil {
		return mail.Message{}, fmt.Errorf("notification: ошибка рендеринга HTML: %w", err)
	}
	if err := c.text.Execute(&text, b); err != nil {
		return mail.Message{}, fmt.Errorf("notification: ошибка рендеринга текста: %w", err)
	}
	return mail.Message{HTML: html.String(), Text: text.String()}, nil
}

// shortID: первые 8 символов идентификатора для темы письма.
func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
