package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names. Each has <name>.subject.tmpl, <name>.text.tmpl and
// <name>.html.tmpl in FS.
const (
	OrderCreated       = "order_created"
	OrderStatusChanged = "order_status_changed"
)

var ErrUnknownTemplate = errors.New("unknown email template")

// EmailItem is one order line as shown in an email.
type EmailItem struct {
	Product   string `json:"Product"`
	Quantity  string `json:"Quantity"`
	UnitPrice string `json:"UnitPrice"`
	Total     string `json:"Total"`
}

// EmailData is the data every order email template can use. It travels as
// map[string]any inside the queued job, so field names are the JSON keys.
type EmailData struct {
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	CompanyName    string `json:"CompanyName"`
	CompanyAddress string `json:"CompanyAddress"`
	AppName        string `json:"AppName"`
	LogoURL        string `json:"LogoURL"`
	SupportURL     string `json:"SupportURL"`

	OrderID        string      `json:"OrderID"`
	Status         string      `json:"Status"`
	PreviousStatus string      `json:"PreviousStatus,omitempty"`
	Items          []EmailItem `json:"Items,omitempty"`
	Total          string      `json:"Total,omitempty"`
	Notes          string      `json:"Notes,omitempty"`

	Time   string    `json:"Time"`
	TimeAt time.Time `json:"TimeAt"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// orDefault supports {{ .Name | default "there" }}. Only blank strings and
// missing keys fall back.
func orDefault(fallback string, value any) any {
	switch x := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
	}
	return value
}

// titleWords turns "in_progress" into "In Progress".
func titleWords(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func funcs() map[string]any {
	return map[string]any{
		"upper":   strings.ToUpper,
		"title":   titleWords,
		"default": orDefault,
	}
}

type compiled struct {
	subject *texttpl.Template
	text    *texttpl.Template
	html    *htmpl.Template
}

// parsed once at start-up; a broken template fails the process early.
var registry = mustCompile(OrderCreated, OrderStatusChanged)

func mustCompile(names ...string) map[string]compiled {
	out := make(map[string]compiled, len(names))
	for _, name := range names {
		out[name] = compiled{
			subject: texttpl.Must(texttpl.New(name + ".subject.tmpl").Funcs(funcs()).ParseFS(FS, name+".subject.tmpl")),
			text:    texttpl.Must(texttpl.New(name + ".text.tmpl").Funcs(funcs()).ParseFS(FS, name+".text.tmpl")),
			html:    htmpl.Must(htmpl.New(name + ".html.tmpl").Funcs(funcs()).ParseFS(FS, name+".html.tmpl")),
		}
	}
	return out
}

func execute(name, part string, exec func(*bytes.Buffer) error) (string, error) {
	var buf bytes.Buffer
	if err := exec(&buf); err != nil {
		return "", fmt.Errorf("exec %s.%s: %w", name, part, err)
	}
	return buf.String(), nil
}

// Render produces the subject, plain text and HTML bodies of a named email.
func Render(name string, data any) (subject, text, html string, err error) {
	tpl, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	if subject, err = execute(name, "subject", func(b *bytes.Buffer) error { return tpl.subject.Execute(b, data) }); err != nil {
		return "", "", "", err
	}
	if text, err = execute(name, "text", func(b *bytes.Buffer) error { return tpl.text.Execute(b, data) }); err != nil {
		return "", "", "", err
	}
	if html, err = execute(name, "html", func(b *bytes.Buffer) error { return tpl.html.Execute(b, data) }); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
