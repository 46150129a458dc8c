package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/microsharks/dealroom/internal/core/domain"
	"github.com/microsharks/dealroom/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS holds the stylesheet served under /static.
func StaticFS() fs.FS {
	sub, _ := fs.Sub(staticFS, "static")
	return sub
}

// Template names accepted by Render.
const (
	TemplatePage          = "page"
	TemplateTab           = "tab"
	TemplateNotifications = "notifications"
	TemplateAlert         = "alert"
	TemplateErrorPage     = "error_page"
)

// AlertKind selects the toast colour.
type AlertKind string

const (
	AlertSuccess AlertKind = "success"
	AlertDanger  AlertKind = "danger"
	AlertWarning AlertKind = "warning"
	AlertInfo    AlertKind = "info"
)

type Alert struct {
	Kind    AlertKind
	Message string
	// Back is where the error page links to; empty hides the link.
	Back string
}

// NotificationItem is one row of the bell panel.
type NotificationItem struct {
	ID      string
	Title   string
	Message string
	Time    string
	Unread  bool
	OpenURL string
}

type NotificationPanel struct {
	Items  []NotificationItem
	Unread int
	CSRF   string
}

func NewNotificationPanel(feed *ports.NotificationFeed) NotificationPanel {
	p := NotificationPanel{Unread: feed.Unread, Items: make([]NotificationItem, len(feed.Items))}
	for i, n := range feed.Items {
		p.Items[i] = newNotificationItem(n)
	}
	return p
}

func newNotificationItem(n domain.Notification) NotificationItem {
	return NotificationItem{
		ID:      n.ID,
		Title:   n.Title,
		Message: n.Message,
		Time:    ShortTime(n.CreatedAt),
		Unread:  !n.Read,
		OpenURL: "/dashboard/notifications/" + n.ID + "/open",
	}
}

// cardContext carries the form token into card templates.
type cardContext struct {
	Card any
	CSRF string
}

// Renderer executes the embedded templates. It satisfies echo.Renderer.
type Renderer struct {
	templates *template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

// NewRenderer parses every embedded template.
func NewRenderer() (*Renderer, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"card":  func(c any, csrf string) cardContext { return cardContext{Card: c, CSRF: csrf} },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// MustRenderer is NewRenderer for program start-up.
func MustRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return r.Execute(w, name, data)
}

func (r *Renderer) Execute(w io.Writer, name string, data any) error {
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
