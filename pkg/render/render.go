// Package render turns an aggregated page configuration into a complete HTML document.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"status-page/pkg/types"
)

//go:embed page.html.tmpl
var pageTemplate string

const (
	// ContentType is sent with every rendered page.
	ContentType = "text/html; charset=utf-8"

	// DefaultZoneLabel is shown next to the timestamp when the UTC offset is not zero.
	DefaultZoneLabel = "BST"

	svgMarker = "<svg"
)

var page = template.Must(template.New("page").Parse(pageTemplate))

// Renderer renders status pages. The zero value is not usable; use New.
type Renderer struct {
	now       func() time.Time
	location  *time.Location
	zoneLabel string
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithClock replaces the wall clock used for the page timestamp.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		r.now = now
	}
}

// WithLocation renders the timestamp in loc instead of the local time zone.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		r.location = loc
	}
}

// WithZoneLabel sets the label used when the UTC offset is not zero.
func WithZoneLabel(label string) Option {
	return func(r *Renderer) {
		r.zoneLabel = label
	}
}

// New creates a Renderer using the local clock and time zone.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		now:       time.Now,
		location:  time.Local,
		zoneLabel: DefaultZoneLabel,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type environmentView struct {
	Name     string
	Status   types.Status
	Services []types.Service
	Open     bool
}

type pageView struct {
	Title        string
	LogoSVG      template.HTML
	LogoURL      template.URL
	Status       types.Status
	Timestamp    string
	Legend       []types.Status
	Environments []environmentView
	CustomCSS    template.CSS
}

// Render returns the HTML document for config. Statuses must already be aggregated.
func (r *Renderer) Render(config types.PageConfig) (string, error) {
	view := pageView{
		Title:        config.Title,
		Status:       config.CurrentStatus,
		Timestamp:    r.timestamp(),
		Legend:       types.Statuses,
		Environments: make([]environmentView, 0, len(config.Environments)),
		CustomCSS:    template.CSS(config.CSS()),
	}

	if IsInlineSVG(config.Logo) {
		view.LogoSVG = template.HTML(config.Logo)
	} else {
		view.LogoURL = template.URL(config.Logo)
	}

	for i, env := range config.Environments {
		view.Environments = append(view.Environments, environmentView{
			Name:     env.Name,
			Status:   env.Status,
			Services: env.Services,
			Open:     i == 0,
		})
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render page %q: %w", config.Title, err)
	}
	return buf.String(), nil
}

// IsInlineSVG reports whether logo holds SVG markup rather than an image URL.
func IsInlineSVG(logo string) bool {
	return strings.HasPrefix(strings.TrimSpace(logo), svgMarker)
}

// timestamp formats the current time as HH:MM followed by a zone label. The label
// is GMT when the offset is zero and the configured alternate label otherwise.
func (r *Renderer) timestamp() string {
	now := r.now().In(r.location)
	label := r.zoneLabel
	if _, offset := now.Zone(); offset == 0 {
		label = "GMT"
	}
	return now.Format("15:04") + " " + label
}

// Response is a rendered page ready to be written to an HTTP client.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Response renders config and wraps the document in a Response.
func (r *Renderer) Response(config types.PageConfig) (*Response, error) {
	body, err := r.Render(config)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	header.Set("Content-Type", ContentType)
	header.Set("Content-Length", strconv.Itoa(len(body)))

	return &Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       []byte(body),
	}, nil
}

// ServeHTTP writes the response to w.
func (resp *Response) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	for key, values := range resp.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(resp.Body)
}
