package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/financeguardian/dashboard/internal/modules/marketdata"
	"github.com/financeguardian/dashboard/internal/modules/news"
	"github.com/financeguardian/dashboard/internal/modules/trends"
)

//go:embed templates/*.html
var templateFS embed.FS

// views holds the parsed page templates
type views struct {
	pages map[string]*template.Template
}

func newViews() (*views, error) {
	v := &views{pages: make(map[string]*template.Template)}

	for _, name := range []string{"login", "dashboard", "ticker"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		v.pages[name] = t
	}

	return v, nil
}

// render executes a page template. The page is buffered so a template
// error can still produce a clean 500 instead of a half-written body.
func (v *views) render(w http.ResponseWriter, name string, data interface{}) {
	t, ok := v.pages[name]
	if !ok {
		http.Error(w, "unknown view", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		http.Error(w, "failed to render view", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// loginData feeds the login view
type loginData struct {
	Alert string
}

// dashboardData feeds the dashboard view
type dashboardData struct {
	Username string
	Group    string
	Alert    string
	Symbols  []string

	NewsEnabled bool
	Articles    []news.Article
	Summary     *news.DailySummary
}

// tickerData feeds the ticker-detail view
type tickerData struct {
	Username    string
	Group       string
	Symbol      string
	DisplayName string
	Keyword     string
	Aliases     []string
	Records     []marketdata.TickerRecord
	Trend       []trends.TrendPoint
}
