package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/financeguardian/dashboard/internal/modules/auth"
	"github.com/financeguardian/dashboard/internal/modules/marketdata"
	"github.com/financeguardian/dashboard/internal/session"
)

const sessionCookieName = "GUARDIAN_SESSION"

// User-facing alert messages. One transient slot per render; each new
// event replaces the previous message.
const (
	alertMissingFields  = "Username, group name and password are all required."
	alertBadCredentials = "Invalid username, groupname and password combination."
	alertAuthDown       = "There seems to be an issue with the authentication servers. Try again later."
	alertTickerUnknown  = "Ticker not found. Note that only a small subset of tickers is currently available."
	alertLookupDown     = "There seems to be an issue with the lookup service. Try again later."
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	s.views.render(w, "login", loginData{})
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request, _ *session.Session) {
	if err := r.ParseForm(); err != nil {
		s.views.render(w, "login", loginData{Alert: alertMissingFields})
		return
	}

	username := r.PostFormValue("username")
	group := r.PostFormValue("group")
	password := r.PostFormValue("password")

	token, err := s.auth.Login(r.Context(), username, group, password)
	if err != nil {
		// Cleanup on every failure branch, even though no session was
		// established on this path
		s.clearSession(w, r)

		var alert string
		switch {
		case errors.Is(err, auth.ErrMissingFields):
			alert = alertMissingFields
		case errors.Is(err, auth.ErrInvalidCredentials):
			alert = alertBadCredentials
		default:
			alert = alertAuthDown
		}
		s.views.render(w, "login", loginData{Alert: alert})
		return
	}

	sess, err := s.sessions.Create(token, username, group, s.sessionTTL)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to persist session")
		s.clearSession(w, r)
		s.views.render(w, "login", loginData{Alert: alertAuthDown})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, PathDashboard, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearSession(w, r)
	http.Redirect(w, r, PathLogin, http.StatusSeeOther)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	s.renderDashboard(w, r, sess, "")
}

func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		http.Redirect(w, r, PathDashboard, http.StatusSeeOther)
		return
	}

	// The catalog mirrors the lake's coverage; skip the round trip for
	// symbols it cannot hold
	if !s.catalog.Has(symbol) {
		s.renderDashboard(w, r, sess, alertTickerUnknown)
		return
	}

	records, err := s.lookup.Lookup(r.Context(), sess.Token, symbol)
	if err != nil {
		switch {
		case errors.Is(err, marketdata.ErrUnauthorized):
			// The token no longer satisfies the lake; drop the whole
			// session and start over
			s.clearSession(w, r)
			http.Redirect(w, r, PathLogin, http.StatusSeeOther)
		case errors.Is(err, marketdata.ErrUnknownSymbol):
			s.renderDashboard(w, r, sess, alertTickerUnknown)
		default:
			s.renderDashboard(w, r, sess, alertLookupDown)
		}
		return
	}

	// An empty result set means the lake has no bars for the requested
	// range; the view shows "no data", not an error
	keyword := s.catalog.Keyword(symbol)
	s.views.render(w, "ticker", tickerData{
		Username:    sess.Username,
		Group:       sess.Group,
		Symbol:      symbol,
		DisplayName: s.catalog.DisplayName(symbol),
		Keyword:     keyword,
		Aliases:     s.catalog.Aliases(symbol),
		Records:     records,
		Trend:       s.trends.WeeklyTrend(r.Context(), keyword),
	})
}

// renderDashboard renders the dashboard view with an optional alert. News
// panels are filled in only when enabled; their failures are logged and the
// panels rendered empty, never surfaced as errors.
func (s *Server) renderDashboard(w http.ResponseWriter, r *http.Request, sess *session.Session, alert string) {
	data := dashboardData{
		Username:    sess.Username,
		Group:       sess.Group,
		Alert:       alert,
		Symbols:     s.catalog.Symbols(),
		NewsEnabled: s.newsEnabled,
	}

	if s.newsEnabled {
		articles, err := s.news.RecentArticles(r.Context(), true, 5, "")
		if err != nil {
			s.log.Warn().Err(err).Msg("Recent articles unavailable")
		} else {
			data.Articles = articles
		}

		summary, err := s.news.Summary(r.Context(), "")
		if err != nil {
			s.log.Warn().Err(err).Msg("Daily summary unavailable")
		} else {
			data.Summary = summary
		}
	}

	s.views.render(w, "dashboard", data)
}

// handleTrendsAPI serves the weekly trend series as JSON for a catalog
// symbol's keyword
func (s *Server) handleTrendsAPI(w http.ResponseWriter, r *http.Request) {
	sess := s.currentSession(r)
	if sess == nil {
		s.writeError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	symbol := chi.URLParam(r, "symbol")
	keyword := s.catalog.Keyword(symbol)
	points := s.trends.WeeklyTrend(r.Context(), keyword)

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"keyword": keyword,
		"points":  points,
	})
}

// clearSession removes the session row (when one is named by the cookie)
// and expires the cookie. Safe to call when no session exists.
func (s *Server) clearSession(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.sessions.Delete(cookie.Value); err != nil {
			s.log.Error().Err(err).Msg("Failed to delete session")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
