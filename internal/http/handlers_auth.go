package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"saldo/internal/auth"
	"saldo/internal/i18n"
	"saldo/internal/log"
)

const sessionCookie = "saldo_session"

type contextKey string

const sessionContextKey contextKey = "session"

// sessionFrom returns the session attached by requireSession.
func sessionFrom(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(auth.Session)
	return s, ok
}

// sessionToken extracts the token from the cookie or, for non-browser
// clients, from a bearer Authorization header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

func (s *Server) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := sessionToken(r)
		if token == "" {
			UnauthorizedError("authentication required").Write(w)
			return
		}
		session, err := s.auth.SessionFor(token)
		if err != nil {
			UnauthorizedError("authentication required").Write(w)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireEditor additionally checks the permission flag; signed-in users
// without it stay read-only.
func (s *Server) requireEditor(next http.HandlerFunc) http.Handler {
	return s.requireSession(func(w http.ResponseWriter, r *http.Request) {
		session, _ := sessionFrom(r.Context())
		canEdit, err := s.auth.CanEdit(r.Context(), session.UserID)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "Permission lookup failed",
				log.FieldUserID, session.UserID, log.FieldError, err)
			InternalServerError("something went wrong").Write(w)
			return
		}
		if !canEdit {
			ForbiddenError(i18n.MustTranslate(s.lang(r), "readOnly")).Write(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)

	if err := r.ParseForm(); err != nil {
		BadRequestError(i18n.MustTranslate(lang, "loginFail")).Write(w)
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		BadRequestError(i18n.MustTranslate(lang, "loginFail")).Write(w)
		return
	}

	session, err := s.auth.SignIn(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			UnauthorizedError(i18n.MustTranslate(lang, "loginFail")).Write(w)
			return
		}
		s.logger.ErrorContext(r.Context(), "Sign-in failed", log.FieldError, err)
		InternalServerError(i18n.MustTranslate(lang, "loginFail")).Write(w)
		return
	}

	canEdit, err := s.auth.CanEdit(r.Context(), session.UserID)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Permission lookup failed",
			log.FieldUserID, session.UserID, log.FieldError, err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	NewResponse().
		Payload(map[string]any{
			"userId":  session.UserID,
			"email":   session.Email,
			"canEdit": canEdit,
		}).
		NotifySuccess(i18n.MustTranslate(lang, "loginSuccess")).
		Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	lang := s.lang(r)

	token := sessionToken(r)
	if token == "" {
		BadRequestError(i18n.MustTranslate(lang, "logoutFail")).Write(w)
		return
	}
	s.auth.SignOut(r.Context(), token)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	NewResponse().
		NotifySuccess(i18n.MustTranslate(lang, "logoutSuccess")).
		Write(w)
}

// lang picks the notification locale: explicit query parameter first,
// then the Accept-Language prefix, then the configured default.
func (s *Server) lang(r *http.Request) string {
	if q := r.URL.Query().Get("lang"); q != "" && i18n.Supported(q) {
		return q
	}
	if h := r.Header.Get("Accept-Language"); len(h) >= 2 && i18n.Supported(h[:2]) {
		return h[:2]
	}
	if i18n.Supported(s.defaultLocale) {
		return s.defaultLocale
	}
	return i18n.DefaultLocale
}
