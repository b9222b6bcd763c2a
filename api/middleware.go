package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/warp/edutime/auth"
	"github.com/warp/edutime/i18n"
	"golang.org/x/text/language"
)

type identityKey struct{}

// Authenticate requires a valid "Authorization: Bearer <token>" header and
// stores the verified identity on the request context.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return h.authenticate(next, false)
}

// AuthenticateStream is Authenticate for EventSource clients, which cannot
// set headers: the token may also come from the ?token= query parameter.
func (h *Handler) AuthenticateStream(next http.Handler) http.Handler {
	return h.authenticate(next, true)
}

func (h *Handler) authenticate(next http.Handler, allowQuery bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" && allowQuery {
			token = strings.TrimSpace(r.URL.Query().Get("token"))
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}
		id, err := h.Auth.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid session", err)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey{}, *id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAdmin rejects callers whose identity is not an administrator.
// It must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFrom(r.Context())
		if !ok || !id.IsAdmin() {
			writeError(w, http.StatusForbidden, "Administrator access required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func identityFrom(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(auth.Identity)
	return id, ok
}

// Locale picks the best supported language from Accept-Language so that
// notifications written during the request use it.
func (h *Handler) Locale(next http.Handler) http.Handler {
	var supported []language.Tag
	for _, l := range h.Translator.Languages() {
		if tag, err := language.Parse(l); err == nil {
			supported = append(supported, tag)
		}
	}
	if len(supported) == 0 {
		return next
	}
	matcher := language.NewMatcher(supported)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accept := r.Header.Get("Accept-Language")
		if accept == "" {
			next.ServeHTTP(w, r)
			return
		}
		tags, _, err := language.ParseAcceptLanguage(accept)
		if err != nil || len(tags) == 0 {
			next.ServeHTTP(w, r)
			return
		}
		_, idx, conf := matcher.Match(tags...)
		if conf == language.No {
			next.ServeHTTP(w, r)
			return
		}
		base, _ := supported[idx].Base()
		next.ServeHTTP(w, r.WithContext(i18n.WithLocale(r.Context(), base.String())))
	})
}
