package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

const tokenCookie = "token"

type ctxKey struct{}

func withRequester(ctx context.Context, r domain.Requester) context.Context {
	return context.WithValue(ctx, ctxKey{}, r)
}

func RequesterFrom(ctx context.Context) (domain.Requester, bool) {
	r, ok := ctx.Value(ctxKey{}).(domain.Requester)
	return r, ok
}

// mustRequester is only called behind Protect.
func mustRequester(r *http.Request) domain.Requester {
	rq, _ := RequesterFrom(r.Context())
	return rq
}

// Protect accepts "Authorization: Bearer <token>" or the token cookie.
func (h *Handlers) Protect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tok string
		if a := r.Header.Get("Authorization"); strings.HasPrefix(a, "Bearer ") {
			tok = strings.TrimSpace(strings.TrimPrefix(a, "Bearer "))
		} else if c, err := r.Cookie(tokenCookie); err == nil {
			tok = c.Value
		}
		rq, err := h.Tokens.Parse(tok)
		if err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(withRequester(r.Context(), rq)))
	})
}

// RequireRole must run after Protect.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rq := mustRequester(r)
			for _, role := range roles {
				if rq.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, r, domain.Forbidden("User role %s is not authorized to access this route", rq.Role))
		})
	}
}

type userDTO struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	TelNo     string      `json:"telNo"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

func toUserDTO(u domain.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, TelNo: u.TelNo, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

type sessionDTO struct {
	userDTO
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type registerRequest struct {
	Name     string `json:"name"`
	TelNo    string `json:"telNo"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.Auth.Register(r.Context(), app.Registration{Name: req.Name, TelNo: req.TelNo, Email: req.Email, Password: req.Password})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeSession(w, s)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeSession(w, s)
}

func (h *Handlers) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.Auth.Me(r.Context(), mustRequester(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ok(toUserDTO(u)))
}

func (h *Handlers) writeSession(w http.ResponseWriter, s app.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    s.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.CookieTTL),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, ok(sessionDTO{userDTO: toUserDTO(s.User), Token: s.Token, ExpiresAt: s.ExpiresAt}))
}
