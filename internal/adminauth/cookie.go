package adminauth

import (
	"net/http"
)

const CookieName = "admin_session"

// Gate combines the password check with the token signer.
type Gate struct {
	Auth   *Authenticator
	Signer *Signer
	// Secure marks the cookie Secure; set in production.
	Secure bool
}

// Login checks password and sets the session cookie.
func (g *Gate) Login(w http.ResponseWriter, password string) error {
	if err := g.Auth.Check(password); err != nil {
		return err
	}
	http.SetCookie(w, g.cookie(g.Signer.Issue(), int(MaxAge.Seconds())))
	return nil
}

func (g *Gate) Logout(w http.ResponseWriter) {
	http.SetCookie(w, g.cookie("", -1))
}

// Allowed reports whether r may reach admin pages. Everything is allowed
// while no password is configured.
func (g *Gate) Allowed(r *http.Request) bool {
	if !g.Auth.Enabled() {
		return true
	}
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return g.Signer.Verify(c.Value) == nil
}

func (g *Gate) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   g.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
