// AngelaMos | 2026
// guards.go

package middleware

import (
	"net/http"
)

// Guards is the per-route middleware a resource handler mounts. A nil
// entry passes requests through unchanged.
type Guards struct {
	Authenticate func(http.Handler) http.Handler
	Optional     func(http.Handler) http.Handler
	PostLimit    func(http.Handler) http.Handler
	VoteLimit    func(http.Handler) http.Handler
	AdminOnly    func(http.Handler) http.Handler
}

func passthrough(next http.Handler) http.Handler {
	return next
}

func orPass(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return passthrough
	}
	return mw
}

func (g Guards) Auth() func(http.Handler) http.Handler {
	return orPass(g.Authenticate)
}

func (g Guards) MaybeAuth() func(http.Handler) http.Handler {
	return orPass(g.Optional)
}

func (g Guards) Post() func(http.Handler) http.Handler {
	return orPass(g.PostLimit)
}

func (g Guards) Vote() func(http.Handler) http.Handler {
	return orPass(g.VoteLimit)
}

func (g Guards) Admin() func(http.Handler) http.Handler {
	return orPass(g.AdminOnly)
}
