package guard

import (
	"path"

	"github.com/mamadbah2/barnmonitor/internal/domain/models"
	"github.com/mamadbah2/barnmonitor/internal/session"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// DefaultPublicPaths are reachable without a session.
var DefaultPublicPaths = []string{"/", "/login", "/signup", "/healthz"}

// Guard decides whether a path may be entered with the current session.
type Guard struct {
	store       session.Store
	publicPaths map[string]struct{}
}

// New builds a guard reading the session from store. With no paths given DefaultPublicPaths apply.
func New(store session.Store, publicPaths ...string) *Guard {
	if len(publicPaths) == 0 {
		publicPaths = DefaultPublicPaths
	}
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[normalize(p)] = struct{}{}
	}
	return &Guard{store: store, publicPaths: public}
}

// CanEnter reports whether s grants access to protected paths. A non-empty token is enough.
func CanEnter(s *models.Session) bool {
	return s != nil && s.Token != ""
}

// IsPublic reports whether path is reachable without a session.
func (g *Guard) IsPublic(path string) bool {
	_, ok := g.publicPaths[normalize(path)]
	return ok
}

// Check admits public paths and otherwise requires a session, returning the redirect target on refusal.
func (g *Guard) Check(path string) (string, bool) {
	if g.IsPublic(path) {
		return "", true
	}

	current, err := g.store.Get()
	if err != nil || !CanEnter(current) {
		return LoginPath, false
	}
	return "", true
}

// normalize resolves dot segments and trailing slashes so "/api/../login/" and "/login" match.
func normalize(p string) string {
	return path.Clean("/" + p)
}
