package guard

import (
	"path"
	"strings"

	"food_marketplace/internal/model"
	"food_marketplace/internal/session"
)

// Action is what the UI layer should do with the current screen
type Action int

const (
	// Pending means the session is still loading: show a neutral loading state, do not navigate
	Pending Action = iota
	// Allow renders the requested screen
	Allow
	// Redirect replaces the current navigation entry with Decision.Target
	Redirect
	// Block renders nothing; redirecting would land on the same path
	Block
)

func (a Action) String() string {
	switch a {
	case Pending:
		return "pending"
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	case Block:
		return "block"
	}
	return "unknown"
}

// Decision is the outcome of Decide
type Decision struct {
	Action Action
	Target string
}

// Config classifies routes for the guard
type Config struct {
	PublicPaths     map[string]struct{}
	RoleLandingPage map[model.Role]string
	// LoginPath is where unauthenticated users are sent
	LoginPath string
	// FallbackPath is the landing page for roles missing from RoleLandingPage
	FallbackPath string
}

// DefaultConfig returns the marketplace route classification
func DefaultConfig() Config {
	return Config{
		PublicPaths: map[string]struct{}{
			"/login":            {},
			"/signup":           {},
			"/otp-verification": {},
			"/welcome":          {},
		},
		RoleLandingPage: map[model.Role]string{
			model.RoleUser:       "/category",
			model.RoleAdmin:      "/admin/dashboard",
			model.RoleSuperAdmin: "/superadmin/dashboard",
		},
		LoginPath:    "/login",
		FallbackPath: "/",
	}
}

// IsPublic reports whether p is reachable without authentication
func (c Config) IsPublic(p string) bool {
	_, ok := c.PublicPaths[normalize(p)]
	return ok
}

// LandingPage returns the default screen for role
func (c Config) LandingPage(role model.Role) string {
	if target, ok := c.RoleLandingPage[role]; ok {
		return target
	}
	if c.FallbackPath == "" {
		return "/"
	}
	return c.FallbackPath
}

// LoginPage returns where unauthenticated users are sent
func (c Config) LoginPage() string {
	if c.LoginPath == "" {
		return "/login"
	}
	return c.LoginPath
}

// Decide maps the current path and session to a navigation outcome. It has no side effects.
// requiredRoles, when given, restricts the current screen to those roles.
func Decide(currentPath string, s session.Session, cfg Config, requiredRoles ...model.Role) Decision {
	if s.Loading {
		return Decision{Action: Pending}
	}
	p := normalize(currentPath)

	if s.IsAuthenticated() {
		target := cfg.LandingPage(s.User.Role)
		if len(requiredRoles) > 0 && !hasRole(requiredRoles, s.User.Role) {
			return redirect(p, target)
		}
		if cfg.IsPublic(p) {
			return redirect(p, target)
		}
		return Decision{Action: Allow}
	}

	if cfg.IsPublic(p) {
		return Decision{Action: Allow}
	}
	return redirect(p, cfg.LoginPage())
}

func redirect(current, target string) Decision {
	if normalize(target) == current {
		return Decision{Action: Block}
	}
	return Decision{Action: Redirect, Target: target}
}

func hasRole(roles []model.Role, role model.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func normalize(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
