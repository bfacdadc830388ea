package guard

import (
	"sync"

	"food_marketplace/internal/model"
	"food_marketplace/internal/session"
)

// History is the navigation stack the guard redirects through
type History interface {
	// Replace swaps the current entry for path so back-navigation cannot return to it
	Replace(path string)
}

// SessionSource is the part of session.Store the navigator reads. Subscribe returns the
// session current at registration together with the unsubscribe func.
type SessionSource interface {
	Subscribe(fn func(session.Session)) (session.Session, func())
}

// Navigator re-runs Decide whenever the path, the user or the loading flag changes
type Navigator struct {
	cfg     Config
	history History
	guards  map[string][]model.Role

	mu      sync.Mutex
	current string
	last    session.Session

	unsubscribe func()
}

// NewNavigator starts watching src. guards maps screen paths to the roles allowed on them.
func NewNavigator(src SessionSource, cfg Config, history History, guards map[string][]model.Role) *Navigator {
	n := &Navigator{
		cfg:     cfg,
		history: history,
		guards:  guards,
	}
	n.mu.Lock()
	n.last, n.unsubscribe = src.Subscribe(n.onSession)
	n.mu.Unlock()
	return n
}

// Navigate moves to path and applies the guard
func (n *Navigator) Navigate(path string) Decision {
	n.mu.Lock()
	n.current = path
	snap := n.last
	n.mu.Unlock()
	return n.evaluate(path, snap)
}

// Current is the path the navigator is on
func (n *Navigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Close stops watching the session
func (n *Navigator) Close() {
	if n.unsubscribe != nil {
		n.unsubscribe()
	}
}

func (n *Navigator) onSession(s session.Session) {
	n.mu.Lock()
	n.last = s
	current := n.current
	n.mu.Unlock()

	if current == "" {
		return
	}
	n.evaluate(current, s)
}

func (n *Navigator) evaluate(path string, s session.Session) Decision {
	d := Decide(path, s, n.cfg, n.guards[normalize(path)]...)
	if d.Action != Redirect {
		return d
	}

	n.mu.Lock()
	n.current = d.Target
	n.mu.Unlock()
	n.history.Replace(d.Target)
	return d
}
