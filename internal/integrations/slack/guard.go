package slackbot

import "sync"

// inflightGuard allows one running analysis per user.
type inflightGuard struct {
	mu    sync.Mutex
	users map[string]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{users: make(map[string]struct{})}
}

func (g *inflightGuard) acquire(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.users[userID]; busy {
		return false
	}
	g.users[userID] = struct{}{}
	return true
}

func (g *inflightGuard) release(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.users, userID)
}
