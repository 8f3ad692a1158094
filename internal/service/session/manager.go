// Package session keeps per-operator session state between requests.
package session

import (
	"sync"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

// Manager handles operator session states keyed by user id.
type Manager struct {
	sessions map[string]models.Session
	mu       sync.RWMutex

	// userLocks serializes Apply calls of the same operator.
	userLocks map[string]*sync.Mutex
	locksMu   sync.Mutex
}

// NewManager creates a new session manager.
func NewManager() *Manager {
	return &Manager{
		sessions:  make(map[string]models.Session),
		userLocks: make(map[string]*sync.Mutex),
	}
}

// Get retrieves the session of user. The role always comes from the caller's
// identity, so a role change upstream takes effect on the next request.
func (m *Manager) Get(user string, role models.Role) models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, exists := m.sessions[user]; exists {
		sess.Role = role
		return sess
	}
	return models.Session{User: user, Role: role}
}

// Apply runs fn against the user's session and stores the result, whether or
// not fn fails. Calls for the same user run one at a time, so concurrent
// requests of one operator never overwrite each other's changes.
func (m *Manager) Apply(user string, role models.Role, fn func(sess *models.Session) error) (models.Session, error) {
	lock := m.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	sess := m.Get(user, role)
	err := fn(&sess)

	m.mu.Lock()
	m.sessions[user] = sess
	m.mu.Unlock()
	return sess, err
}

// Clear removes a user's session.
func (m *Manager) Clear(user string) {
	lock := m.userLock(user)
	lock.Lock()
	defer lock.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, user)
}

func (m *Manager) userLock(user string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	lock, ok := m.userLocks[user]
	if !ok {
		lock = &sync.Mutex{}
		m.userLocks[user] = lock
	}
	return lock
}
