package application

// LoginWaiters returns how many callers are waiting on the in-flight login.
func (m *SessionManager) LoginWaiters() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempt == nil {
		return 0
	}
	return m.attempt.waiters
}
