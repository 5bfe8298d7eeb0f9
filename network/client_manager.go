package network

import (
	"sync"

	"little-realm/server/logger"
)

// ClientManager tracks live sessions so they can be closed on shutdown.
type ClientManager struct {
	clients map[string]*Session // session id -> session
	mutex   sync.RWMutex
}

// NewClientManager creates a new client manager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients: make(map[string]*Session),
	}
}

// AddClient adds a session to the manager
func (cm *ClientManager) AddClient(session *Session) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.clients[session.ID] = session
}

// RemoveClient removes a session from the manager
func (cm *ClientManager) RemoveClient(id string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.clients, id)
}

// Count returns the number of live sessions.
func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.clients)
}

// CloseAll drops every live connection. Sessions remove themselves as they
// unwind.
func (cm *ClientManager) CloseAll() {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()

	for id, session := range cm.clients {
		if err := session.Close(); err != nil {
			logger.Log.WithError(err).WithField("session", id).Debug("Error closing session")
		}
	}
}
