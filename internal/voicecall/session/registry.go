package session

import "sync"

// Registry tracks active call sessions by telephony stream SID. It is the
// only state shared between calls; sessions are inserted on call start and
// removed on call end.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.StreamSID()] = s
}

func (r *Registry) Get(streamSID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[streamSID]
	return s, ok
}

func (r *Registry) Remove(streamSID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, streamSID)
}

// Active reports the number of live sessions.
func (r *Registry) Active() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// StopAll tears down every registered session, used at server shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Stop()
	}
}
