package assistant

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medops/hospital-assistant/orchestrator"
	"github.com/medops/hospital-assistant/schema"
)

// Session binds one conversation to its orchestrator. The orchestrator
// owns the transcript; the session adds identity and the front-end
// de-duplication state (an identical utterance or audio payload
// resubmitted back-to-back must not produce a duplicate transcript
// entry).
type Session struct {
	ID        string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`

	Orch *orchestrator.Orchestrator `json:"-"`

	// turn serializes one full submission (duplicate check, turn,
	// remember) so concurrent identical submissions cannot both miss
	// the duplicate check.
	turn sync.Mutex

	mu           sync.Mutex
	lastText     string
	lastAudioSum string
	lastReply    string
}

// Messages returns a snapshot of the conversation transcript.
func (s *Session) Messages() []schema.ChatMessage {
	return s.Orch.Transcript()
}

// DuplicateText reports whether text repeats the previous utterance
// verbatim, returning the previous final message when it does.
func (s *Session) DuplicateText(text string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text != "" && text == s.lastText {
		return s.lastReply, true
	}
	return "", false
}

// DuplicateAudio reports whether an audio digest repeats the previous
// submission.
func (s *Session) DuplicateAudio(sum string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sum != "" && sum == s.lastAudioSum {
		return s.lastReply, true
	}
	return "", false
}

// Remember records the inputs and final message of the turn just
// completed. Either text or audioSum may be empty.
func (s *Session) Remember(text, audioSum, reply string) {
	s.mu.Lock()
	s.lastText = text
	s.lastAudioSum = audioSum
	s.lastReply = reply
	s.mu.Unlock()
}

// SessionStore is an abstraction for session persistence.
type SessionStore interface {
	Create() *Session
	Get(id string) (*Session, bool)
	Delete(id string) bool
	List() []*Session
	// ListRange returns sessions from offset with limit, ordered by recency (desc)
	ListRange(offset, limit int) []*Session
	// Clean keeps at most max sessions (by recency); returns error if failed.
	Clean(max int) error
}

// MemSessionStore manages sessions in memory. Sessions past their TTL
// are dropped lazily on access.
type MemSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	newOrch  func() *orchestrator.Orchestrator
}

func NewMemSessionStore(ttl time.Duration, newOrch func() *orchestrator.Orchestrator) *MemSessionStore {
	return &MemSessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		newOrch:  newOrch,
	}
}

func (m *MemSessionStore) Create() *Session {
	s := &Session{ID: uuid.New().String(), CreatedAt: time.Now(), Orch: m.newOrch()}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *MemSessionStore) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok && m.expired(s) {
		m.Delete(id)
		return nil, false
	}
	return s, ok
}

func (m *MemSessionStore) expired(s *Session) bool {
	return m.ttl > 0 && time.Since(s.CreatedAt) > m.ttl
}

func (m *MemSessionStore) Delete(id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	return ok
}

func (m *MemSessionStore) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()
	// order by CreatedAt desc for convenience
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *MemSessionStore) ListRange(offset, limit int) []*Session {
	list := m.List()
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		return []*Session{}
	}
	if offset >= len(list) {
		return []*Session{}
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}

func (m *MemSessionStore) Clean(max int) error {
	if max <= 0 {
		return nil
	}
	m.mu.Lock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) <= max {
		m.mu.Unlock()
		return nil
	}
	for _, s := range out[max:] {
		delete(m.sessions, s.ID)
	}
	m.mu.Unlock()
	return nil
}
