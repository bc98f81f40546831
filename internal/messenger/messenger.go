// Package messenger routes outbound candidate messages across delivery
// channels. The messaging transport and the job-board chat are external
// collaborators reached through the interfaces below.
package messenger

import (
	"context"
	"sync"
	"time"
)

// SendResult identifies a delivered message and the chat it landed in.
type SendResult struct {
	MessageID string
	ChatID    string
}

// Transport is the messaging-app collaborator (MTProto client lives outside
// the core).
type Transport interface {
	SendByUsername(ctx context.Context, session *Session, username, text string) (*SendResult, error)
	SendByPeer(ctx context.Context, session *Session, peerID, text string) (*SendResult, error)
	// ImportContact resolves a phone number into a sendable peer identity.
	ImportContact(ctx context.Context, session *Session, phone string) (string, error)
}

// SecondaryChannel is the job-board native chat collaborator.
type SecondaryChannel interface {
	PostMessage(ctx context.Context, threadID, text string) error
}

// Session is the mutable messaging credential of one workspace. Concurrent
// sends through it must go through the pool so they serialize.
type Session struct {
	Workspace string

	mu       sync.Mutex
	lastUsed time.Time
}

// Touch records a successful send through this session.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = time.Now()
}

// LastUsed returns the time of the last successful send, zero if none.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// SessionPool hands out per-workspace sessions under single-flight
// acquisition. This replaces a global mutable session map with an explicit
// resource handle.
type SessionPool struct {
	mu       sync.Mutex
	sessions map[string]*Session
	locks    map[string]*sync.Mutex
}

func NewSessionPool() *SessionPool {
	return &SessionPool{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

// Acquire returns the workspace session, blocking while another caller holds
// it. The returned release function must be called when the send completes.
func (p *SessionPool) Acquire(workspace string) (*Session, func()) {
	p.mu.Lock()
	session, ok := p.sessions[workspace]
	if !ok {
		session = &Session{Workspace: workspace}
		p.sessions[workspace] = session
		p.locks[workspace] = &sync.Mutex{}
	}
	lock := p.locks[workspace]
	p.mu.Unlock()

	lock.Lock()
	return session, lock.Unlock
}
