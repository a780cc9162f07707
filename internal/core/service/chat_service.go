package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/evchat/chat-gateway/internal/core/domain"
	"github.com/evchat/chat-gateway/internal/core/ports"
)

const defaultHistoryWindow = 10

// sessionEntry pairs a session with the mutex that serializes its
// submissions: one in-flight call per session, never overlapping.
type sessionEntry struct {
	mu      sync.Mutex
	session *domain.Session
}

// ChatService owns the live sessions and orchestrates submissions.
// Independent sessions proceed concurrently; each session processes one
// submission to completion before accepting the next.
type ChatService struct {
	client ports.GenerationClient
	queue  ports.MessageQueue // optional, best-effort archive
	window int
	greet  bool
	log    zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewChatService(client ports.GenerationClient, queue ports.MessageQueue, historyWindow int, greetNewSessions bool, log zerolog.Logger) *ChatService {
	if historyWindow <= 0 {
		historyWindow = defaultHistoryWindow
	}
	return &ChatService{
		client:   client,
		queue:    queue,
		window:   historyWindow,
		greet:    greetNewSessions,
		log:      log,
		sessions: make(map[string]*sessionEntry),
	}
}

// Open creates a fresh session for the identity, replacing any previous one.
func (s *ChatService) Open(identity domain.SessionIdentity) {
	session := domain.NewSession(identity)
	if s.greet {
		greeting := fmt.Sprintf("Hello %s! I’m a Multimodal AI. Feel free to upload an image for analysis.", identity.DisplayName)
		session.Transcript.Append(domain.Turn{Role: domain.RoleModel, Text: greeting})
	}

	s.mu.Lock()
	s.sessions[identity.Username] = &sessionEntry{session: session}
	s.mu.Unlock()

	s.log.Info().Str("username", identity.Username).Msg("session opened")
}

// Submit relays one user turn to the generation service. The user turn is
// appended before the call; the model turn is appended only on success, so
// a failed call leaves the unanswered question visible for a retry.
func (s *ChatService) Submit(ctx context.Context, username, prompt string, attachment *domain.Attachment) (string, error) {
	entry := s.lookup(username)
	if entry == nil {
		return "", domain.ErrNotAuthenticated
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	transcript := entry.session.Transcript
	transcript.Append(domain.Turn{Role: domain.RoleUser, Text: prompt})
	s.archive(username, domain.RoleUser, prompt)

	// The window includes the turn just appended; the prompt travels
	// separately so it can carry the attachment.
	recent := transcript.Recent(s.window)
	history := recent[:len(recent)-1]

	reply, err := s.client.Generate(ctx, history, prompt, attachment)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("generation call failed")
		return "", err
	}

	transcript.Append(domain.Turn{Role: domain.RoleModel, Text: reply})
	s.archive(username, domain.RoleModel, reply)

	return reply, nil
}

// History returns a copy of the full transcript.
func (s *ChatService) History(username string) ([]domain.Turn, error) {
	entry := s.lookup(username)
	if entry == nil {
		return nil, domain.ErrNotAuthenticated
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Transcript.All(), nil
}

// Reset clears the session's transcript.
func (s *ChatService) Reset(username string) error {
	entry := s.lookup(username)
	if entry == nil {
		return domain.ErrNotAuthenticated
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session.Transcript.Clear()

	s.log.Info().Str("username", username).Msg("transcript cleared")
	return nil
}

// Logout destroys the session.
func (s *ChatService) Logout(username string) {
	s.mu.Lock()
	delete(s.sessions, username)
	s.mu.Unlock()
}

func (s *ChatService) lookup(username string) *sessionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[username]
}

func (s *ChatService) archive(username string, role domain.Role, text string) {
	if s.queue == nil {
		return
	}
	s.queue.Enqueue(ports.ChatMessage{
		Username:  username,
		Role:      string(role),
		Text:      text,
		Timestamp: time.Now().UTC(),
	})
}
