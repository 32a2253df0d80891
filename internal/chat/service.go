// Package chat relays patient support conversations through the
// provider's sentiment function, escalating critical messages.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/backend"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/emergency"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/records"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

// SentimentCritical marks a message that needs immediate escalation.
const SentimentCritical = "critical"

const fallbackReply = "I'm here to help. Could you tell me a bit more?"

// Escalator raises an emergency alert from a chat message.
type Escalator interface {
	Escalate(ctx context.Context, req emergency.Request) (*records.EmergencyAlert, error)
}

// Exchange is the outcome of one patient message.
type Exchange struct {
	Reply     string
	Sentiment string
	Escalated bool
}

// Service analyzes patient messages and keeps per-session transcripts.
// Transcript persistence is fail-soft; the conversation continues even
// when the backing store is down.
type Service struct {
	backend   backend.Service
	escalator Escalator
	logger    *logging.Logger

	mu       sync.Mutex
	sessions map[string]*sessionState // session id -> transcript
}

type sessionState struct {
	rowID   string // chat_sessions row id, empty when the insert failed
	session records.ChatSession
}

func NewService(be backend.Service, escalator Escalator, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		backend:   be,
		escalator: escalator,
		logger:    logger,
		sessions:  make(map[string]*sessionState),
	}
}

// StartSession opens a transcript for a session id and records the
// chat_sessions row.
func (s *Service) StartSession(ctx context.Context, sessionID, patientID string) {
	s.mu.Lock()
	if _, ok := s.sessions[sessionID]; ok {
		s.mu.Unlock()
		return
	}
	state := &sessionState{
		session: records.ChatSession{
			PatientID: patientID,
			StartedAt: time.Now().UTC(),
		},
	}
	s.sessions[sessionID] = state
	s.mu.Unlock()

	row, err := s.backend.Insert(ctx, backend.ResourceChatSessions, state.session)
	if err != nil {
		s.logger.Warn("failed to open chat session row", "error", err, "session_id", sessionID)
		return
	}
	var inserted struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(row, &inserted); err == nil {
		s.mu.Lock()
		state.rowID = inserted.ID
		s.mu.Unlock()
	}
}

// EndSession drops the in-memory transcript.
func (s *Service) EndSession(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// History returns the transcript accumulated for a session.
func (s *Service) History(sessionID string) []records.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	out := make([]records.ChatMessage, len(state.session.Messages))
	copy(out, state.session.Messages)
	return out
}

// HandleMessage runs one conversation turn: sentiment analysis, the
// critical-path escalation, and the transcript append.
func (s *Service) HandleMessage(ctx context.Context, sessionID, text string) (*Exchange, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("chat: session id is required")
	}

	data, err := s.backend.Invoke(ctx, backend.FnSentimentAnalysis, map[string]string{
		"text": text,
	})
	if err != nil {
		return nil, fmt.Errorf("chat: sentiment analysis: %w", err)
	}

	var result struct {
		Sentiment string `json:"sentiment"`
		Reply     string `json:"reply"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("chat: decode sentiment: %w", err)
	}
	if result.Reply == "" {
		result.Reply = fallbackReply
	}

	exchange := &Exchange{
		Reply:     result.Reply,
		Sentiment: result.Sentiment,
	}

	if result.Sentiment == SentimentCritical && s.escalator != nil {
		patientID := s.patientFor(sessionID)
		if _, err := s.escalator.Escalate(ctx, emergency.Request{
			PatientID: patientID,
			Reason:    "Critical sentiment in support chat: " + text,
			Priority:  emergency.PriorityHigh,
		}); err != nil {
			s.logger.Error("chat escalation failed", "error", err, "session_id", sessionID)
		} else {
			exchange.Escalated = true
		}
	}

	s.appendTranscript(ctx, sessionID, text, exchange)
	return exchange, nil
}

func (s *Service) patientFor(sessionID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.sessions[sessionID]; ok {
		return state.session.PatientID
	}
	return ""
}

func (s *Service) appendTranscript(ctx context.Context, sessionID, text string, exchange *Exchange) {
	now := time.Now().UTC()

	s.mu.Lock()
	state, ok := s.sessions[sessionID]
	if !ok {
		state = &sessionState{session: records.ChatSession{StartedAt: now}}
		s.sessions[sessionID] = state
	}
	state.session.Messages = append(state.session.Messages,
		records.ChatMessage{Role: "user", Text: text, Sentiment: exchange.Sentiment, SentAt: now},
		records.ChatMessage{Role: "assistant", Text: exchange.Reply, SentAt: now},
	)
	rowID := state.rowID
	snapshot := state.session
	s.mu.Unlock()

	if rowID == "" {
		return
	}
	if _, err := s.backend.Update(ctx, backend.ResourceChatSessions, rowID, map[string]any{
		"messages": snapshot.Messages,
	}); err != nil {
		s.logger.Warn("failed to persist chat transcript", "error", err, "session_id", sessionID)
	}
}
