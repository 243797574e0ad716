// Package chat implements the natural-language job search assistant. A local
// model turns free-form questions into structured filters; the catalog runs
// the actual search. Model trouble degrades to a canned reply, never an error
// surfaced to the caller.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/qri-io/jsonschema"

	"github.com/jackgladowsky/tierjobs/internal/catalog"
	"github.com/jackgladowsky/tierjobs/pkg/models"
	"github.com/jackgladowsky/tierjobs/pkg/ollama"
	"github.com/jackgladowsky/tierjobs/pkg/repository"
	"github.com/jackgladowsky/tierjobs/pkg/tier"
)

const (
	// MaxSearchResults caps how many jobs a single assistant reply carries.
	MaxSearchResults = 10

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 100
)

const fallbackMessage = "I'm having trouble processing that. Try asking about specific roles like 'ML internships' or 'remote SWE jobs'."

const systemPromptTemplate = `You are TierJobs AI, an assistant that helps users find jobs at elite tech companies.

You have access to a database of jobs from top-tier companies. When users ask about jobs, you should:

1. Understand their query (role type, experience level, location preferences, company tier)
2. Return a JSON object with search parameters
3. Be conversational and helpful

Available filters:
- tier: {{range $i, $t := .Tiers}}{{if $i}}, {{end}}"{{$t}}"{{end}}
- level: {{range $i, $l := .Levels}}{{if $i}}, {{end}}"{{$l}}"{{end}}
- jobType: {{range $i, $j := .JobTypes}}{{if $i}}, {{end}}"{{$j}}"{{end}}
- remote: true/false
- search: text search term

ALWAYS respond with valid JSON in this format:
{
  "message": "Your conversational response to the user",
  "filters": {
    "tier": "optional tier filter",
    "level": "optional level filter",
    "jobType": "optional type filter",
    "remote": true/false or null,
    "search": "optional search term"
  },
  "shouldSearch": true/false
}

Examples:
User: "Find me ML internships at top companies"
Response: {"message": "Looking for ML internships at elite companies! Let me find those for you.", "filters": {"level": "intern", "jobType": "mle", "tier": "S+"}, "shouldSearch": true}

User: "What's the difference between S and A tier?"
Response: {"message": "Great question! S-tier companies are the absolute elite...", "filters": {}, "shouldSearch": false}

User: "Remote SWE jobs for new grads"
Response: {"message": "Here are remote software engineering positions perfect for new graduates!", "filters": {"level": "new_grad", "jobType": "swe", "remote": true}, "shouldSearch": true}`

const replySchemaJSON = `{
  "type": "object",
  "required": ["message", "shouldSearch"],
  "properties": {
    "message": {"type": "string"},
    "shouldSearch": {"type": "boolean"},
    "filters": {
      "type": "object",
      "properties": {
        "tier": {"type": "string"},
        "level": {"type": "string"},
        "jobType": {"type": "string"},
        "remote": {"type": ["boolean", "null"]},
        "search": {"type": "string"}
      }
    }
  }
}`

var jsonBlob = regexp.MustCompile(`(?s)\{.*\}`)

// Generator produces a model completion. *ollama.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (ollama.GenerateResult, error)
}

// Searcher runs structured job queries. *catalog.Planner satisfies it.
type Searcher interface {
	ListJobs(ctx context.Context, f models.JobFilters, limit, offset int) (*catalog.JobPage, error)
}

// Turn is one prior exchange supplied by the client for context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is an incoming chat message.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
	History   []Turn `json:"history,omitempty"`
}

// Reply is the assistant's answer. Error flags a degraded reply produced
// after a model or search failure.
type Reply struct {
	Message   string            `json:"message"`
	Jobs      []models.Job      `json:"jobs"`
	Filters   models.JobFilters `json:"filters"`
	SessionID string            `json:"sessionId"`
	Error     bool              `json:"error,omitempty"`
}

// parsedReply is the JSON contract the model is prompted to follow.
type parsedReply struct {
	Message string `json:"message"`
	Filters struct {
		Tier    string `json:"tier"`
		Level   string `json:"level"`
		JobType string `json:"jobType"`
		Remote  *bool  `json:"remote"`
		Search  string `json:"search"`
	} `json:"filters"`
	ShouldSearch bool `json:"shouldSearch"`
}

// Service wires the model, the catalog, and the message store together.
type Service struct {
	generator    Generator
	searcher     Searcher
	chats        repository.ChatRepo
	model        string
	systemPrompt string
	schema       *jsonschema.Schema
	logger       *slog.Logger
}

func NewService(generator Generator, searcher Searcher, chats repository.ChatRepo, model string, logger *slog.Logger) (*Service, error) {
	prompt, err := ollama.RenderTemplate(systemPromptTemplate, map[string]any{
		"Tiers":    tier.Tiers,
		"Levels":   tier.Levels,
		"JobTypes": tier.JobTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("render system prompt: %w", err)
	}

	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(replySchemaJSON), rs); err != nil {
		return nil, fmt.Errorf("compile reply schema: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		generator:    generator,
		searcher:     searcher,
		chats:        chats,
		model:        model,
		systemPrompt: prompt,
		schema:       rs,
		logger:       logger,
	}, nil
}

// Respond handles one chat turn. The returned error is reserved for invalid
// input; model and search failures come back as a degraded Reply instead.
func (s *Service) Respond(ctx context.Context, req *Request) (*Reply, error) {
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("message is required")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	res, err := s.generator.Generate(ctx, s.model, s.buildPrompt(req))
	if err != nil {
		s.logger.Error("chat generate", "session_id", sessionID, "err", err)
		return s.fallback(sessionID), nil
	}

	parsed := s.parseReply(ctx, res.Text)

	var jobs []models.Job
	filters := models.JobFilters{
		Tier:    parsed.Filters.Tier,
		Level:   parsed.Filters.Level,
		JobType: parsed.Filters.JobType,
		Remote:  parsed.Filters.Remote != nil && *parsed.Filters.Remote,
		Search:  parsed.Filters.Search,
	}
	if parsed.ShouldSearch {
		page, err := s.searcher.ListJobs(ctx, filters, MaxSearchResults, 0)
		if err != nil {
			s.logger.Error("chat search", "session_id", sessionID, "err", err)
			return s.fallback(sessionID), nil
		}
		jobs = page.Jobs
	}

	s.persistTurn(ctx, sessionID, req.Message, parsed.Message, jobs)

	return &Reply{
		Message:   parsed.Message,
		Jobs:      jobs,
		Filters:   filters,
		SessionID: sessionID,
	}, nil
}

// buildPrompt flattens the system prompt, the last few history turns, and the
// new message into a single completion prompt.
func (s *Service) buildPrompt(req *Request) string {
	var sb strings.Builder
	sb.WriteString(s.systemPrompt)
	sb.WriteString("\n\n")

	history := req.History
	if len(history) > 6 {
		history = history[len(history)-6:]
	}
	for _, turn := range history {
		switch turn.Role {
		case "assistant":
			sb.WriteString("Assistant: ")
		default:
			sb.WriteString("User: ")
		}
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}

	sb.WriteString("User: ")
	sb.WriteString(req.Message)
	sb.WriteString("\nResponse:")
	return sb.String()
}

// parseReply extracts and validates the JSON contract from the raw model
// output. Anything unusable degrades to a plain conversational reply.
func (s *Service) parseReply(ctx context.Context, raw string) *parsedReply {
	plain := &parsedReply{Message: strings.TrimSpace(raw)}

	blob := jsonBlob.FindString(raw)
	if blob == "" {
		return plain
	}

	if errs, err := s.schema.ValidateBytes(ctx, []byte(blob)); err != nil || len(errs) > 0 {
		s.logger.Warn("chat reply failed schema validation", "err", err, "violations", len(errs))
		return plain
	}

	var parsed parsedReply
	if err := json.Unmarshal([]byte(blob), &parsed); err != nil {
		return plain
	}
	return &parsed
}

func (s *Service) fallback(sessionID string) *Reply {
	return &Reply{
		Message:   fallbackMessage,
		Jobs:      []models.Job{},
		SessionID: sessionID,
		Error:     true,
	}
}

// persistTurn appends the user and assistant messages. Storage trouble is
// logged, not surfaced; the reply already exists.
func (s *Service) persistTurn(ctx context.Context, sessionID, userMsg, assistantMsg string, jobs []models.Job) {
	if _, err := s.chats.AppendChatMessage(ctx, &models.ChatMessage{
		SessionID: sessionID,
		Role:      "user",
		Content:   userMsg,
	}); err != nil {
		s.logger.Error("persist user message", "session_id", sessionID, "err", err)
	}

	ids := make([]int64, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	meta, _ := json.Marshal(map[string]any{"jobs": ids})
	metaStr := string(meta)

	if _, err := s.chats.AppendChatMessage(ctx, &models.ChatMessage{
		SessionID: sessionID,
		Role:      "assistant",
		Content:   assistantMsg,
		Metadata:  &metaStr,
	}); err != nil {
		s.logger.Error("persist assistant message", "session_id", sessionID, "err", err)
	}
}

// History returns a session's most recent messages in chronological order.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.chats.ListChatMessages(ctx, sessionID, limit)
}

// Suggestions returns canned prompts for an empty chat box.
func (s *Service) Suggestions() []string {
	return []string{
		"Find me ML internships at S-tier companies",
		"Remote SWE jobs for new grads",
		"What are the top-paying roles?",
		"Show me senior backend positions",
		"Which companies are hiring the most?",
	}
}
