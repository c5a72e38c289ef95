package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Retriever supplies background context for a user message. It is the only
// door into the retrieval subsystem; any failure behind it degrades to an
// answer without context rather than a failed request.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (string, error)
}

// Completer generates an answer for a message history and reports token usage.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (answer string, inputTokens, outputTokens int, err error)
}

type Repo interface {
	Save(ctx context.Context, log *RequestLog) error
}

type Service struct {
	retriever Retriever
	completer Completer
	repo      Repo
	topK      int
}

func NewService(r Retriever, c Completer, repo Repo, topK int) *Service {
	if topK <= 0 {
		topK = 3
	}
	return &Service{retriever: r, completer: c, repo: repo, topK: topK}
}

// Ask answers one user message. Retrieved context is injected as an
// assistant message ahead of the question, the completion's token usage is
// converted to cost and persisted, and the returned history is trimmed to
// the last few messages.
func (s *Service) Ask(ctx context.Context, sessionKey, userInput string, history []Message) (string, []Message, CostInfo, error) {
	messages := history
	if len(messages) == 0 {
		messages = []Message{{Role: RoleSystem, Content: systemPrompt}}
	}

	background, err := s.retriever.Retrieve(ctx, userInput, s.topK)
	if err != nil {
		slog.WarnContext(ctx, "retrieval unavailable, answering without context", "error", err)
		background = ""
	}
	if strings.TrimSpace(background) != "" {
		messages = append(messages, Message{
			Role:    RoleAssistant,
			Content: "Use the background information below as context where relevant:\n" + background,
		})
	}

	messages = append(messages, Message{Role: RoleUser, Content: userInput})

	answer, inputTokens, outputTokens, err := s.completer.Complete(ctx, messages)
	if err != nil {
		return "", history, CostInfo{}, fmt.Errorf("chat completion: %w", err)
	}

	messages = append(messages, Message{Role: RoleAssistant, Content: answer})
	cost := Cost(inputTokens, outputTokens)

	if s.repo != nil {
		log := &RequestLog{
			SessionKey:   sessionKey,
			InputTokens:  cost.InputTokens,
			OutputTokens: cost.OutputTokens,
			RequestCost:  cost.RequestCost,
		}
		if err := s.repo.Save(ctx, log); err != nil {
			// The answer is already paid for; losing the log row must not
			// fail the request.
			slog.ErrorContext(ctx, "failed to persist request log", "error", err)
		}
	}

	if len(messages) > historyWindow {
		messages = messages[len(messages)-historyWindow:]
	}
	return answer, messages, cost, nil
}
