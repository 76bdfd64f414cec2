package openai

import (
	"context"
	"fmt"

	"contractor_engagement_bot/internal/domain/query"

	"github.com/openai/openai-go"
	"github.com/sirupsen/logrus"
)

// ScopedAnswerer implements query.Answerer over chat completions. The
// caller's visibility scope is baked into the system prompt on every call,
// never inferred from the message.
type ScopedAnswerer struct {
	client openai.Client
	model  openai.ChatModel
	logger *logrus.Entry
}

func NewScopedAnswerer(client openai.Client, logger *logrus.Entry) *ScopedAnswerer {
	return &ScopedAnswerer{
		client: client,
		model:  openai.ChatModelGPT4o,
		logger: logger,
	}
}

func (a *ScopedAnswerer) Answer(ctx context.Context, message string, scope query.CallerScope) (string, error) {
	system := "You are the assistant for a construction job-tracking system. " +
		"Answer questions about check-ins, hours, jobs and progress reports concisely. " +
		"If you don't have the data, say so; never invent records."
	if scope.IsAdmin {
		system += " The caller is an admin with visibility over all contractors."
	} else {
		system += fmt.Sprintf(" The caller is contractor %d and may only see their own records; refuse questions about other people's data.", scope.ContractorID)
	}

	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: a.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(message),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	a.logger.WithFields(logrus.Fields{
		"contractor_id": scope.ContractorID,
		"is_admin":      scope.IsAdmin,
	}).Debug("Free-text query answered")
	return completion.Choices[0].Message.Content, nil
}
