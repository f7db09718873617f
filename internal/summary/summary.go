// Package summary writes short release highlights with a chat completion
// model. The highlights are only ever added to the hosted release body;
// the changelog file and tag message stay deterministic.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/shinji-kodama/semrel/internal/model"
)

// systemPrompt instructs the model to stay inside the given changelog.
const systemPrompt = `You write release highlights for software changelogs.
Summarize the changelog the user sends in at most three short Markdown bullet points.
Mention breaking changes first. Do not invent changes that are not listed.
Reply with the bullet points only.`

// Completer returns a chat completion for a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Settings configures the OpenAI-compatible endpoint.
type Settings struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAI implements Completer with the openai-go SDK.
type OpenAI struct {
	Model string
	Opts  []option.RequestOption
}

// NewOpenAI validates s and returns a client for it.
func NewOpenAI(s Settings) (*OpenAI, error) {
	if s.APIKey == "" {
		return nil, model.NewCLIError(model.ExitConfigError, "OPENAI_API_KEY is required for release highlights")
	}
	if s.Model == "" {
		return nil, model.NewCLIError(model.ExitConfigError, "a summary model is required for release highlights")
	}

	opts := []option.RequestOption{option.WithAPIKey(s.APIKey)}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	return &OpenAI{Model: s.Model, Opts: opts}, nil
}

// Complete sends one system and one user message.
func (o *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	client := openai.NewClient(o.Opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Highlights asks c to summarize a changelog section.
func Highlights(ctx context.Context, c Completer, changelog string) (string, error) {
	if strings.TrimSpace(changelog) == "" {
		return "", nil
	}

	out, err := c.Complete(ctx, systemPrompt, changelog)
	if err != nil {
		return "", model.WrapCLIError(model.ExitNetworkError, "failed to generate release highlights", err)
	}
	return strings.TrimSpace(out), nil
}

// ReleaseBody puts highlights above the changelog section. Empty highlights
// leave the changelog unchanged.
func ReleaseBody(highlights, changelog string) string {
	if highlights == "" {
		return changelog
	}
	return fmt.Sprintf("### Highlights\n\n%s\n\n%s", highlights, changelog)
}
