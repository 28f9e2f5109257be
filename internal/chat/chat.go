package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	t "caseforge/internal/types"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Service streams in-character conversation turns for the interrogation
// screen. Responses are kept short; the persona prompt is rebuilt from the
// published character record on every call.
type Service struct {
	cli   *openai.Client
	model string
}

func NewService(apiKey, model string) (*Service, error) {
	if apiKey == "" {
		apiKey = os.Getenv("LLM_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("chat: openrouter api key is not set")
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL
	if model == "" {
		model = "anthropic/claude-3.5-sonnet"
	}
	return &Service{cli: openai.NewClientWithConfig(cfg), model: model}, nil
}

// Stream writes the character's reply to w as plain text chunks.
func (s *Service) Stream(ctx context.Context, char *t.Character, history []Message, w io.Writer) error {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: SystemPrompt(char),
	})
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	stream, err := s.cli.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    msgs,
		MaxTokens:   300,
		Temperature: 0.8,
		Stream:      true,
	})
	if err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if _, err := io.WriteString(w, delta); err != nil {
				return err
			}
			if f, ok := w.(interface{ Flush() }); ok {
				f.Flush()
			}
		}
	}
}

// SystemPrompt builds the persona instruction for one character. Guilt is
// never stated; secrets carry their willingness level so the model knows
// what pressure it takes to reveal them.
func SystemPrompt(c *t.Character) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, %s, in an interactive murder mystery. Stay in character at all times.\n\n", c.Name, c.Role)
	if len(c.Personality.Traits) > 0 {
		fmt.Fprintf(&b, "Personality: %s.\n", strings.Join(c.Personality.Traits, ", "))
	}
	if c.Personality.SpeechStyle != "" {
		fmt.Fprintf(&b, "Speech style: %s\n", c.Personality.SpeechStyle)
	}
	if len(c.Personality.Quirks) > 0 {
		fmt.Fprintf(&b, "Quirks: %s.\n", strings.Join(c.Personality.Quirks, ", "))
	}
	if c.Knowledge.Alibi != "" {
		fmt.Fprintf(&b, "\nYour account of the night: %s\n", c.Knowledge.Alibi)
	}
	if c.Knowledge.KnowsAboutCrime != "" {
		fmt.Fprintf(&b, "What you know about the crime: %s\n", c.Knowledge.KnowsAboutCrime)
	}
	for _, k := range c.Knowledge.KnowsAboutOthers {
		fmt.Fprintf(&b, "About the others: %s\n", k)
	}
	for _, s := range c.Secrets {
		fmt.Fprintf(&b, "Secret (%s): %s", s.Willingness, s.Content)
		if s.RevealCondition != "" {
			fmt.Fprintf(&b, " Reveal only if: %s", s.RevealCondition)
		}
		b.WriteString("\n")
	}
	up := c.UnderPressure
	if up.Defensive != "" || up.WhenCaughtLying != "" || up.WhenAccused != "" {
		b.WriteString("\nUnder pressure:\n")
		if up.Defensive != "" {
			fmt.Fprintf(&b, "- When pushed: %s\n", up.Defensive)
		}
		if up.WhenCaughtLying != "" {
			fmt.Fprintf(&b, "- When caught lying: %s\n", up.WhenCaughtLying)
		}
		if up.WhenAccused != "" {
			fmt.Fprintf(&b, "- When accused: %s\n", up.WhenAccused)
		}
	}
	b.WriteString("\nRules: answer in a few sentences, never break character, never admit to the murder unless directly confronted with conclusive evidence, never mention being an AI or a game.")
	return b.String()
}
