package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/orbitchat/platform/internal/knowledge"
	"github.com/orbitchat/platform/internal/llm"
	"github.com/orbitchat/platform/pkg/logging"
)

const (
	// fallbackReply is served when the gateway errors or times out.
	fallbackReply = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."
	// emptyReplyFallback is served when the gateway succeeds but returns
	// nothing.
	emptyReplyFallback = "I'm not sure how to answer that. Could you rephrase your question?"
)

// Generator produces assistant replies. Gateway failures soft-fail to a
// fixed fallback string so the pipeline never aborts a turn on them.
type Generator struct {
	client      llm.Client
	maxTokens   int32
	temperature float32
	timeout     time.Duration
	logger      *logging.Logger
}

func NewGenerator(client llm.Client, maxTokens int, temperature float64, timeout time.Duration, logger *logging.Logger) *Generator {
	if client == nil {
		panic("chat: llm client required")
	}
	if maxTokens <= 0 {
		maxTokens = 500
	}
	if temperature <= 0 {
		temperature = 0.7
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Generator{
		client:      client,
		maxTokens:   int32(maxTokens),
		temperature: float32(temperature),
		timeout:     timeout,
		logger:      logger,
	}
}

// GenerateReply returns the reply text and whether it came from a
// fallback path rather than the model.
func (g *Generator) GenerateReply(ctx context.Context, botName string, pc *knowledge.PromptContext, userMessage string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.Complete(ctx, llm.Request{
		System:      []string{g.systemPrompt(botName, pc)},
		Messages:    []llm.ChatMessage{{Role: llm.ChatRoleUser, Content: userMessage}},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		g.logger.Warn("reply generation failed, serving fallback", "error", err)
		return fallbackReply, true
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return emptyReplyFallback, true
	}
	return text, false
}

func (g *Generator) systemPrompt(botName string, pc *knowledge.PromptContext) string {
	var sb strings.Builder
	name := botName
	if name == "" {
		name = "the website assistant"
	}
	fmt.Fprintf(&sb, "You are %s, a helpful assistant embedded on this business's website. ", name)
	sb.WriteString("Answer visitor questions using the business information below. ")
	sb.WriteString("If the answer is not covered, say so briefly instead of guessing.\n")

	if pc != nil && pc.GroundingText != "" {
		sb.WriteString("\nBusiness information:\n")
		sb.WriteString(pc.GroundingText)
		sb.WriteString("\n")
	}
	if pc != nil && len(pc.KnowledgeBase) > 0 {
		sb.WriteString("\nFrequently asked questions:\n")
		for _, qa := range pc.KnowledgeBase {
			fmt.Fprintf(&sb, "Q: %s\nA: %s\n", qa.Question, qa.Answer)
		}
	}
	return sb.String()
}
