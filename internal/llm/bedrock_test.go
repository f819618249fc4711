package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockConverseAPI implements bedrockConverseAPI for testing.
type mockConverseAPI struct {
	input    *bedrockruntime.ConverseInput
	response string
	err      error
}

func (m *mockConverseAPI) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role: brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: m.response},
				},
			},
		},
		StopReason: brtypes.StopReasonEndTurn,
		Usage: &brtypes.TokenUsage{
			InputTokens:  aws.Int32(10),
			OutputTokens: aws.Int32(5),
			TotalTokens:  aws.Int32(15),
		},
	}, nil
}

func TestBedrockClient_Complete(t *testing.T) {
	api := &mockConverseAPI{response: "  Hello there.  "}
	c := NewBedrockClient(api)

	resp, err := c.Complete(context.Background(), Request{
		Model:       "anthropic.claude-3-haiku",
		System:      []string{"You are a website assistant."},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: "hi"}},
		MaxTokens:   500,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", resp.Text)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, int32(15), resp.Usage.TotalTokens)

	require.NotNil(t, api.input)
	assert.Equal(t, "anthropic.claude-3-haiku", aws.ToString(api.input.ModelId))
	require.NotNil(t, api.input.InferenceConfig)
	assert.Equal(t, int32(500), aws.ToInt32(api.input.InferenceConfig.MaxTokens))
	require.Len(t, api.input.System, 1)
	require.Len(t, api.input.Messages, 1)
}

func TestBedrockClient_SystemRoleMessagesBecomeSystemBlocks(t *testing.T) {
	api := &mockConverseAPI{response: "ok"}
	c := NewBedrockClient(api)

	_, err := c.Complete(context.Background(), Request{
		Model: "model-id",
		Messages: []ChatMessage{
			{Role: ChatRoleSystem, Content: "ground rules"},
			{Role: ChatRoleUser, Content: "question"},
		},
		Temperature: -1,
	})
	require.NoError(t, err)
	assert.Len(t, api.input.System, 1)
	assert.Len(t, api.input.Messages, 1)
}

func TestBedrockClient_MissingModel(t *testing.T) {
	c := NewBedrockClient(&mockConverseAPI{})
	_, err := c.Complete(context.Background(), Request{})
	require.Error(t, err)
}

func TestBedrockClient_APIError(t *testing.T) {
	api := &mockConverseAPI{err: errors.New("throttling")}
	c := NewBedrockClient(api)
	_, err := c.Complete(context.Background(), Request{
		Model:    "model-id",
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}},
	})
	require.Error(t, err)
}

func TestBedrockClient_UnsupportedRole(t *testing.T) {
	c := NewBedrockClient(&mockConverseAPI{response: "ok"})
	_, err := c.Complete(context.Background(), Request{
		Model:    "model-id",
		Messages: []ChatMessage{{Role: "tool", Content: "hi"}},
	})
	require.Error(t, err)
}
