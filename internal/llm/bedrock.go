package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
)

// bedrockConverseAPI is the slice of the Bedrock runtime client the
// gateway calls; *bedrockruntime.Client satisfies it.
type bedrockConverseAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// BedrockClient implements Client on the Bedrock Converse API.
type BedrockClient struct {
	api bedrockConverseAPI
}

func NewBedrockClient(api bedrockConverseAPI) *BedrockClient {
	if api == nil {
		panic("llm: bedrock converse client cannot be nil")
	}
	return &BedrockClient{api: api}
}

var bedrockRoles = map[string]brtypes.ConversationRole{
	ChatRoleUser:      brtypes.ConversationRoleUser,
	ChatRoleAssistant: brtypes.ConversationRoleAssistant,
}

func (c *BedrockClient) Complete(ctx context.Context, req Request) (Response, error) {
	input, err := converseInput(req)
	if err != nil {
		return Response{}, err
	}

	out, err := c.api.Converse(ctx, input)
	if err != nil {
		return Response{}, err
	}
	return converseResponse(out)
}

// converseInput maps a Request onto the Converse wire shape. Blank
// messages are dropped; system-role chat messages join the system blocks.
func converseInput(req Request) (*bedrockruntime.ConverseInput, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, errors.New("llm: bedrock model id is required")
	}

	var system []brtypes.SystemContentBlock
	for _, block := range req.System {
		if strings.TrimSpace(block) != "" {
			system = append(system, &brtypes.SystemContentBlockMemberText{Value: block})
		}
	}

	var messages []brtypes.Message
	for _, msg := range req.Messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		if msg.Role == ChatRoleSystem {
			system = append(system, &brtypes.SystemContentBlockMemberText{Value: content})
			continue
		}
		role, ok := bedrockRoles[msg.Role]
		if !ok {
			return nil, fmt.Errorf("llm: unsupported role %q", msg.Role)
		}
		messages = append(messages, brtypes.Message{
			Role:    role,
			Content: []brtypes.ContentBlock{&brtypes.ContentBlockMemberText{Value: content}},
		})
	}

	return &bedrockruntime.ConverseInput{
		ModelId:         aws.String(req.Model),
		System:          system,
		Messages:        messages,
		InferenceConfig: inferenceConfig(req),
	}, nil
}

// inferenceConfig returns nil when the request pins nothing, so the
// model's own defaults apply. A negative Temperature means "omit".
func inferenceConfig(req Request) *brtypes.InferenceConfiguration {
	cfg := &brtypes.InferenceConfiguration{}
	set := false
	if req.MaxTokens > 0 {
		cfg.MaxTokens = aws.Int32(req.MaxTokens)
		set = true
	}
	if req.Temperature >= 0 {
		cfg.Temperature = aws.Float32(req.Temperature)
		set = true
	}
	if req.TopP != 0 {
		cfg.TopP = aws.Float32(req.TopP)
		set = true
	}
	if !set {
		return nil
	}
	return cfg
}

func converseResponse(out *bedrockruntime.ConverseOutput) (Response, error) {
	if out == nil {
		return Response{}, errors.New("llm: bedrock response is nil")
	}
	msg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok || len(msg.Value.Content) == 0 {
		return Response{}, errors.New("llm: bedrock response carried no message")
	}

	var text strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*brtypes.ContentBlockMemberText); ok {
			text.WriteString(t.Value)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return Response{}, errors.New("llm: bedrock response contained no text blocks")
	}

	resp := Response{
		Text:       strings.TrimSpace(text.String()),
		StopReason: string(out.StopReason),
	}
	if u := out.Usage; u != nil {
		resp.Usage = TokenUsage{
			InputTokens:  aws.ToInt32(u.InputTokens),
			OutputTokens: aws.ToInt32(u.OutputTokens),
			TotalTokens:  aws.ToInt32(u.TotalTokens),
		}
	}
	return resp, nil
}
