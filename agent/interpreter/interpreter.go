// Package interpreter turns raw caller utterances into structured
// answers using chat-completion tool calls.
package interpreter

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	openaisdk "github.com/openai/openai-go/v2"
	"github.com/rs/zerolog/log"

	contractx "github.com/sg19chess/mla-voice-saas/agent/contract"
	"github.com/sg19chess/mla-voice-saas/agent/dialogue"
)

//go:embed system_prompt.txt
var systemPrompt string

type Interpreter struct {
	client *openaisdk.Client
	model  string
	temp   float64
}

var _ contractx.Interpreter = (*Interpreter)(nil)

func New(client *openaisdk.Client, model string, temperature float64) (*Interpreter, error) {
	if client == nil {
		return nil, fmt.Errorf("openai client is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model name is required")
	}
	return &Interpreter{client: client, model: model, temp: temperature}, nil
}

// Interpret classifies one utterance. A nil answer with nil error means
// the model produced nothing actionable; callers treat that as
// out-of-domain input.
func (i *Interpreter) Interpret(ctx context.Context, req contractx.InterpretRequest) (*contractx.StructuredAnswer, error) {
	utterance := strings.TrimSpace(req.Utterance)
	if utterance == "" {
		return nil, nil
	}

	messages := []openaisdk.ChatCompletionMessageParamUnion{
		openaisdk.SystemMessage(systemPrompt),
	}
	if req.CallerName != "" {
		messages = append(messages, openaisdk.SystemMessage(
			fmt.Sprintf("The caller already identified themselves as %q.", req.CallerName)))
	}
	messages = append(messages, openaisdk.UserMessage(utterance))

	completion, err := i.client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(i.model),
		Messages:    messages,
		Tools:       slotTools(),
		Temperature: openaisdk.Float(i.temp),
	})
	if err != nil {
		return nil, fmt.Errorf("interpret utterance: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, nil
	}
	calls := completion.Choices[0].Message.ToolCalls
	if len(calls) == 0 {
		return nil, nil
	}

	call := calls[0]
	fields, err := decodeArguments(call.Function.Arguments)
	if err != nil {
		log.Debug().Err(err).Str("tool", call.Function.Name).Msg("tool arguments not decodable")
		return nil, nil
	}

	return &contractx.StructuredAnswer{Tool: call.Function.Name, Fields: fields}, nil
}

func decodeArguments(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]string{}, nil
	}
	var loose map[string]any
	if err := sonic.UnmarshalString(raw, &loose); err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}
	fields := make(map[string]string, len(loose))
	for k, v := range loose {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case nil:
		default:
			fields[k] = fmt.Sprintf("%v", val)
		}
	}
	return fields, nil
}

func slotTools() []openaisdk.ChatCompletionToolUnionParam {
	return []openaisdk.ChatCompletionToolUnionParam{
		openaisdk.ChatCompletionFunctionTool(openaisdk.FunctionDefinitionParam{
			Name:        dialogue.ToolGotName,
			Description: openaisdk.String("The caller stated their own name."),
			Parameters: openaisdk.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"name": map[string]any{"type": "string", "description": "Caller's name without honorifics."},
				},
				"required": []string{"name"},
			},
		}),
		openaisdk.ChatCompletionFunctionTool(openaisdk.FunctionDefinitionParam{
			Name:        dialogue.ToolGotIssue,
			Description: openaisdk.String("The caller described a civic problem."),
			Parameters: openaisdk.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"issue_type":  map[string]any{"type": "string", "description": "Short category phrase for the problem."},
					"description": map[string]any{"type": "string", "description": "The caller's own wording of the problem."},
				},
				"required": []string{"issue_type", "description"},
			},
		}),
		openaisdk.ChatCompletionFunctionTool(openaisdk.FunctionDefinitionParam{
			Name:        dialogue.ToolGotLocation,
			Description: openaisdk.String("The caller stated where the problem is."),
			Parameters: openaisdk.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"location": map[string]any{"type": "string", "description": "Street or area where the problem is."},
					"ward":     map[string]any{"type": "string", "description": "Ward number if mentioned."},
					"landmark": map[string]any{"type": "string", "description": "Nearby landmark if mentioned."},
				},
				"required": []string{"location"},
			},
		}),
		openaisdk.ChatCompletionFunctionTool(openaisdk.FunctionDefinitionParam{
			Name:        dialogue.ToolFollowUp,
			Description: openaisdk.String("The caller answered whether they want to report another complaint."),
			Parameters: openaisdk.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"more": map[string]any{"type": "string", "enum": []string{"yes", "no"}},
				},
				"required": []string{"more"},
			},
		}),
		openaisdk.ChatCompletionFunctionTool(openaisdk.FunctionDefinitionParam{
			Name:        dialogue.ToolOutOfDomain,
			Description: openaisdk.String("The utterance is unrelated to filing a municipal complaint."),
			Parameters: openaisdk.FunctionParameters{
				"type":       "object",
				"properties": map[string]any{},
			},
		}),
	}
}
