package gemini

import (
	"encoding/json"
	"fmt"

	"github.com/leofalp/cllm/providers/ai"
)

// requestToGemini converts a chat request to the Gemini wire format.
func requestToGemini(request ai.ChatRequest) (generateContentRequest, error) {
	req := generateContentRequest{}

	if request.SystemPrompt != "" {
		req.SystemInstruction = &systemInstruction{Parts: []part{{Text: request.SystemPrompt}}}
	}

	contents, err := buildContents(request.Messages)
	if err != nil {
		return req, err
	}
	req.Contents = contents

	if len(request.Tools) > 0 {
		declarations, err := buildDeclarations(request.Tools)
		if err != nil {
			return req, err
		}
		req.Tools = []tool{{FunctionDeclarations: declarations}}
	}

	return req, nil
}

// buildContents maps history roles: user -> user, assistant -> model (text
// then function calls), tool -> user with one functionResponse per result.
func buildContents(messages []ai.Message) ([]content, error) {
	contents := make([]content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleUser:
			contents = append(contents, content{Role: "user", Parts: []part{{Text: msg.Content}}})

		case ai.RoleAssistant:
			c := content{Role: "model"}
			if msg.Content != "" {
				c.Parts = append(c.Parts, part{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				c.Parts = append(c.Parts, part{FunctionCall: &functionCall{Name: call.Name, Args: rawArgs(call.Arguments)}})
			}
			if len(c.Parts) > 0 {
				contents = append(contents, c)
			}

		case ai.RoleTool:
			c := content{Role: "user"}
			for _, result := range msg.ToolResults {
				response, err := json.Marshal(map[string]any{"result": result.Payload})
				if err != nil {
					return nil, fmt.Errorf("encode result of %s: %w", result.Name, err)
				}
				c.Parts = append(c.Parts, part{FunctionResponse: &functionResponse{Name: result.Name, Response: response}})
			}
			if len(c.Parts) > 0 {
				contents = append(contents, c)
			}

		default:
			return nil, fmt.Errorf("unsupported message role %q", msg.Role)
		}
	}

	return contents, nil
}

// rawArgs returns the call arguments as a JSON object, substituting {} for
// empty or non-JSON input so the request stays valid.
func rawArgs(arguments string) json.RawMessage {
	if arguments == "" || !json.Valid([]byte(arguments)) {
		return json.RawMessage(`{}`)
	}
	return json.RawMessage(arguments)
}

func buildDeclarations(tools []ai.ToolDescription) ([]functionDeclaration, error) {
	declarations := make([]functionDeclaration, 0, len(tools))
	for _, t := range tools {
		declaration := functionDeclaration{Name: t.Name, Description: t.Description}
		if t.Parameters.HasProperties() {
			parameters, err := json.Marshal(t.Parameters)
			if err != nil {
				return nil, fmt.Errorf("encode parameters of %s: %w", t.Name, err)
			}
			declaration.Parameters = parameters
		}
		declarations = append(declarations, declaration)
	}
	return declarations, nil
}

// chunkFromGemini converts one streamed response into a chunk. Each event
// carries only the new output, so text parts are passed through as deltas.
// nextCallID numbers function calls across the whole stream.
func chunkFromGemini(response *generateContentResponse, nextCallID func() string) (ai.Chunk, error) {
	var chunk ai.Chunk

	if len(response.Candidates) == 0 {
		if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
			return chunk, fmt.Errorf("%w: %s", ErrPromptBlocked, response.PromptFeedback.BlockReason)
		}
		return chunk, nil
	}

	candidate := response.Candidates[0]
	if candidate.Content == nil {
		return chunk, nil
	}

	for _, p := range candidate.Content.Parts {
		switch {
		case p.FunctionCall != nil:
			args := ""
			if len(p.FunctionCall.Args) > 0 {
				args = string(p.FunctionCall.Args)
			}
			chunk.Parts = append(chunk.Parts, ai.CallPart(ai.ToolCall{
				ID:        nextCallID(),
				Name:      p.FunctionCall.Name,
				Arguments: args,
			}))
		case p.Text != "" && !p.Thought:
			chunk.Parts = append(chunk.Parts, ai.TextPart(p.Text))
		}
	}

	return chunk, nil
}
