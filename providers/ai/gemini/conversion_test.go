package gemini

import (
	"encoding/json"
	"testing"

	"github.com/leofalp/cllm/internal/jsonschema"
	"github.com/leofalp/cllm/providers/ai"
)

func TestBuildContents_RoleMapping(t *testing.T) {
	contents, err := buildContents([]ai.Message{
		{Role: ai.RoleUser, Content: "hello"},
		{Role: ai.RoleAssistant, Content: "let me check", ToolCalls: []ai.ToolCall{
			{Name: "update_user", Arguments: `{"entry_type":"fact","entry":"x"}`},
			{Name: "get_user_profile"},
		}},
		{Role: ai.RoleTool, ToolResults: []ai.ToolResult{
			{Name: "update_user", Payload: map[string]string{"status": "success"}},
			{Name: "get_user_profile", Payload: map[string][]string{"facts": {"x"}}},
		}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(contents))
	}

	model := contents[1]
	if model.Role != "model" || len(model.Parts) != 3 || model.Parts[0].Text != "let me check" {
		t.Errorf("unexpected model content %+v", model)
	}
	if string(model.Parts[2].FunctionCall.Args) != `{}` {
		t.Errorf("expected empty args to become {}, got %s", model.Parts[2].FunctionCall.Args)
	}

	results := contents[2]
	if results.Role != "user" || len(results.Parts) != 2 {
		t.Fatalf("unexpected tool content %+v", results)
	}
	if string(results.Parts[0].FunctionResponse.Response) != `{"result":{"status":"success"}}` {
		t.Errorf("unexpected response encoding %s", results.Parts[0].FunctionResponse.Response)
	}
}

func TestBuildContents_UnknownRole(t *testing.T) {
	if _, err := buildContents([]ai.Message{{Role: "system", Content: "x"}}); err == nil {
		t.Fatal("expected an error for an unsupported role")
	}
}

func TestBuildDeclarations_Parameters(t *testing.T) {
	type args struct {
		Trait string `json:"trait"`
	}
	schema, err := jsonschema.GenerateJSONSchema[args]()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	declarations, err := buildDeclarations([]ai.ToolDescription{
		{Name: "update_self_personality", Parameters: schema},
		{Name: "get_user_profile", Parameters: &jsonschema.Schema{Type: "object"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var params map[string]any
	if err := json.Unmarshal(declarations[0].Parameters, &params); err != nil {
		t.Fatalf("invalid parameters JSON: %v", err)
	}
	if params["type"] != "object" || params["required"].([]any)[0] != "trait" {
		t.Errorf("unexpected parameters %v", params)
	}
	if declarations[1].Parameters != nil {
		t.Errorf("expected parameters to be omitted, got %s", declarations[1].Parameters)
	}
}

func TestChunkFromGemini_SkipsThoughtsAndEmptyCandidates(t *testing.T) {
	ids := 0
	next := func() string { ids++; return "id" }

	chunk, err := chunkFromGemini(&generateContentResponse{}, next)
	if err != nil || len(chunk.Parts) != 0 {
		t.Fatalf("expected empty chunk, got %+v, %v", chunk, err)
	}

	chunk, err = chunkFromGemini(&generateContentResponse{Candidates: []candidate{{Content: &content{Parts: []part{
		{Text: "thinking...", Thought: true},
		{Text: "answer"},
	}}}}}, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunk.Parts) != 1 || chunk.Parts[0].Text != "answer" || ids != 0 {
		t.Errorf("unexpected chunk %+v", chunk)
	}
}
