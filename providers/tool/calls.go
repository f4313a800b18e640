package tool

import (
	"errors"
	"fmt"

	"github.com/leofalp/cllm/internal/utils"
	"github.com/leofalp/cllm/providers/ai"
	"github.com/leofalp/cllm/providers/memory"
)

// Tool names advertised to the model.
const (
	NameUpdateUser            = "update_user"
	NameGetUserProfile        = "get_user_profile"
	NameUpdateSelfPersonality = "update_self_personality"
)

// ErrUnknownTool is returned by Decode for a name outside the registry.
var ErrUnknownTool = errors.New("unknown tool")

// Call is a decoded tool call. The set of implementations is closed.
type Call interface {
	ToolName() string
	isCall()
}

// UpdateUser records a fact or mannerism about the user.
type UpdateUser struct {
	EntryType string `json:"entry_type" jsonschema:"enum=fact,enum=mannerism" jsonschema_description:"'fact' is objective information (e.g., 'They work in finance', 'They are learning Rust'). 'mannerism' is about how they communicate (e.g., 'They speak formally', 'They use a lot of emojis')."`
	Entry     string `json:"entry" jsonschema_description:"A single, clear sentence summarizing the observation. Examples: 'They are from New York', 'They joke often', 'They dislike overly verbose answers'."`
}

// GetUserProfile reads every recorded fact and mannerism.
type GetUserProfile struct{}

// UpdateSelfPersonality records a self-trait of the assistant.
type UpdateSelfPersonality struct {
	Trait string `json:"trait" jsonschema_description:"A concise sentence describing how you intend to adjust your personality or tone. For example: 'I will be more playful and informal', 'I will respond with bullet points', 'I will avoid making jokes', 'I will mirror the user's poetic tone'."`
}

func (UpdateUser) ToolName() string            { return NameUpdateUser }
func (GetUserProfile) ToolName() string        { return NameGetUserProfile }
func (UpdateSelfPersonality) ToolName() string { return NameUpdateSelfPersonality }

func (UpdateUser) isCall()            {}
func (GetUserProfile) isCall()        {}
func (UpdateSelfPersonality) isCall() {}

// Decode turns a raw call from the model into its typed variant. Unknown
// names wrap ErrUnknownTool; arguments that cannot be decoded or validated
// wrap memory.ErrInvalidArgument.
func Decode(call ai.ToolCall) (Call, error) {
	switch call.Name {
	case NameUpdateUser:
		args, err := utils.ParseJSONAs[UpdateUser](call.Arguments)
		if err != nil {
			return UpdateUser{}, fmt.Errorf("%w: %s: %v", memory.ErrInvalidArgument, call.Name, err)
		}
		if _, err := memory.ParseKind(args.EntryType); err != nil || args.Entry == "" {
			return args, fmt.Errorf("%w: %s: entry_type %q, entry %q", memory.ErrInvalidArgument, call.Name, args.EntryType, args.Entry)
		}
		return args, nil

	case NameGetUserProfile:
		return GetUserProfile{}, nil

	case NameUpdateSelfPersonality:
		args, err := utils.ParseJSONAs[UpdateSelfPersonality](call.Arguments)
		if err != nil {
			return UpdateSelfPersonality{}, fmt.Errorf("%w: %s: %v", memory.ErrInvalidArgument, call.Name, err)
		}
		if args.Trait == "" {
			return args, fmt.Errorf("%w: %s: empty trait", memory.ErrInvalidArgument, call.Name)
		}
		return args, nil

	default:
		return nil, fmt.Errorf("%w %s", ErrUnknownTool, call.Name)
	}
}
