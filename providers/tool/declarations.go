package tool

import (
	"fmt"
	"sync"

	"github.com/leofalp/cllm/internal/jsonschema"
	"github.com/leofalp/cllm/providers/ai"
)

var declarations = sync.OnceValue(func() []ai.ToolDescription {
	return []ai.ToolDescription{
		{
			Name: NameUpdateUser,
			Description: "Use this function to update your internal understanding of the user. " +
				"Trigger this when the user reveals personal facts (e.g., 'My name is Sam', 'I hate meetings') " +
				"or exhibits consistent behavior or communication style (e.g., 'sarcastic tone', 'formal language'). " +
				"You may infer facts from context or patterns. These entries help future interactions feel more personal. " +
				"Avoid submitting facts that are already known.",
			Parameters: parameters[UpdateUser](),
		},
		{
			Name:        NameGetUserProfile,
			Description: "Returns all known facts and mannerisms about the user. Call this before updating user information to avoid repetition.",
			Parameters:  parameters[GetUserProfile](),
		},
		{
			Name: NameUpdateSelfPersonality,
			Description: "Use this function to update your own personality traits or behavioral style. " +
				"Call it when you decide to adapt how you interact based on what you've learned about the user. " +
				"For example, if the user is sarcastic, you might adopt a wittier tone. " +
				"If the user is very concise, you might choose to be more direct. " +
				"These entries help guide how you behave in future conversations with this user. " +
				"Avoid redundant entries; only submit new or significantly refined traits.",
			Parameters: parameters[UpdateSelfPersonality](),
		},
	}
})

// Declarations returns the tool descriptions advertised to the model, in a
// fixed order. The slice is shared; callers must not modify it.
func Declarations() []ai.ToolDescription {
	return declarations()
}

// parameters returns nil for argument-less tools. The argument structs are
// fixed at compile time, so a generation failure is a programming error.
func parameters[T any]() *jsonschema.Schema {
	schema, err := jsonschema.GenerateJSONSchema[T]()
	if err != nil {
		panic(fmt.Sprintf("tool: schema for %T: %v", *new(T), err))
	}
	if !schema.HasProperties() {
		return nil
	}
	return schema
}
