// Package tool is the registry of functions the model may call mid-turn and
// the dispatcher that executes them against the memory store.
//
// Raw calls are decoded once, at the transport boundary, into one of the
// closed variants UpdateUser, GetUserProfile or UpdateSelfPersonality.
// Argument problems and unknown names never surface as Go errors: the model
// receives an error payload instead. Only store failures are returned.
//
//	dispatcher := tool.NewDispatcher(store)
//	result, err := dispatcher.Dispatch(ctx, ai.ToolCall{Name: "get_user_profile"})
package tool
