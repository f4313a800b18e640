// Package utils holds low-level helpers shared by the providers: a streaming
// HTTP POST with an SSE reader ([DoPostStream], [SSEScanner]), lenient JSON
// decoding of model output ([ParseJSONAs]) and a few string and pointer helpers.
package utils
