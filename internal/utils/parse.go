package utils

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseJSONAs decodes content into a value of type T. When strict decoding
// fails the content is passed through jsonrepair and decoded again, so
// single quotes, bare keys and trailing commas from a model are accepted.
// Blank content decodes to the zero value of T.
//
//	args, err := ParseJSONAs[UpdateUserArgs](`{entry_type: 'fact', entry: "likes tea",}`)
func ParseJSONAs[T any](content string) (T, error) {
	var result T

	if strings.TrimSpace(content) == "" {
		return result, nil
	}

	err := json.Unmarshal([]byte(content), &result)
	if err == nil {
		return result, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(content)
	if repairErr != nil {
		return result, fmt.Errorf("decode %T: %w (repair failed: %v)", result, err, repairErr)
	}

	result = *new(T)
	if err = json.Unmarshal([]byte(repaired), &result); err != nil {
		return result, fmt.Errorf("decode repaired %T: %w (repaired: %s)", result, err, TruncateString(repaired, 200))
	}
	return result, nil
}
