// Package codereview provides the built-in code-review prompt tool.
//
// One tool is exported via [NewTools]:
//   - "generate_code_review_prompt": wraps a code snippet in a review prompt
//     with a fixed focus checklist, fenced and tagged with its language.
//
// The handler is a total function: invalid input produces an error envelope,
// never a fault. Safe for concurrent use.
package codereview

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/MrWong99/toonforge/internal/respond"
	"github.com/MrWong99/toonforge/internal/tools"
)

// defaultLanguage is used when the caller omits the language argument.
const defaultLanguage = "python"

// reviewArgs is the JSON-decoded input for "generate_code_review_prompt".
type reviewArgs struct {
	// Code is the snippet to review. Must be a non-empty string.
	Code any `json:"code"`

	// Language tags the fenced code block. Defaults to "python" when absent;
	// must be a non-empty string when present. Kept raw so an absent key
	// (nil) stays distinguishable from an explicit null, which is a
	// validation error rather than the default.
	Language json.RawMessage `json:"language"`
}

// buildPrompt composes the review prompt: the snippet in a fenced block
// tagged with its language, followed by the fixed focus checklist.
func buildPrompt(code, language string) string {
	return fmt.Sprintf(`Please review the following %s code:

`+"```%s\n%s\n```"+`

Focus on:
1. Code quality and readability
2. Potential bugs or issues
3. Best practices
4. Performance considerations`, language, language, code)
}

// validate checks the argument constraints in declaration order; the first
// violated constraint determines the error envelope.
func validate(a reviewArgs) (code, language string, reason string) {
	c, ok := a.Code.(string)
	if !ok || c == "" {
		return "", "", "Code must be a non-empty string"
	}
	if a.Language == nil {
		return c, defaultLanguage, ""
	}
	// Unmarshalling "null" into a string leaves it empty, so an explicit
	// null fails the same constraint as a wrong type or an empty string.
	var l string
	if err := json.Unmarshal(a.Language, &l); err != nil || l == "" {
		return "", "", "Language must be a non-empty string"
	}
	return c, l, ""
}

func makeHandler(log *slog.Logger, f *respond.Formatter) func(ctx context.Context, args string) (any, error) {
	return func(_ context.Context, args string) (any, error) {
		fail := func(reason string) (any, error) {
			log.Error("code review tool failed", "error", reason)
			return f.Format(respond.Error("", reason, "Failed to generate code review prompt"))
		}

		var a reviewArgs
		if err := json.Unmarshal([]byte(args), &a); err != nil {
			return fail(fmt.Sprintf("invalid arguments: %v", err))
		}

		code, language, reason := validate(a)
		if reason != "" {
			return fail(reason)
		}

		prompt := buildPrompt(code, language)
		log.Info("code review tool called", "language", language, "code_bytes", len(code))

		return f.Format(respond.Success("code_review_prompt",
			fmt.Sprintf("Successfully generated code review prompt for %s code", language),
			respond.F("language", language),
			respond.F("prompt", prompt),
		))
	}
}

// NewTools returns the code-review tools backed by the given logger and
// response formatter.
func NewTools(log *slog.Logger, f *respond.Formatter) []tools.Tool {
	return []tools.Tool{
		{
			Definition: tools.Definition{
				Name:        "generate_code_review_prompt",
				Description: "Generate a structured code-review prompt for a code snippet. The prompt embeds the code in a fenced block tagged with its language and asks for review of quality, bugs, best practices, and performance.",
				InputSchema: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"code": {Type: "string", Description: "Code snippet to review. Must not be empty."},
						"language": {
							Type:        "string",
							Description: "Language tag for the fenced code block. Defaults to \"python\".",
						},
					},
					Required: []string{"code"},
				},
			},
			Handler: makeHandler(log, f),
		},
	}
}
