package enrich

import (
	"encoding/json"
	"fmt"
	"strings"

	"codeberg.org/snonux/wordofday/internal/entry"
)

const systemPrompt = "You are a helpful English tutor."

const maxExamples = 3

// BuildPrompt asks for the JSON object ParseDetails understands.
func BuildPrompt(word, language string) string {
	if language == "" {
		language = "Ukrainian"
	}
	return fmt.Sprintf(`Please provide the following information about the English word %q:
1. %s translation (one or two words)
2. Part of speech (noun, verb, adjective, adverb, etc.)
3. Example sentences (3 examples) demonstrating usage.
Respond with a JSON object only, with keys: translation, partOfSpeech, examples (array of strings).`, word, language)
}

type detailsPayload struct {
	Translation  string   `json:"translation"`
	PartOfSpeech string   `json:"partOfSpeech"`
	Examples     []string `json:"examples"`
}

// ParseDetails decodes a model reply. Markdown code fences around the JSON
// object are tolerated.
func ParseDetails(text string) (Details, error) {
	text = stripCodeFence(strings.TrimSpace(text))
	if text == "" {
		return Details{}, fmt.Errorf("%w: empty reply", ErrMalformed)
	}

	var payload detailsPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return Details{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	translation := strings.TrimSpace(payload.Translation)
	if translation == "" {
		return Details{}, fmt.Errorf("%w: missing translation", ErrMalformed)
	}

	examples := make([]string, 0, maxExamples)
	for _, ex := range payload.Examples {
		if ex = strings.TrimSpace(ex); ex != "" && len(examples) < maxExamples {
			examples = append(examples, ex)
		}
	}
	if len(examples) == 0 {
		return Details{}, fmt.Errorf("%w: missing examples", ErrMalformed)
	}

	return Details{
		Translation:  translation,
		PartOfSpeech: entry.ParsePartOfSpeech(payload.PartOfSpeech),
		Examples:     examples,
	}, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
