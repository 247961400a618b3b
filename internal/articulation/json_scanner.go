package articulation

import (
	"encoding/json"
	"strings"
)

// jsonObjects returns every top-level {...} span in s, in order. Models often
// wrap their JSON in prose or code fences, so braces inside string literals
// are skipped and unbalanced input yields no span.
//
// Iterating bytes is safe here: the delimiters are ASCII and never occur
// inside a multi-byte UTF-8 sequence.
func jsonObjects(s string) []string {
	var (
		spans    []string
		depth    int
		start    = -1
		inString bool
		escaped  bool
	)

	for i := 0; i < len(s); i++ {
		b := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				spans = append(spans, s[start:i+1])
				start = -1
			}
		}
	}
	return spans
}

// narrativePayload is the JSON object the prompt asks the model for.
type narrativePayload struct {
	Explanation      string  `json:"explanation"`
	SafetyTips       string  `json:"safety_tips"`
	Concept          string  `json:"concept"`
	RealWorldExample string  `json:"real_world_example"`
	Bubbles          *bool   `json:"bubbles"`
	Precipitate      *bool   `json:"precipitate"`
	Heat             *bool   `json:"heat"`
	ColorChange      *string `json:"color_change"`
	GasSmoke         *bool   `json:"gas_smoke"`
	Equation         string  `json:"equation"`
}

// parseContent extracts the first JSON object in text that decodes into a
// narrative payload.
func parseContent(text string) (*Content, error) {
	candidates := jsonObjects(text)
	if len(candidates) == 0 {
		candidates = []string{strings.TrimSpace(text)}
	}

	for _, c := range candidates {
		var p narrativePayload
		if err := json.Unmarshal([]byte(c), &p); err != nil {
			continue
		}
		return p.content(), nil
	}
	return nil, ErrUnparseable
}

func (p *narrativePayload) content() *Content {
	color := p.ColorChange
	if color != nil {
		v := strings.TrimSpace(*color)
		if v == "" || strings.EqualFold(v, "null") || strings.EqualFold(v, "none") {
			color = nil
		} else {
			color = &v
		}
	}
	return &Content{
		Explanation:      p.Explanation,
		SafetyTips:       p.SafetyTips,
		Concept:          p.Concept,
		RealWorldExample: p.RealWorldExample,
		Visual: Visual{
			Bubbles:     p.Bubbles,
			Precipitate: p.Precipitate,
			Heat:        p.Heat,
			ColorChange: color,
			GasSmoke:    p.GasSmoke,
			Equation:    strings.TrimSpace(p.Equation),
		},
	}
}
