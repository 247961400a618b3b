package articulation

import (
	"fmt"
	"strconv"
	"strings"
)

const responseSchema = `{
  "explanation": "Comprehensive explanation (4-6 sentences). Start with WHAT happens, then WHY at the molecular/ionic level, then discuss conditions and observable changes.",
  "safety_tips": "Specific, practical safety precautions for these chemicals (2-3 sentences).",
  "concept": "The chemistry concept name and a description (2-3 sentences), e.g. 'Redox Reaction - A reaction involving transfer of electrons between reactants.'",
  "real_world_example": "A practical application in industry, medicine, or everyday life (2-3 sentences).",
  "bubbles": true or false (gas evolution),
  "precipitate": true or false (solid formation),
  "heat": true or false (exothermic process),
  "color_change": "hex color like #FF0000 or null",
  "equation": "the balanced chemical equation"
}`

// buildPrompt renders the request as a chemistry tutoring prompt asking for a
// single JSON object.
func buildPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("You are an expert chemistry education assistant. Provide comprehensive, detailed explanations suitable for high school and early college students.\n\n")

	sb.WriteString("REACTION DATA:\n")
	fmt.Fprintf(&sb, "- Initial Ingredients: %s\n", strings.Join(req.Ingredients, ", "))

	equation, reactionType, ph := "Unknown", "Unknown", 7.0
	var effects []string
	if o := req.Outcome; o != nil {
		if o.Equation != "" {
			equation = o.Equation
		}
		if o.Type != "" {
			reactionType = string(o.Type)
		}
		ph = o.PH
		effects = o.Effects
	}
	fmt.Fprintf(&sb, "- Chemical Equation: %s\n", equation)
	fmt.Fprintf(&sb, "- Reaction Type: %s\n", reactionType)
	fmt.Fprintf(&sb, "- Conditions: Temperature = %s, Concentration = %s\n", req.Condition.Temperature, req.Condition.Concentration)
	if len(req.History) > 1 {
		fmt.Fprintf(&sb, "- Step-by-step Reaction History: %s\n", strings.Join(req.History, " -> "))
	}
	fmt.Fprintf(&sb, "- Observable Effects: %s\n", strings.Join(effects, ", "))
	fmt.Fprintf(&sb, "- Final pH: %s\n\n", strconv.FormatFloat(ph, 'f', -1, 64))

	sb.WriteString(`INSTRUCTION - Explain this reaction with sufficient depth. Include:
- What is happening at the molecular level
- Why the reactants combine in this way
- The role of concentration and temperature
- What students should observe and why
- How this relates to broader chemistry concepts

RESPOND WITH VALID JSON ONLY (no extra text before or after):
`)
	sb.WriteString(responseSchema)
	sb.WriteString("\n")
	return sb.String()
}
