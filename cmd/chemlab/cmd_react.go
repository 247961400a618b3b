package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"chemlab/internal/core"
)

var (
	reactTemperature   string
	reactConcentration string
	reactJSON          bool
)

// reactCmd simulates one beaker
var reactCmd = &cobra.Command{
	Use:   "react [chemical]...",
	Short: "Mix chemicals and show what happens",
	Long: `Mixes the given chemicals in a virtual beaker and prints the reaction.

Quote chemicals whose names contain spaces.

Example:
  chemlab react "hydrochloric acid" "sodium hydroxide"
  chemlab react copper "sulfuric acid" -t hot -k concentrated`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReact,
}

func runReact(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := engine.Simulate(ctx, core.Request{
		Ingredients:   args,
		Temperature:   reactTemperature,
		Concentration: reactConcentration,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if reactJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return renderResult(out, result)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle = lipgloss.NewStyle().Bold(true).Width(14)
	stepStyle  = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("#888888"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// swatch renders a colored block for a #RRGGBB[AA] color.
func swatch(color string) string {
	hex := color
	if len(hex) == 9 {
		hex = hex[:7]
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██") + " " + color
}

func renderResult(w io.Writer, r *core.Result) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Equation) + "\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + value + "\n")
	}
	row("Type", string(r.ReactionType))
	row("pH", fmt.Sprintf("%g", r.PH))
	row("Products", strings.Join(r.Products, ", "))
	if len(r.Symptoms) > 0 {
		row("Observed", strings.Join(r.Symptoms, ", "))
	}
	row("Liquid", swatch(r.LiquidColor))
	row("Particles", fmt.Sprintf("%s %s", r.ParticleType, r.ParticleColor))

	var effects []string
	if r.AnimationTriggers.Bubbles {
		effects = append(effects, "bubbles")
	}
	if r.AnimationTriggers.Precipitate {
		effects = append(effects, "precipitate")
	}
	if r.AnimationTriggers.Heat {
		effects = append(effects, "heat")
	}
	if len(effects) > 0 {
		row("Effects", strings.Join(effects, ", "))
	}

	if len(r.VisualSteps) > 1 {
		b.WriteString("\n" + labelStyle.Render("Cascade") + "\n")
		for i, s := range r.VisualSteps {
			b.WriteString(stepStyle.Render(fmt.Sprintf("%d. %s", i+1, s.Equation)) + "\n")
		}
	}

	if _, err := fmt.Fprintln(w, boxStyle.Render(strings.TrimRight(b.String(), "\n"))); err != nil {
		return err
	}

	md := explanationMarkdown(r)
	if md == "" {
		return nil
	}
	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
	if err != nil {
		_, err = fmt.Fprintln(w, md)
		return err
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		_, err = fmt.Fprintln(w, md)
		return err
	}
	_, err = fmt.Fprint(w, rendered)
	return err
}

func explanationMarkdown(r *core.Result) string {
	var b strings.Builder
	section := func(title, body string) {
		if strings.TrimSpace(body) == "" {
			return
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", title, body)
	}
	section("What happened", r.Explanation)
	section("Concept", r.Concept)
	section("Safety", r.SafetyTips)
	section("In the real world", r.RealWorldExample)
	return b.String()
}
