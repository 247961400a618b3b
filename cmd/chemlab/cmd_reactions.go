package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var reactionsCmd = &cobra.Command{
	Use:   "reactions",
	Short: "List the reaction table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kb, err := loadKnowledgeBase(cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for i, e := range kb.Entries() {
			if !e.Conditional() {
				fmt.Fprintf(out, "%2d. %s [%s]\n    %s\n", i+1, e.Reactants, e.Outcome.Type, e.Outcome.Equation)
				continue
			}
			keys := make([]string, 0, len(e.Conditions))
			for k := range e.Conditions {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(out, "%2d. %s [conditional: %s]\n", i+1, e.Reactants, strings.Join(keys, ", "))
			for _, k := range keys {
				o := e.Conditions[k]
				fmt.Fprintf(out, "    %-18s %s [%s]\n", k, o.Equation, o.Type)
			}
		}
		fmt.Fprintf(out, "\n%d reactions\n", kb.Len())
		return nil
	},
}
