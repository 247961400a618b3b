package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chemlab/internal/chemistry"
)

var colorCmd = &cobra.Command{
	Use:   "color [chemical]",
	Short: "Show the color a chemical gives water",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kb, err := loadKnowledgeBase(cfg)
		if err != nil {
			return err
		}
		name := strings.Join(args, " ")
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", chemistry.Normalize(name), swatch(kb.InitialColor(name)))
		return nil
	},
}
