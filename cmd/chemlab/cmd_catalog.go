package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chemlab/internal/logging"
	"chemlab/internal/pubchem"
	"chemlab/internal/store"
)

var (
	importName     string
	importCID      int64
	importCategory string
	searchMax      int
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the chemical catalog",
}

var catalogAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Import a compound from PubChem",
	Long: `Looks up a compound on PubChem by name or CID and stores it on a shelf.

Example:
  chemlab catalog add --name aspirin --category solids
  chemlab catalog add --cid 962 --category liquids`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		catalog, err := openCatalog(ctx, cfg)
		if err != nil {
			return err
		}
		defer catalog.Close()

		im := store.NewImporter(catalog, newPubChem(cfg), logging.For(logger, logging.CategoryStore))
		chem, existed, err := im.Import(ctx, store.ImportRequest{Name: importName, CID: importCID, Category: importCategory})
		if errors.Is(err, pubchem.ErrNotFound) {
			return fmt.Errorf("chemical not found on PubChem")
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if existed {
			fmt.Fprintf(out, "Already on the %s shelf: %s (%s, CID %d)\n", chem.Category, chem.Name, chem.Display, chem.CID)
			return nil
		}
		fmt.Fprintf(out, "Added to %s: %s (%s, CID %d)\n", chem.Category, chem.Name, chem.Display, chem.CID)
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the catalog by shelf",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		catalog, err := openCatalog(ctx, cfg)
		if err != nil {
			return err
		}
		defer catalog.Close()

		shelves, err := catalog.Shelves(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, category := range store.Categories {
			chems := shelves[category]
			fmt.Fprintf(out, "%s (%d)\n", titleStyle.Render(category), len(chems))
			for _, c := range chems {
				fmt.Fprintf(out, "  %-28s %-10s CID %d\n", c.Name, c.Display, c.CID)
			}
		}
		return nil
	},
}

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Stock every shelf with the core chemical library",
	Long: `Imports the built-in core library from PubChem, one shelf at a time.
Chemicals already in the catalog are skipped, so seeding can be re-run.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		shelves, err := store.CoreShelves()
		if err != nil {
			return err
		}
		catalog, err := openCatalog(ctx, cfg)
		if err != nil {
			return err
		}
		defer catalog.Close()

		im := store.NewImporter(catalog, newPubChem(cfg), logging.For(logger, logging.CategoryStore))
		report, err := im.Seed(ctx, shelves)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added %d, skipped %d\n", report.Added, report.Skipped)
		if len(report.Missing) > 0 {
			fmt.Fprintf(out, "Not on PubChem: %s\n", strings.Join(report.Missing, ", "))
		}
		if len(report.Failed) > 0 {
			fmt.Fprintf(out, "Failed: %s\n", strings.Join(report.Failed, ", "))
		}
		return nil
	},
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search PubChem for compounds by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := newPubChem(cfg).Search(cmd.Context(), args[0], searchMax)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%d matches\n", res.TotalFound)
		for _, c := range res.Results {
			fmt.Fprintf(out, "  %-28s %-10s CID %d\n", c.Name, pubchem.FormatFormula(c.Formula, c.Name), c.CID)
		}
		return nil
	},
}
