package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/activhome/lightstack/internal/card"
	"github.com/activhome/lightstack/internal/config"
	"github.com/activhome/lightstack/internal/ui"
)

// Row command flags
var (
	rowName           string
	rowNavigationPath string
	rowFontSize       string
	rowsDryRun        bool
	rowsYes           bool
)

func init() {
	rootCmd.AddCommand(rowsCmd)
	rowsCmd.AddCommand(rowsAddCmd)
	rowsCmd.AddCommand(rowsRemoveCmd)
	rowsCmd.AddCommand(rowsUpCmd)
	rowsCmd.AddCommand(rowsDownCmd)

	rowsCmd.PersistentFlags().BoolVar(&rowsDryRun, "dry-run", false, "Show the change without writing the card file")

	rowsAddCmd.Flags().StringVar(&rowName, "name", "", "Display name (default: the entity's friendly name)")
	rowsAddCmd.Flags().StringVar(&rowNavigationPath, "navigation-path", "", "View to open when the name is tapped")
	rowsAddCmd.Flags().StringVar(&rowFontSize, "font-size", "", "Font size, e.g. 18px")

	rowsRemoveCmd.Flags().BoolVarP(&rowsYes, "yes", "y", false, "Do not ask for confirmation")
}

var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Edit the rows of a card file",
	Long: `Add, remove and reorder card rows.

Rows are addressed by entity id or by index as printed by 'lightstack show'.
--view selects the view to edit; the first view is used otherwise.
A missing card file is created by 'rows add'.`,
	Example: `  lightstack rows add light.kitchen --name Kitchen
  lightstack rows add light.hall --navigation-path /hall
  lightstack rows up light.hall
  lightstack rows remove 2 --yes
  lightstack rows add switch.fan --dry-run`,
}

var rowsAddCmd = &cobra.Command{
	Use:   "add <entity>",
	Short: "Append a row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		row := card.RowConfig{
			Entity:         args[0],
			Name:           strings.TrimSpace(rowName),
			NavigationPath: strings.TrimSpace(rowNavigationPath),
			FontSize:       strings.TrimSpace(rowFontSize),
		}
		return editRows(cmd, "rows add", true, func(c *card.CardConfig) (string, error) {
			if err := c.AddRow(row); err != nil {
				return "", err
			}
			return "Added " + row.Entity, nil
		})
	},
}

var rowsRemoveCmd = &cobra.Command{
	Use:     "remove <entity|index>",
	Aliases: []string{"rm"},
	Short:   "Remove a row",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRows(cmd, "rows remove", false, func(c *card.CardConfig) (string, error) {
			i, err := rowIndex(c, args[0])
			if err != nil {
				return "", err
			}
			entity := c.Items[i].Entity
			if !rowsDryRun && !rowsYes {
				if !ui.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Remove %s?", entity)) {
					return "", errCancelled
				}
			}
			if err := c.RemoveRow(i); err != nil {
				return "", err
			}
			return "Removed " + entity, nil
		})
	},
}

var rowsUpCmd = &cobra.Command{
	Use:   "up <entity|index>",
	Short: "Move a row up",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRows(cmd, "rows up", false, moveRow(args[0], (*card.CardConfig).MoveUp, "up"))
	},
}

var rowsDownCmd = &cobra.Command{
	Use:   "down <entity|index>",
	Short: "Move a row down",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRows(cmd, "rows down", false, moveRow(args[0], (*card.CardConfig).MoveDown, "down"))
	},
}

// errCancelled stops an edit without writing or reporting a failure.
var errCancelled = errors.New("cancelled")

// errUnchanged stops an edit that had nothing to do.
var errUnchanged = errors.New("unchanged")

func moveRow(ref string, move func(*card.CardConfig, int) bool, dir string) func(*card.CardConfig) (string, error) {
	return func(c *card.CardConfig) (string, error) {
		i, err := rowIndex(c, ref)
		if err != nil {
			return "", err
		}
		if !move(c, i) {
			return "", errUnchanged
		}
		return fmt.Sprintf("Moved %s %s", c.Items[indexAfterMove(i, dir)].Entity, dir), nil
	}
}

func indexAfterMove(i int, dir string) int {
	if dir == "up" {
		return i - 1
	}
	return i + 1
}

// rowIndex resolves an entity id or a numeric index.
func rowIndex(c *card.CardConfig, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if i := c.IndexOf(ref); i >= 0 {
		return i, nil
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 0 || n >= len(c.Items) {
			return 0, fmt.Errorf("row %d out of range (0-%d)", n, len(c.Items)-1)
		}
		return n, nil
	}
	return 0, fmt.Errorf("no row for %s", ref)
}

func editRows(cmd *cobra.Command, command string, create bool, edit func(*card.CardConfig) (string, error)) error {
	o, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	path, err := o.cardPath()
	if err != nil {
		return err
	}

	p := ui.NewPrinter(cmd.OutOrStdout())
	params := []ui.Detail{{Key: "Card", Value: path}}
	if o.View != "" {
		params = append(params, ui.Detail{Key: "View", Value: o.View})
	}
	p.PrintHeader("Card rows", "lightstack "+command, params...)
	p.Newline()

	res, err := editCardFile(path, o.View, create, rowsDryRun, edit)
	switch {
	case errors.Is(err, errCancelled):
		p.Println("Nothing changed")
		return nil
	case errors.Is(err, errUnchanged):
		p.Println("Row is already in place")
		return nil
	case err != nil:
		p.PrintError("Could not edit card", err, editTips(err))
		return err
	}

	if rowsDryRun {
		p.PrintDiff(res.before, res.after)
		p.Newline()
		p.Println("Dry run: " + path + " was not written")
		return nil
	}
	p.PrintSuccess(res.message,
		ui.Detail{Key: "File", Value: path},
		ui.Detail{Key: "Rows", Value: strconv.Itoa(res.rows)})
	return nil
}

type editResult struct {
	message       string
	before, after string
	rows          int
}

// editCardFile applies edit to the card of view in path and writes the file
// unless dryRun is set. With create, a missing file starts as an empty "/"
// card.
func editCardFile(path, view string, create, dryRun bool, edit func(*card.CardConfig) (string, error)) (editResult, error) {
	var res editResult

	dash, raw, err := readCardFile(path, create)
	if err != nil {
		return res, err
	}
	res.before = raw

	v, err := pickView(dash, view)
	if err != nil {
		return res, err
	}
	msg, err := edit(&v.Card)
	if err != nil {
		return res, err
	}
	if err := card.Normalize(&v.Card); err != nil {
		return res, err
	}

	out, err := config.Marshal(dash, config.FormatFor(path))
	if err != nil {
		return res, err
	}
	res.message = msg
	res.after = string(out)
	res.rows = len(v.Card.Items)

	if dryRun {
		return res, nil
	}
	return res, config.Save(path, dash)
}

// readCardFile returns the dashboard in path and its raw text.
func readCardFile(path string, create bool) (*card.Dashboard, string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && create {
		return &card.Dashboard{Views: []card.View{{
			Path: "/",
			Card: card.CardConfig{Type: card.CardType},
		}}}, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read card file: %w", err)
	}
	dash, err := config.Parse(raw, config.FormatFor(path))
	if err != nil {
		return nil, "", err
	}
	return dash, string(raw), nil
}

func pickView(d *card.Dashboard, path string) (*card.View, error) {
	if path == "" {
		if len(d.Views) == 0 {
			return nil, errors.New("card file has no views")
		}
		return &d.Views[0], nil
	}
	v, ok := d.Lookup(path)
	if !ok {
		paths := make([]string, 0, len(d.Views))
		for _, v := range d.Views {
			paths = append(paths, v.Path)
		}
		return nil, fmt.Errorf("no view %s (have %s)", path, strings.Join(paths, ", "))
	}
	return v, nil
}

func editTips(err error) []string {
	if card.IsConfigError(err) {
		return []string{
			"Entity ids look like light.kitchen or switch.fan",
			"Font sizes are CSS lengths such as 18px or 1.2em",
			"Run 'lightstack show' to list rows and their indexes",
		}
	}
	return nil
}
