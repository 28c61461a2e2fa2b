package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/listabob/internal/core"
)

var (
	importName        string
	importDescription string
	importNoHeader    bool
	importTypes       map[string]string
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Create a list from a CSV file using the inferred column types",
	Long: `Import previews the file, keeps every guessed column type, and
creates a list holding all rows. Cells that do not parse as their column
type are kept as text. Use --type to override a guess.

Example:
  listctl import books.csv --name "Reading list"
  listctl import stock.csv --type Price=currency --type Tags=multiple_choice`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "list name (default: file name)")
	importCmd.Flags().StringVar(&importDescription, "description", "", "list description")
	importCmd.Flags().BoolVar(&importNoHeader, "no-header", false, "treat the first row as data")
	importCmd.Flags().StringToStringVar(&importTypes, "type", nil, "column type override as NAME=TYPE (repeatable)")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return errors.New("only csv files are accepted")
	}

	data, err := readCSV(path)
	if err != nil {
		return err
	}
	if err := newService(cmd, true); err != nil {
		return err
	}

	hasHeader := !importNoHeader
	p, err := service.PreviewCSV(cmd.Context(), data, hasHeader)
	if err != nil {
		return err
	}
	_, rows, err := core.CSVRows(data, hasHeader)
	if err != nil {
		return err
	}

	name := importName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	req := &core.MaterializeRequest{
		ListName:        name,
		ListDescription: importDescription,
		HasHeaderRow:    hasHeader,
		Data:            rows,
	}
	for _, c := range p.Columns {
		req.Columns = append(req.Columns, core.ImportColumn{Name: c.Name, Type: c.GuessedType})
	}
	if err := applyTypeOverrides(req.Columns, importTypes); err != nil {
		return err
	}

	res, err := service.MaterializeCSV(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("import: %s", core.FormatUserError(err))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created list %s (%s): %d columns, %d rows\n",
		res.Name, res.ListID, res.ColumnsCreated, res.RowsCreated)
	if res.Fallbacks > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d cells did not match their column type and were kept as text\n", res.Fallbacks)
	}
	return nil
}

// applyTypeOverrides replaces guessed types with the ones named on the
// command line. Every override must name an existing column and a
// registered type.
func applyTypeOverrides(cols []core.ImportColumn, overrides map[string]string) error {
	index := make(map[string]int, len(cols))
	for i, c := range cols {
		index[c.Name] = i
	}
	for name, typ := range overrides {
		i, ok := index[name]
		if !ok {
			return fmt.Errorf("--type %s: no such column", name)
		}
		t, err := core.ParseColumnType(typ)
		if err != nil {
			return fmt.Errorf("--type %s: %w", name, err)
		}
		cols[i].Type = t
	}
	return nil
}
