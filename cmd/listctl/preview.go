package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var previewNoHeader bool

var previewCmd = &cobra.Command{
	Use:   "preview <file.csv>",
	Short: "Show the column types inferred for a CSV file",
	Long: `Preview parses the file and prints each column with its guessed type,
a few sample values, and the options found for choice columns.

Example:
  listctl preview books.csv
  listctl preview --no-header raw.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().BoolVar(&previewNoHeader, "no-header", false, "treat the first row as data")
}

func runPreview(cmd *cobra.Command, args []string) error {
	data, err := readCSV(args[0])
	if err != nil {
		return err
	}
	if err := newService(cmd, false); err != nil {
		return err
	}

	p, err := service.PreviewCSV(cmd.Context(), data, !previewNoHeader)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tSAMPLES\tOPTIONS")
	for _, c := range p.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.GuessedType,
			strings.Join(c.SampleValues, ", "), strings.Join(c.DistinctValues, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d data rows\n", p.TotalRows)
	return nil
}
