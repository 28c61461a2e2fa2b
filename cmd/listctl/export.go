package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	exportOutput   string
	exportNoHeader bool
)

var exportCmd = &cobra.Command{
	Use:   "export <list-id>",
	Short: "Write a list as CSV",
	Long: `Export writes the list's live items as CSV to stdout, or to the file
given with -o.

Example:
  listctl export 3f6c... -o books.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportNoHeader, "no-header", false, "omit the header row")
}

func runExport(cmd *cobra.Command, args []string) error {
	if err := newService(cmd, true); err != nil {
		return err
	}

	exp, err := service.ExportCSV(cmd.Context(), args[0], !exportNoHeader)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	_, err = exp.WriteTo(w)
	return err
}
