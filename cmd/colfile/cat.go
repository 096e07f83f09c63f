package main

import (
	"bufio"
	"strings"

	"github.com/hexbee-net/colfile"
	"github.com/hexbee-net/colfile/stats"
	"github.com/spf13/cobra"
)

func newCatCmd() *cobra.Command {
	var (
		columns  []string
		from, to int64
		where    string
		header   bool
	)

	cmd := &cobra.Command{
		Use:   "cat FILE",
		Short: "Print rows as tab separated values",
		Example: `  colfile cat events.clf --columns id,name --from 100 --to 200
  colfile cat s3://bucket/events.clf --where 'id >= 1000'
  colfile cat events.clf --where 'name is null'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openFile(cmd, args[0])
			if err != nil {
				return err
			}

			defer func() { _ = r.Close() }()

			opts := colfile.ReadOptions{Columns: columns}

			if from != 0 || to >= 0 {
				rr := &colfile.RowRange{From: from, To: to}
				if to < 0 {
					rr.To = r.NumRows()
				}

				opts.RowRange = rr
			}

			if where != "" {
				if opts.Filter, err = stats.ParsePredicate(where); err != nil {
					return err
				}
			}

			t, err := r.ReadTable(cmd.Context(), opts)
			if err != nil {
				return err
			}

			w := bufio.NewWriter(cmd.OutOrStdout())

			if header {
				_, _ = w.WriteString(strings.Join(t.Schema().Names(), "\t") + "\n")
			}

			fields := make([]string, t.NumColumns())

			for i := 0; i < t.NumRows(); i++ {
				for c, v := range t.Row(i) {
					fields[c] = formatValue(v)
				}

				_, _ = w.WriteString(strings.Join(fields, "\t") + "\n")
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "columns to print, all by default")
	cmd.Flags().Int64Var(&from, "from", 0, "first row to print")
	cmd.Flags().Int64Var(&to, "to", -1, "row after the last row to print, the end of the file by default")
	cmd.Flags().StringVarP(&where, "where", "w", "", "only print the rows matching a predicate such as 'id >= 10'")
	cmd.Flags().BoolVar(&header, "header", false, "print the column names first")

	return cmd
}
