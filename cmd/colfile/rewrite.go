package main

import (
	"github.com/hexbee-net/colfile"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRewriteCmd() *cobra.Command {
	var (
		configPath string
		codec      string
		encoding   string
		rowGroup   int
	)

	cmd := &cobra.Command{
		Use:   "rewrite SOURCE TARGET",
		Short: "Write the content of a file to a new file with other settings",
		Example: `  colfile rewrite events.clf events-zstd.clf --codec zstd
  colfile rewrite s3://bucket/events.clf events.clf --config layout.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := colfile.DefaultConfig()

			if configPath != "" {
				var err error
				if cfg, err = colfile.LoadConfig(configPath); err != nil {
					return err
				}
			}

			if codec != "" {
				cfg.Codec = codec
			}

			if encoding != "" {
				cfg.Encoding = encoding
			}

			if rowGroup > 0 {
				cfg.RowGroupRows = rowGroup
			}

			if cmd.Flags().Changed("parallelism") {
				cfg.Parallelism, _ = cmd.Flags().GetInt("parallelism")
			}

			cfg.Logger = zerolog.Ctx(cmd.Context())

			if err := cfg.Validate(); err != nil {
				return err
			}

			r, err := openFile(cmd, args[0])
			if err != nil {
				return err
			}

			defer func() { _ = r.Close() }()

			t, err := r.ReadTable(cmd.Context(), colfile.ReadOptions{})
			if err != nil {
				return err
			}

			dst, err := createSink(cmd.Context(), args[1])
			if err != nil {
				return err
			}

			w, err := colfile.NewFileWriter(dst, r.Schema(), cfg)
			if err != nil {
				_ = dst.Close()

				return err
			}

			// A failed write leaves the target without footer.
			if err := w.Write(cmd.Context(), t); err != nil {
				_ = dst.Close()

				return err
			}

			if err := w.Close(); err != nil {
				return err
			}

			cfg.Logger.Info().
				Str("source", args[0]).
				Str("target", args[1]).
				Int64("rows", w.NumRows()).
				Msg("file rewritten")

			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML file holding the writer settings")
	cmd.Flags().StringVar(&codec, "codec", "", "compression codec: none, snappy, gzip, brotli, lz4 or zstd")
	cmd.Flags().StringVar(&encoding, "encoding", "", "value encoding: auto, plain or dictionary")
	cmd.Flags().IntVar(&rowGroup, "row-group-rows", 0, "maximum number of rows per row group")

	return cmd
}
