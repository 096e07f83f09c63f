package main

import (
	"context"

	"github.com/hexbee-net/colfile"
	"github.com/hexbee-net/colfile/gologger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func execute(args []string) int {
	logger := gologger.NewLogger()
	ctx := logger.WithContext(context.Background())

	cmd := newRootCmd()
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("command failed")

		return 1
	}

	return 0
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "colfile",
		Short:         "Inspect, print and rewrite column files",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `Files are given as local paths or storage URIs:

  /data/events.clf, file:///data/events.clf
  s3://bucket/events.clf
  gs://bucket/events.clf
  hdfs://namenode:8020/data/events.clf
  https://example.com/events.clf          (read only)
  azblob+https://account.blob.core.windows.net/container/events.clf`,
	}

	cmd.PersistentFlags().Int("parallelism", 0, "maximum number of column chunks processed at once (0 = one per CPU)")
	cmd.PersistentFlags().Int64("max-pages", colfile.DefaultMaxInFlightPages, "maximum number of pages held in memory while reading")

	cmd.AddCommand(
		newInspectCmd(),
		newCatCmd(),
		newRewriteCmd(),
	)

	return cmd
}

// readerConfig returns the reader settings of the persistent flags.
func readerConfig(cmd *cobra.Command) colfile.Config {
	cfg := colfile.DefaultConfig()
	cfg.Parallelism, _ = cmd.Flags().GetInt("parallelism")
	cfg.MaxInFlightPages, _ = cmd.Flags().GetInt64("max-pages")
	cfg.Logger = zerolog.Ctx(cmd.Context())

	return cfg
}

// openFile opens the column file at uri.
func openFile(cmd *cobra.Command, uri string) (*colfile.FileReader, error) {
	src, err := openSource(cmd.Context(), uri)
	if err != nil {
		return nil, err
	}

	r, err := colfile.NewFileReader(src, readerConfig(cmd))
	if err != nil {
		_ = src.Close()

		return nil, err
	}

	return r, nil
}
