package main

import (
	"github.com/hexbee-net/colfile"
	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/metadata"
	"github.com/hexbee-net/colfile/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type fileInfo struct {
	FileID    string            `yaml:"file_id,omitempty"`
	CreatedBy string            `yaml:"created_by"`
	Version   int32             `yaml:"version"`
	NumRows   int64             `yaml:"num_rows"`
	Schema    []columnInfo      `yaml:"schema"`
	Metadata  map[string]string `yaml:"metadata,omitempty"`
	RowGroups []rowGroupInfo    `yaml:"row_groups,omitempty"`
}

type columnInfo struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Unit     string `yaml:"unit,omitempty"`
	Nullable bool   `yaml:"nullable"`
}

type rowGroupInfo struct {
	NumRows int64       `yaml:"num_rows"`
	Offset  int64       `yaml:"offset"`
	Size    int64       `yaml:"size"`
	Columns []chunkInfo `yaml:"columns"`
}

type chunkInfo struct {
	Name             string   `yaml:"name"`
	Offset           int64    `yaml:"offset"`
	CompressedSize   int64    `yaml:"compressed_size"`
	UncompressedSize int64    `yaml:"uncompressed_size"`
	Codec            string   `yaml:"codec"`
	Encodings        []string `yaml:"encodings"`
	Pages            int      `yaml:"pages"`
	NullCount        int64    `yaml:"null_count"`
	DistinctCount    int64    `yaml:"distinct_count"`
	Min              string   `yaml:"min,omitempty"`
	Max              string   `yaml:"max,omitempty"`
}

func newInspectCmd() *cobra.Command {
	var withRowGroups bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Print the footer of a file as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openFile(cmd, args[0])
			if err != nil {
				return err
			}

			defer func() { _ = r.Close() }()

			info := describe(r, withRowGroups)

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)

			if err := enc.Encode(info); err != nil {
				return err
			}

			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&withRowGroups, "row-groups", true, "describe the row groups and their column chunks")

	return cmd
}

func describe(r *colfile.FileReader, withRowGroups bool) *fileInfo {
	meta := r.Footer()
	kv := r.Metadata()

	info := &fileInfo{
		FileID:    kv[metadata.FileIDKey],
		CreatedBy: meta.CreatedBy,
		Version:   meta.Version,
		NumRows:   meta.NumRows,
	}

	delete(kv, metadata.FileIDKey)

	if len(kv) > 0 {
		info.Metadata = kv
	}

	s := r.Schema()

	for _, col := range s.Columns() {
		ci := columnInfo{
			Name:     col.Name(),
			Type:     col.LogicalType().String(),
			Nullable: col.Nullable(),
		}

		if col.LogicalType() == format.LogicalType_TIMESTAMP {
			ci.Unit = col.TimeUnit().String()
		}

		info.Schema = append(info.Schema, ci)
	}

	if !withRowGroups {
		return info
	}

	for _, rg := range meta.RowGroups {
		rgi := rowGroupInfo{
			NumRows: rg.NumRows,
			Offset:  rg.FileOffset,
		}

		for i, chunk := range rg.Columns {
			rgi.Size += chunk.TotalCompressedSize
			rgi.Columns = append(rgi.Columns, describeChunk(s.Column(i), chunk))
		}

		info.RowGroups = append(info.RowGroups, rgi)
	}

	return info
}

func describeChunk(col *schema.Column, chunk *format.ColumnChunk) chunkInfo {
	ci := chunkInfo{
		Name:             col.Name(),
		Offset:           chunk.FileOffset,
		CompressedSize:   chunk.TotalCompressedSize,
		UncompressedSize: chunk.TotalUncompressedSize,
		Codec:            chunk.Codec.String(),
		Encodings:        encodingNames(chunk.Encodings),
		Pages:            len(chunk.Pages),
	}

	if st := chunk.Statistics; st != nil {
		ci.NullCount = st.NullCount
		ci.DistinctCount = st.DistinctCount
		ci.Min = formatStat(col, st.Min)
		ci.Max = formatStat(col, st.Max)
	}

	return ci
}
