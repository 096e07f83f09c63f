package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hexbee-net/colfile"
	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/colfile/table"
	"github.com/hexbee-net/errors"
	"github.com/stretchr/testify/require"
	"github.com/tj/assert"
	"gopkg.in/yaml.v3"
)

func writeTestFile(t *testing.T) string {
	t.Helper()

	s := schema.MustNew(
		schema.NewColumn("id", format.LogicalType_INT32, false),
		schema.NewColumn("name", format.LogicalType_STRING, true),
		schema.NewColumn("score", format.LogicalType_FLOAT64, true),
		schema.NewTimestampColumn("ts", format.TimeUnit_MILLIS, false),
	)

	ts := time.Date(2020, 10, 13, 15, 0, 0, 0, time.UTC)

	tbl, err := table.New(s,
		[]interface{}{int32(0), int32(1), int32(2), int32(3), int32(4), int32(5)},
		[]interface{}{"a", nil, "c", "d", nil, "f"},
		[]interface{}{0.5, 1.5, nil, 3.5, 4.5, 5.5},
		[]interface{}{ts, ts, ts, ts, ts.Add(time.Second), ts},
	)
	require.NoError(t, err)

	cfg := colfile.DefaultConfig()
	cfg.RowGroupRows = 4
	cfg.Metadata = map[string]string{"origin": "tests"}

	path := filepath.Join(t.TempDir(), "test.clf")

	w, err := colfile.Create(path, s, cfg)
	require.NoError(t, err)
	require.NoError(t, w.Write(context.Background(), tbl))
	require.NoError(t, w.Close())

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestCat(t *testing.T) {
	path := writeTestFile(t)

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name: "all",
			args: []string{"--header"},
			expected: "id\tname\tscore\tts\n" +
				"0\ta\t0.5\t2020-10-13T15:00:00Z\n" +
				"1\tNULL\t1.5\t2020-10-13T15:00:00Z\n" +
				"2\tc\tNULL\t2020-10-13T15:00:00Z\n" +
				"3\td\t3.5\t2020-10-13T15:00:00Z\n" +
				"4\tNULL\t4.5\t2020-10-13T15:00:01Z\n" +
				"5\tf\t5.5\t2020-10-13T15:00:00Z\n",
		},
		{
			name:     "columns and range",
			args:     []string{"--columns", "name,id", "--from", "3", "--to", "5"},
			expected: "3\td\n4\tNULL\n",
		},
		{
			name:     "from only",
			args:     []string{"-c", "id", "--from", "4"},
			expected: "4\n5\n",
		},
		{
			name:     "where",
			args:     []string{"-c", "id", "--where", "score > 3"},
			expected: "3\n4\n5\n",
		},
		{
			name:     "where null",
			args:     []string{"-c", "id", "--where", "name is null"},
			expected: "1\n4\n",
		},
		{
			name:     "where string",
			args:     []string{"-c", "id,name", "--where", "name = 'f'"},
			expected: "5\tf\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, append([]string{"cat", path}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out)
		})
	}
}

func TestCat_Errors(t *testing.T) {
	path := writeTestFile(t)

	_, err := run(t, "cat", path, "--columns", "missing")
	assert.Equal(t, colfile.ErrUnknownColumn, errors.Cause(err))

	_, err = run(t, "cat", path, "--from", "2", "--to", "10")
	assert.Equal(t, colfile.ErrRangeOutOfBounds, errors.Cause(err))

	_, err = run(t, "cat", path, "--where", "score")
	assert.Error(t, err)

	_, err = run(t, "cat", filepath.Join(t.TempDir(), "missing.clf"))
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	path := writeTestFile(t)

	out, err := run(t, "inspect", path)
	require.NoError(t, err)

	info := fileInfo{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &info))

	assert.NotEmpty(t, info.FileID)
	assert.Equal(t, int64(6), info.NumRows)
	assert.Equal(t, map[string]string{"origin": "tests"}, info.Metadata)
	assert.Equal(t, []columnInfo{
		{Name: "id", Type: "INT32", Nullable: false},
		{Name: "name", Type: "STRING", Nullable: true},
		{Name: "score", Type: "FLOAT64", Nullable: true},
		{Name: "ts", Type: "TIMESTAMP", Unit: "MILLIS", Nullable: false},
	}, info.Schema)

	require.Len(t, info.RowGroups, 2)
	assert.Equal(t, int64(4), info.RowGroups[0].NumRows)
	assert.Equal(t, int64(2), info.RowGroups[1].NumRows)

	id := info.RowGroups[1].Columns[0]
	assert.Equal(t, "id", id.Name)
	assert.Equal(t, "4", id.Min)
	assert.Equal(t, "5", id.Max)
	assert.Equal(t, "SNAPPY", id.Codec)

	name := info.RowGroups[0].Columns[1]
	assert.Equal(t, int64(1), name.NullCount)
	assert.Equal(t, "a", name.Min)
	assert.Equal(t, "d", name.Max)

	out, err = run(t, "inspect", path, "--row-groups=false")
	require.NoError(t, err)
	assert.NotContains(t, out, "row_groups")
}

func TestRewrite(t *testing.T) {
	path := writeTestFile(t)
	dir := t.TempDir()

	config := filepath.Join(dir, "layout.yaml")
	require.NoError(t, os.WriteFile(config, []byte("codec: zstd\nrow_group_rows: 2\nencoding: plain\n"), 0o600))

	target := filepath.Join(dir, "rewritten.clf")

	_, err := run(t, "rewrite", path, "file://"+target, "--config", config)
	require.NoError(t, err)

	orig, err := colfile.Open(path, colfile.DefaultConfig())
	require.NoError(t, err)

	defer func() { _ = orig.Close() }()

	rewritten, err := colfile.Open(target, colfile.DefaultConfig())
	require.NoError(t, err)

	defer func() { _ = rewritten.Close() }()

	assert.Equal(t, 3, rewritten.RowGroupCount())

	for _, rg := range rewritten.Footer().RowGroups {
		for _, chunk := range rg.Columns {
			assert.Equal(t, format.CompressionCodec_ZSTD, chunk.Codec)
			assert.Equal(t, []format.Encoding{format.Encoding_PLAIN}, chunk.Encodings)
		}
	}

	want, err := orig.ReadTable(context.Background(), colfile.ReadOptions{})
	require.NoError(t, err)

	got, err := rewritten.ReadTable(context.Background(), colfile.ReadOptions{})
	require.NoError(t, err)

	assert.True(t, got.Equal(want))
}

func TestRewrite_InvalidConfig(t *testing.T) {
	path := writeTestFile(t)
	target := filepath.Join(t.TempDir(), "rewritten.clf")

	_, err := run(t, "rewrite", path, target, "--codec", "rar")
	assert.Error(t, err)

	_, err = os.Stat(target)
	assert.True(t, os.IsNotExist(err))
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw    string
		scheme string
		host   string
		path   string
		user   string
	}{
		{raw: "/data/file.clf", scheme: "file", path: "/data/file.clf"},
		{raw: "relative/file.clf", scheme: "file", path: "relative/file.clf"},
		{raw: "file:///data/file.clf", scheme: "file", path: "/data/file.clf"},
		{raw: "s3://bucket/dir/file.clf", scheme: "s3", host: "bucket", path: "/dir/file.clf"},
		{raw: "gs://bucket/file.clf", scheme: "gs", host: "bucket", path: "/file.clf"},
		{raw: "hdfs://hadoop@namenode:8020/file.clf", scheme: "hdfs", host: "namenode:8020", path: "/file.clf", user: "hadoop"},
		{raw: "azblob+https://account.blob.core.windows.net/c/f.clf", scheme: "azblob+https", host: "account.blob.core.windows.net", path: "/c/f.clf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.raw, func(t *testing.T) {
			loc, err := parseLocation(tt.raw)
			require.NoError(t, err)

			assert.Equal(t, tt.scheme, loc.scheme)
			assert.Equal(t, tt.host, loc.host)
			assert.Equal(t, tt.path, loc.path)
			assert.Equal(t, tt.user, loc.user)
		})
	}

	_, err := createSink(context.Background(), "https://example.com/file.clf")
	assert.Equal(t, errUnsupportedScheme, errors.Cause(err))

	_, err = openSource(context.Background(), "ftp://example.com/file.clf")
	assert.Equal(t, errUnsupportedScheme, errors.Cause(err))
}
