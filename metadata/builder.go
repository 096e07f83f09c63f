// Package metadata assembles and parses the footer of column files.
package metadata

import (
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/hexbee-net/colfile/format"
	"github.com/hexbee-net/colfile/schema"
	"github.com/hexbee-net/errors"
)

const (
	// CreatedBy identifies the writer in the footer.
	CreatedBy = "colfile version 1.0.0"

	// FileIDKey is the footer metadata key holding the unique file id.
	FileIDKey = "colfile.file_id"

	// TrailerLen is the size of the footer length and the magic marker that
	// close a file.
	TrailerLen = int64(format.FooterLenSize + format.MagicLen)
)

const errFinished = errors.Error("footer already written")

// Builder collects the row groups of a file being written and owns its
// write offset. It is not safe for concurrent use.
type Builder struct {
	schema    *schema.Schema
	offset    int64
	numRows   int64
	rowGroups []*format.RowGroup
	kv        []*format.KeyValue
	fileID    string
	finished  bool
}

// NewBuilder returns a builder whose offset starts right after the file
// header.
func NewBuilder(s *schema.Schema) *Builder {
	id := uuid.New().String()

	return &Builder{
		schema: s,
		offset: int64(format.MagicLen),
		fileID: id,
		kv: []*format.KeyValue{
			{Key: FileIDKey, Value: id},
		},
	}
}

// FileID returns the unique id written in the footer.
func (b *Builder) FileID() string {
	return b.fileID
}

// Offset returns the position of the next byte to write.
func (b *Builder) Offset() int64 {
	return b.offset
}

// Reserve allocates n bytes and returns their offset.
func (b *Builder) Reserve(n int64) int64 {
	offset := b.offset
	b.offset += n

	return offset
}

// AddRowGroup appends a row group. Row groups are written in the footer in
// the order they are added.
func (b *Builder) AddRowGroup(rg *format.RowGroup) error {
	if b.finished {
		return errors.WithStack(errFinished)
	}

	if len(rg.Columns) != b.schema.Len() {
		return errors.WithFields(
			errors.New("row group column count does not match the schema"),
			errors.Fields{
				"expected": b.schema.Len(),
				"actual":   len(rg.Columns),
			})
	}

	b.rowGroups = append(b.rowGroups, rg)
	b.numRows += rg.NumRows

	return nil
}

// SetKeyValue adds or replaces a footer metadata entry.
func (b *Builder) SetKeyValue(key, value string) {
	for _, kv := range b.kv {
		if kv.Key == key {
			kv.Value = value

			return
		}
	}

	b.kv = append(b.kv, &format.KeyValue{Key: key, Value: value})
}

func (b *Builder) NumRows() int64 {
	return b.numRows
}

func (b *Builder) RowGroups() []*format.RowGroup {
	return b.rowGroups
}

// Metadata returns the footer structure as it would be written now.
func (b *Builder) Metadata() *format.FileMetaData {
	return &format.FileMetaData{
		Version:          format.Version,
		Schema:           b.schema.Elements(),
		NumRows:          b.numRows,
		RowGroups:        b.rowGroups,
		KeyValueMetadata: b.kv,
		CreatedBy:        CreatedBy,
	}
}

// Finish serializes the footer followed by its length and the trailing
// magic marker. It can only be called once.
func (b *Builder) Finish() ([]byte, error) {
	if b.finished {
		return nil, errors.WithStack(errFinished)
	}

	data, err := format.Marshal(b.Metadata())
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize the footer")
	}

	b.finished = true

	data = binary.LittleEndian.AppendUint32(data, uint32(len(data)))
	data = append(data, format.Magic...)

	b.offset += int64(len(data))

	return data, nil
}

// KeyValue returns the value of a footer metadata entry.
func KeyValue(meta *format.FileMetaData, key string) (string, bool) {
	for _, kv := range meta.KeyValueMetadata {
		if kv.Key == key {
			return kv.Value, true
		}
	}

	return "", false
}

// KeyValues returns the footer metadata entries as a map.
func KeyValues(meta *format.FileMetaData) map[string]string {
	ret := make(map[string]string, len(meta.KeyValueMetadata))
	for _, kv := range meta.KeyValueMetadata {
		ret[kv.Key] = kv.Value
	}

	return ret
}
