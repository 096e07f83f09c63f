package format

import (
	"bytes"
	"context"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/hexbee-net/errors"
)

type thriftReader interface {
	Read(ctx context.Context, p thrift.TProtocol) error
}

type thriftWriter interface {
	Write(ctx context.Context, p thrift.TProtocol) error
}

// Marshal serializes v with the thrift compact protocol.
func Marshal(v thriftWriter) ([]byte, error) {
	ctx := context.Background()

	buf := thrift.NewTMemoryBuffer()
	proto := thrift.NewTCompactProtocolConf(buf, &thrift.TConfiguration{})

	if err := v.Write(ctx, proto); err != nil {
		return nil, errors.Wrap(err, "failed to write thrift structure")
	}

	if err := proto.Flush(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to flush thrift structure")
	}

	return buf.Bytes(), nil
}

// Unmarshal reads v from the beginning of data and returns the number of
// bytes it consumed. Trailing bytes are left untouched.
func Unmarshal(data []byte, v thriftReader) (int, error) {
	// The memory buffer is not buffered ahead, the remaining length is exactly
	// what the protocol did not consume.
	buf := &thrift.TMemoryBuffer{Buffer: bytes.NewBuffer(data)}
	proto := thrift.NewTCompactProtocolConf(buf, &thrift.TConfiguration{})

	if err := v.Read(context.Background(), proto); err != nil {
		return 0, errors.Wrap(err, "failed to read thrift structure")
	}

	return len(data) - buf.Len(), nil
}

// /////////////////////////////////////////////////////////////////////////////

type structWriter struct {
	ctx context.Context
	p   thrift.TProtocol
	err error
}

func newStructWriter(ctx context.Context, p thrift.TProtocol, name string) *structWriter {
	return &structWriter{
		ctx: ctx,
		p:   p,
		err: p.WriteStructBegin(ctx, name),
	}
}

func (w *structWriter) field(name string, typ thrift.TType, id int16, fn func() error) {
	if w.err != nil {
		return
	}

	if w.err = w.p.WriteFieldBegin(w.ctx, name, typ, id); w.err != nil {
		return
	}

	if w.err = fn(); w.err != nil {
		return
	}

	w.err = w.p.WriteFieldEnd(w.ctx)
}

func (w *structWriter) bool(name string, id int16, v bool) {
	w.field(name, thrift.BOOL, id, func() error { return w.p.WriteBool(w.ctx, v) })
}

func (w *structWriter) i32(name string, id int16, v int32) {
	w.field(name, thrift.I32, id, func() error { return w.p.WriteI32(w.ctx, v) })
}

func (w *structWriter) i64(name string, id int16, v int64) {
	w.field(name, thrift.I64, id, func() error { return w.p.WriteI64(w.ctx, v) })
}

func (w *structWriter) string(name string, id int16, v string) {
	w.field(name, thrift.STRING, id, func() error { return w.p.WriteString(w.ctx, v) })
}

func (w *structWriter) binary(name string, id int16, v []byte) {
	w.field(name, thrift.STRING, id, func() error { return w.p.WriteBinary(w.ctx, v) })
}

func (w *structWriter) structure(name string, id int16, v thriftWriter) {
	w.field(name, thrift.STRUCT, id, func() error { return v.Write(w.ctx, w.p) })
}

func (w *structWriter) list(name string, id int16, elemType thrift.TType, size int, elem func(i int) error) {
	w.field(name, thrift.LIST, id, func() error {
		if err := w.p.WriteListBegin(w.ctx, elemType, size); err != nil {
			return err
		}

		for i := 0; i < size; i++ {
			if err := elem(i); err != nil {
				return err
			}
		}

		return w.p.WriteListEnd(w.ctx)
	})
}

func (w *structWriter) end() error {
	if w.err != nil {
		return w.err
	}

	if err := w.p.WriteFieldStop(w.ctx); err != nil {
		return err
	}

	return w.p.WriteStructEnd(w.ctx)
}

// /////////////////////////////////////////////////////////////////////////////

// readStruct walks the fields of a structure. fn returns false for the fields
// it does not know, which are then skipped.
func readStruct(ctx context.Context, p thrift.TProtocol, fn func(id int16, typ thrift.TType) (bool, error)) error {
	if _, err := p.ReadStructBegin(ctx); err != nil {
		return err
	}

	for {
		_, typ, id, err := p.ReadFieldBegin(ctx)
		if err != nil {
			return err
		}

		if typ == thrift.STOP {
			break
		}

		handled, err := fn(id, typ)
		if err != nil {
			return errors.WithFields(
				errors.Wrap(err, "failed to read field"),
				errors.Fields{
					"field-id": id,
				})
		}

		if !handled {
			if err := p.Skip(ctx, typ); err != nil {
				return err
			}
		}

		if err := p.ReadFieldEnd(ctx); err != nil {
			return err
		}
	}

	return p.ReadStructEnd(ctx)
}

func readList(ctx context.Context, p thrift.TProtocol, elem func() error) error {
	_, size, err := p.ReadListBegin(ctx)
	if err != nil {
		return err
	}

	if size < 0 {
		return errors.WithFields(
			errors.New("negative list size"),
			errors.Fields{
				"size": size,
			})
	}

	for i := 0; i < size; i++ {
		if err := elem(); err != nil {
			return err
		}
	}

	return p.ReadListEnd(ctx)
}
