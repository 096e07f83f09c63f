package compression

import (
	"bytes"
	"io"
)

// initialCap bounds the first allocation made for a block declared to inflate
// to size bytes. The declared size comes from the file and is not trusted.
func initialCap(block []byte, size int) int {
	return min(size, 4*len(block)+64)
}

// readLimited drains r but never reads more than size+1 bytes, enough for the
// caller to notice an oversized output.
func readLimited(r io.Reader, block []byte, size int) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, initialCap(block, size)))

	if _, err := io.Copy(buf, io.LimitReader(r, int64(size)+1)); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
