package encoding

import "math/bits"

// Values are packed 8 at a time, least significant bit first, so a group of 8
// values at bit-width bw always takes exactly bw bytes.

type pack8int32Func func([8]int32) []byte

type unpack8int32Func func([]byte) [8]int32

type pack8int64Func func([8]int64) []byte

type unpack8int64Func func([]byte) [8]int64

var (
	pack8Int32FuncByWidth   [MaxBitWidth32 + 1]pack8int32Func
	unpack8Int32FuncByWidth [MaxBitWidth32 + 1]unpack8int32Func
	pack8Int64FuncByWidth   [MaxBitWidth64 + 1]pack8int64Func
	unpack8Int64FuncByWidth [MaxBitWidth64 + 1]unpack8int64Func
)

func init() {
	for bw := 0; bw <= MaxBitWidth32; bw++ {
		pack8Int32FuncByWidth[bw] = pack8Int32(bw)
		unpack8Int32FuncByWidth[bw] = unpack8Int32(bw)
	}

	for bw := 0; bw <= MaxBitWidth64; bw++ {
		pack8Int64FuncByWidth[bw] = pack8Int64(bw)
		unpack8Int64FuncByWidth[bw] = unpack8Int64(bw)
	}
}

func pack8Int32(bw int) pack8int32Func {
	return func(data [8]int32) []byte {
		var in [8]uint64
		for i := range data {
			in[i] = uint64(uint32(data[i]))
		}

		return packBits(in, bw)
	}
}

func unpack8Int32(bw int) unpack8int32Func {
	return func(data []byte) [8]int32 {
		var out [8]int32

		for i, v := range unpackBits(data, bw) {
			out[i] = int32(uint32(v))
		}

		return out
	}
}

func pack8Int64(bw int) pack8int64Func {
	return func(data [8]int64) []byte {
		var in [8]uint64
		for i := range data {
			in[i] = uint64(data[i])
		}

		return packBits(in, bw)
	}
}

func unpack8Int64(bw int) unpack8int64Func {
	return func(data []byte) [8]int64 {
		var out [8]int64

		for i, v := range unpackBits(data, bw) {
			out[i] = int64(v)
		}

		return out
	}
}

func packBits(data [8]uint64, bw int) []byte {
	out := make([]byte, bw)
	if bw == 0 {
		return out
	}

	pos := 0

	for _, v := range data {
		if bw < 64 {
			v &= 1<<uint(bw) - 1
		}

		for v != 0 {
			b := bits.TrailingZeros64(v)
			bit := pos + b
			out[bit/8] |= 1 << uint(bit%8)
			v &= v - 1
		}

		pos += bw
	}

	return out
}

func unpackBits(data []byte, bw int) [8]uint64 {
	var out [8]uint64
	if bw == 0 {
		return out
	}

	for i := range out {
		var v uint64

		start := i * bw
		for b := 0; b < bw; b++ {
			bit := start + b
			if data[bit/8]&(1<<uint(bit%8)) != 0 {
				v |= 1 << uint(b)
			}
		}

		out[i] = v
	}

	return out
}
