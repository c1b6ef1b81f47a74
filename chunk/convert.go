package chunk

import "math"

//The following helpers lay typed slices out as little endian payloads,
//and read them back.

func Uint8s(v []uint8) []byte {
	b := make([]byte, len(v))
	copy(b, v)
	return b
}

func Uint32s(v []uint32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		order.PutUint32(b[4*i:], x)
	}
	return b
}

func Int32s(v []int32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		order.PutUint32(b[4*i:], uint32(x))
	}
	return b
}

func Uint64s(v []uint64) []byte {
	b := make([]byte, 8*len(v))
	for i, x := range v {
		order.PutUint64(b[8*i:], x)
	}
	return b
}

func Float32s(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		order.PutUint32(b[4*i:], math.Float32bits(x))
	}
	return b
}

func AsUint32s(b []byte) []uint32 {
	v := make([]uint32, len(b)/4)
	for i := range v {
		v[i] = order.Uint32(b[4*i:])
	}
	return v
}

func AsInt32s(b []byte) []int32 {
	v := make([]int32, len(b)/4)
	for i := range v {
		v[i] = int32(order.Uint32(b[4*i:]))
	}
	return v
}

func AsUint64s(b []byte) []uint64 {
	v := make([]uint64, len(b)/8)
	for i := range v {
		v[i] = order.Uint64(b[8*i:])
	}
	return v
}

func AsFloat32s(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(order.Uint32(b[4*i:]))
	}
	return v
}
