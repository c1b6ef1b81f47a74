package chunk

import (
	"bytes"
	"io"
	"testing"
)

func decodeAll(Te *testing.T, b []byte) (Header, []byte, uint64) {
	r := bytes.NewReader(b)
	fixed := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, fixed); err != nil {
		Te.Fatal(err)
	}
	h, err := DecodeHeader(fixed, r)
	if err != nil {
		Te.Fatal(err)
	}
	size, ok := h.PayloadSize()
	if !ok {
		Te.Fatal("payload size overflow")
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		Te.Fatal(err)
	}
	tail := make([]byte, ChecksumSize)
	if _, err := io.ReadFull(r, tail); err != nil {
		Te.Fatal(err)
	}
	if r.Len() != 0 {
		Te.Errorf("%d bytes left after the record", r.Len())
	}
	return h, data, order.Uint64(tail)
}

func TestEncodeDecode(Te *testing.T) {
	pos := []float32{0, 1.5, -2, 3, 4, 5.25}
	var buf bytes.Buffer
	in := Header{Name: "particles/position", Kind: Float32, Rows: 2, Cols: 3}
	sum, err := Encode(&buf, in, Float32s(pos))
	if err != nil {
		Te.Fatal(err)
	}
	if int64(buf.Len()) != in.RecordSize() {
		Te.Errorf("record is %d bytes, expected %d", buf.Len(), in.RecordSize())
	}
	h, data, stored := decodeAll(Te, buf.Bytes())
	if h != in {
		Te.Errorf("header %+v, expected %+v", h, in)
	}
	if stored != sum {
		Te.Errorf("stored checksum %x, Encode returned %x", stored, sum)
	}
	if err := Verify(h, data, stored); err != nil {
		Te.Error(err)
	}
	got := AsFloat32s(data)
	for i := range pos {
		if got[i] != pos[i] {
			Te.Errorf("element %d: %v != %v", i, got[i], pos[i])
		}
	}
}

func TestKinds(Te *testing.T) {
	cases := []struct {
		h    Header
		data []byte
	}{
		{Header{"configuration/step", Uint64, 1, 1}, Uint64s([]uint64{1 << 40})},
		{Header{"configuration/dimensions", Uint8, 1, 1}, Uint8s([]uint8{3})},
		{Header{"particles/N", Uint32, 1, 1}, Uint32s([]uint32{7})},
		{Header{"particles/image", Int32, 2, 3}, Int32s([]int32{-1, 0, 1, 2, -3, 4})},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if _, err := Encode(&buf, c.h, c.data); err != nil {
			Te.Fatal(err)
		}
		h, data, _ := decodeAll(Te, buf.Bytes())
		if h != c.h || !bytes.Equal(data, c.data) {
			Te.Errorf("%s did not survive the round trip", c.h.Name)
		}
	}
	img := AsInt32s(Int32s([]int32{-1, 2}))
	if img[0] != -1 || img[1] != 2 {
		Te.Errorf("int32 conversion broken: %v", img)
	}
	if AsUint64s(Uint64s([]uint64{42}))[0] != 42 || AsUint32s(Uint32s([]uint32{9}))[0] != 9 {
		Te.Error("unsigned conversion broken")
	}
}

func TestShapeMismatch(Te *testing.T) {
	var buf bytes.Buffer
	_, err := Encode(&buf, Header{"particles/mass", Float32, 3, 1}, Float32s([]float32{1, 2}))
	if err == nil {
		Te.Fatal("expected an error for a short payload")
	}
	if buf.Len() != 0 {
		Te.Errorf("%d bytes written for a rejected chunk", buf.Len())
	}
	if _, err := Encode(&buf, Header{"", Float32, 1, 1}, Float32s([]float32{1})); err == nil {
		Te.Error("expected an error for an empty name")
	}
	if _, err := Encode(&buf, Header{"x", Kind(2), 1, 1}, []byte{0, 0}); err == nil {
		Te.Error("expected an error for an unsupported kind")
	}
}

func TestVerifyDetectsDamage(Te *testing.T) {
	var buf bytes.Buffer
	if _, err := Encode(&buf, Header{"particles/charge", Float32, 2, 1}, Float32s([]float32{1, -1})); err != nil {
		Te.Fatal(err)
	}
	h, data, sum := decodeAll(Te, buf.Bytes())
	data[0] ^= 0xff
	if err := Verify(h, data, sum); err == nil {
		Te.Error("damaged payload passed verification")
	}
}
