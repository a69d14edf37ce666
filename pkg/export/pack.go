package export

import (
	"encoding/binary"

	"github.com/chewxy/math32"
)

// Payload packers. All multi-byte values are little endian, matching
// both GLB chunks and glTF accessor semantics.

func packVec2(v [][2]float32) []byte {
	buf := make([]byte, 0, len(v)*8)
	for _, e := range v {
		for _, c := range e {
			buf = binary.LittleEndian.AppendUint32(buf, math32.Float32bits(c))
		}
	}
	return buf
}

func packVec3(v [][3]float32) []byte {
	buf := make([]byte, 0, len(v)*12)
	for _, e := range v {
		for _, c := range e {
			buf = binary.LittleEndian.AppendUint32(buf, math32.Float32bits(c))
		}
	}
	return buf
}

func packVec4(v [][4]float32) []byte {
	buf := make([]byte, 0, len(v)*16)
	for _, e := range v {
		for _, c := range e {
			buf = binary.LittleEndian.AppendUint32(buf, math32.Float32bits(c))
		}
	}
	return buf
}

func packVec4U8(v [][4]uint8) []byte {
	buf := make([]byte, 0, len(v)*4)
	for _, e := range v {
		buf = append(buf, e[0], e[1], e[2], e[3])
	}
	return buf
}

func packVec4U16(v [][4]uint16) []byte {
	buf := make([]byte, 0, len(v)*8)
	for _, e := range v {
		for _, c := range e {
			buf = binary.LittleEndian.AppendUint16(buf, c)
		}
	}
	return buf
}

func packMat4(v [][16]float32) []byte {
	buf := make([]byte, 0, len(v)*64)
	for _, e := range v {
		for _, c := range e {
			buf = binary.LittleEndian.AppendUint32(buf, math32.Float32bits(c))
		}
	}
	return buf
}

func packIndicesU16(v []uint32) []byte {
	buf := make([]byte, 0, len(v)*2)
	for _, ix := range v {
		buf = binary.LittleEndian.AppendUint16(buf, uint16(ix))
	}
	return buf
}

func packIndicesU32(v []uint32) []byte {
	buf := make([]byte, 0, len(v)*4)
	for _, ix := range v {
		buf = binary.LittleEndian.AppendUint32(buf, ix)
	}
	return buf
}

// vec3Bounds returns per-component minima and maxima, as required on
// position accessors.
func vec3Bounds(v [][3]float32) (min, max []float32) {
	min = []float32{math32.Inf(1), math32.Inf(1), math32.Inf(1)}
	max = []float32{math32.Inf(-1), math32.Inf(-1), math32.Inf(-1)}
	for _, e := range v {
		for i, c := range e {
			min[i] = math32.Min(min[i], c)
			max[i] = math32.Max(max[i], c)
		}
	}
	return min, max
}
