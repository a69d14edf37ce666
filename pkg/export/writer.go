package export

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/Faultbox/glbforge/pkg/gltf"
)

// Container mismatch errors.
var (
	ErrWantBinary   = errors.New("result was finalized for the GLB container")
	ErrWantExternal = errors.New("result was finalized for external buffers")
)

type glbHeader struct {
	Magic   uint32
	Version uint32
	Length  uint32
}

type glbChunkHeader struct {
	Length uint32
	Type   uint32
}

// EncodeDocument renders the document as compact JSON, the form GLB
// chunks carry.
func EncodeDocument(doc *gltf.Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return data, nil
}

// WriteGLB writes the GLB container to w: header, JSON chunk padded
// with spaces, and, when the result embeds payloads, one BIN chunk
// padded with zeros. External resources are not written; use
// WriteGLBFile when the result carries any.
func WriteGLB(w io.Writer, res *Result) error {
	if len(res.Doc.Buffers) > 0 && res.Doc.Buffers[0].URI != "" {
		return ErrWantExternal
	}
	jsonData, err := EncodeDocument(res.Doc)
	if err != nil {
		return err
	}

	jsonPad := padding(len(jsonData))
	total := 12 + 8 + len(jsonData) + jsonPad
	hasBin := len(res.Blob) > 0
	binPad := 0
	if hasBin {
		binPad = padding(len(res.Blob))
		total += 8 + len(res.Blob) + binPad
	}
	if total > math.MaxUint32 {
		return fmt.Errorf("document size %d exceeds the GLB limit", total)
	}

	le := binary.LittleEndian
	if err := binary.Write(w, le, glbHeader{Magic: gltf.GLBMagic, Version: gltf.GLBVersion, Length: uint32(total)}); err != nil {
		return fmt.Errorf("writing GLB header: %w", err)
	}
	if err := binary.Write(w, le, glbChunkHeader{Length: uint32(len(jsonData) + jsonPad), Type: gltf.GLBChunkJSON}); err != nil {
		return fmt.Errorf("writing JSON chunk header: %w", err)
	}
	if _, err := w.Write(jsonData); err != nil {
		return fmt.Errorf("writing JSON chunk: %w", err)
	}
	if _, err := w.Write(bytes.Repeat([]byte{' '}, jsonPad)); err != nil {
		return fmt.Errorf("writing JSON chunk: %w", err)
	}
	if hasBin {
		if err := binary.Write(w, le, glbChunkHeader{Length: uint32(len(res.Blob) + binPad), Type: gltf.GLBChunkBIN}); err != nil {
			return fmt.Errorf("writing BIN chunk header: %w", err)
		}
		if _, err := w.Write(res.Blob); err != nil {
			return fmt.Errorf("writing BIN chunk: %w", err)
		}
		if _, err := w.Write(make([]byte, binPad)); err != nil {
			return fmt.Errorf("writing BIN chunk: %w", err)
		}
	}
	return nil
}

// WriteGLBFile writes the GLB container to path and every external
// resource next to it.
func WriteGLBFile(path string, res *Result) error {
	var buf bytes.Buffer
	if err := WriteGLB(&buf, res); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return writeResources(dir, res.Resources)
}

// WriteGLTF writes name.gltf into dir, indented for reading, plus
// every external resource. Results finalized for the GLB container are
// rejected: their buffer has no URI for the document to reference.
func WriteGLTF(dir, name string, res *Result) error {
	if len(res.Blob) > 0 && (len(res.Doc.Buffers) == 0 || res.Doc.Buffers[0].URI == "") {
		return ErrWantBinary
	}
	if name == "" || !filepath.IsLocal(name+".gltf") {
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	data, err := json.MarshalIndent(res.Doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, name+".gltf")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return writeResources(dir, res.Resources)
}

func writeResources(dir string, resources []Resource) error {
	for _, r := range resources {
		target := filepath.Join(dir, filepath.FromSlash(r.Name))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", r.Name, err)
		}
		if err := os.WriteFile(target, r.Data, 0644); err != nil {
			return fmt.Errorf("writing resource %s: %w", r.Name, err)
		}
	}
	return nil
}

// padding returns the byte count that rounds n up to a multiple of four.
func padding(n int) int {
	return (4 - n%4) % 4
}
