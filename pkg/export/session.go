// Package export serializes scene graphs into glTF 2.0 documents.
//
// A Session accumulates definitions while the graph is walked: scene
// objects are assigned indices by identity, sampler and texture
// definitions are interned by content, and binary payloads are routed
// either into one shared buffer or into named external resources.
// Finalize resolves the deferred buffer layout, validates every cross
// reference and seals the session. Sessions are single threaded.
package export

import (
	"fmt"

	"github.com/Faultbox/glbforge/pkg/gltf"
)

// Default names used when Options leaves them empty.
const (
	DefaultGenerator  = "glbforge"
	DefaultImageBase  = "image"
	DefaultBufferBase = "buffer"
)

// Options configures a session. The zero value exports a binary-buffer
// document with embedded images under generated default names.
type Options struct {
	// Generator and Copyright fill the asset metadata.
	Generator string
	Copyright string

	// Binary targets the GLB container: the shared buffer stays
	// embedded and receives no URI. When false the buffer is published
	// as an external resource named from BufferBase.
	Binary bool

	// EmbedImages routes image payloads into the shared buffer instead
	// of external resources. Embedded payloads must be PNG or JPEG.
	EmbedImages bool

	// ImageBase is the stem for generated external image names.
	ImageBase string

	// SingleImage switches generated image names from the numbered
	// base_N.ext form to the bare base.ext form. Exporting more than
	// one generated-name image in this mode is a name conflict.
	SingleImage bool

	// BufferBase is the stem for the external buffer name.
	BufferBase string
}

func (o *Options) setDefaults() {
	if o.Generator == "" {
		o.Generator = DefaultGenerator
	}
	if o.ImageBase == "" {
		o.ImageBase = DefaultImageBase
	}
	if o.BufferBase == "" {
		o.BufferBase = DefaultBufferBase
	}
}

// Session builds one document. Create it with NewSession, feed it
// scenes with AddScene, then call Finalize exactly once.
type Session struct {
	doc  *gltf.Document
	opts Options

	registry *indexRegistry
	samplers *internTable
	textures *internTable

	blobs    []blobEntry
	blobSize int

	resources []Resource
	resNames  map[string]struct{}

	imageURIs  *uriAllocator
	bufferURIs *uriAllocator

	pendingSkins []pendingSkin

	finalized bool
}

// NewSession returns an empty session configured by opts.
func NewSession(opts Options) *Session {
	opts.setDefaults()
	doc := gltf.NewDocument()
	doc.Asset.Generator = opts.Generator
	doc.Asset.Copyright = opts.Copyright
	return &Session{
		doc:        doc,
		opts:       opts,
		registry:   newIndexRegistry(),
		samplers:   newInternTable(),
		textures:   newInternTable(),
		resNames:   make(map[string]struct{}),
		imageURIs:  newURIAllocator(opts.ImageBase, opts.SingleImage),
		bufferURIs: newURIAllocator(opts.BufferBase, true),
	}
}

// Document exposes the document under construction. Mutating it is
// allowed until Finalize; definitions appended by hand must keep their
// cross references valid or Finalize will reject the document.
func (s *Session) Document() *gltf.Document {
	return s.doc
}

// Result is a finalized document with its payloads.
type Result struct {
	// Doc is the completed document.
	Doc *gltf.Document

	// Blob is the shared buffer: every embedded payload concatenated in
	// insertion order. Empty when nothing was embedded.
	Blob []byte

	// Resources are the external payloads in insertion order. In
	// non-binary sessions the shared buffer appears here too, last.
	Resources []Resource
}

// Finalize computes the shared buffer layout, patches every pending
// byteOffset, attaches the buffer definition and validates the
// document. It succeeds or fails exactly once; the session rejects all
// calls afterwards.
func (s *Session) Finalize() (*Result, error) {
	if s.finalized {
		return nil, ErrSessionFinalized
	}
	s.finalized = true

	blob := make([]byte, 0, s.blobSize)
	for _, b := range s.blobs {
		if b.view >= 0 {
			s.doc.BufferViews[b.view].ByteOffset = len(blob)
		}
		blob = append(blob, b.data...)
	}

	if len(blob) > 0 {
		buf := &gltf.Buffer{ByteLength: len(blob)}
		if !s.opts.Binary {
			name := s.bufferURIs.nameFor("", "bin")
			if err := s.storeExternal(name, blob); err != nil {
				return nil, err
			}
			buf.URI = name
		}
		s.doc.Buffers = append(s.doc.Buffers, buf)
	}

	if err := gltf.Validate(s.doc); err != nil {
		return nil, fmt.Errorf("finalizing document: %w", err)
	}
	return &Result{Doc: s.doc, Blob: blob, Resources: s.resources}, nil
}
