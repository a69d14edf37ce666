package export

import (
	"fmt"
	"path/filepath"

	"github.com/Faultbox/glbforge/pkg/gltf"
)

// blobEntry is one payload scheduled for the shared binary buffer.
// view is the buffer view whose byteOffset gets patched once the
// layout is final, or -1 for alignment padding that no view addresses.
type blobEntry struct {
	data []byte
	view int
}

// Resource is a named payload published next to the document instead
// of inside it.
type Resource struct {
	Name string
	Data []byte
}

// uriAllocator hands out published names within one resource category.
type uriAllocator struct {
	base   string
	single bool
	next   int
}

func newURIAllocator(base string, single bool) *uriAllocator {
	return &uriAllocator{base: base, single: single, next: 1}
}

// nameFor returns declared verbatim when non-empty. Generated names
// are base.ext when the category holds a single resource, otherwise
// base_N.ext with N counting up from one per generated name.
func (a *uriAllocator) nameFor(declared, ext string) string {
	if declared != "" {
		return declared
	}
	if a.single {
		return fmt.Sprintf("%s.%s", a.base, ext)
	}
	n := a.next
	a.next++
	return fmt.Sprintf("%s_%d.%s", a.base, n, ext)
}

// embed schedules payload for the shared buffer and returns the index
// of a buffer view addressing it. The view's byteOffset stays zero
// until Finalize computes the layout; target may be zero for payloads
// with no GPU upload hint.
func (s *Session) embed(payload []byte, target int) int {
	view := len(s.doc.BufferViews)
	s.doc.BufferViews = append(s.doc.BufferViews, &gltf.BufferView{
		Buffer:     0,
		ByteLength: len(payload),
		Target:     target,
	})
	s.blobs = append(s.blobs, blobEntry{data: payload, view: view})
	s.blobSize += len(payload)
	return view
}

// pad schedules zero bytes so the next embedded payload starts on a
// multiple of align. The padding belongs to no view and never changes
// any view's byteLength.
func (s *Session) pad(align int) {
	rem := s.blobSize % align
	if rem == 0 {
		return
	}
	pad := make([]byte, align-rem)
	s.blobs = append(s.blobs, blobEntry{data: pad, view: -1})
	s.blobSize += len(pad)
}

// storeExternal publishes payload under name. Names share one
// namespace across categories and each may be claimed once.
func (s *Session) storeExternal(name string, payload []byte) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrUnsafeName)
	}
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return fmt.Errorf("%w: %q", ErrUnsafeName, name)
	}
	if _, taken := s.resNames[name]; taken {
		return fmt.Errorf("%w: %q", ErrNameConflict, name)
	}
	s.resNames[name] = struct{}{}
	s.resources = append(s.resources, Resource{Name: name, Data: payload})
	return nil
}
