// Package store persists and serves the engine's three on-disk
// structures: the posting file (a flat, 64-byte-aligned blob of packed
// words, memory-mapped for zero-copy reads), and an embedded key/value
// store holding the token -> (offset, length) index, the common-tokens
// set, and the document store.
package store

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/edsrzf/mmap-go"
	"golang.org/x/sys/unix"

	"github.com/blazeq/phrasedex/roaringish"
)

const alignment = 64

// postingFile wraps the memory-mapped posting blob for read access.
type postingFile struct {
	f    *os.File
	data mmap.MMap
}

func openPostingFile(path string) (*postingFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: open posting file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("store: stat posting file: %w", err)
	}
	if info.Size() == 0 {
		// mmap-go refuses to map a zero-length file; an empty posting
		// file is valid for a freshly built, empty index.
		return &postingFile{f: f, data: nil}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("store: mmap posting file: %w", err)
	}
	if err := unix.Madvise(m, unix.MADV_SEQUENTIAL); err != nil {
		// Advisory only: a failing madvise never invalidates reads.
		_ = err
	}
	return &postingFile{f: f, data: m}, nil
}

func (p *postingFile) close() error {
	if p.data != nil {
		if err := p.data.Unmap(); err != nil {
			p.f.Close()
			return fmt.Errorf("store: unmap posting file: %w", err)
		}
	}
	return p.f.Close()
}

// slice returns a zero-copy view of the packed words stored at
// [begin, begin+length) bytes into the posting file. begin and length
// must both be multiples of 8 (one packed word); this is the "Internal:
// offset/bytes not divisible by 8" error case from the engine's error
// taxonomy.
func (p *postingFile) slice(begin, length uint64) (roaringish.List, error) {
	if length == 0 {
		return nil, nil
	}
	if begin%8 != 0 || length%8 != 0 {
		return nil, fmt.Errorf("%w: posting offset %d or length %d not a multiple of 8", ErrInternal, begin, length)
	}
	end := begin + length
	if end > uint64(len(p.data)) {
		return nil, fmt.Errorf("%w: posting range [%d:%d) exceeds file size %d", ErrInternal, begin, end, len(p.data))
	}
	raw := p.data[begin:end]
	words := length / 8
	return unsafe.Slice((*uint64)(unsafe.Pointer(&raw[0])), words), nil
}

// alignUp rounds n up to the next multiple of alignment, the padding
// every posting blob write must respect so later mmap reads stay
// 64-byte aligned.
func alignUp(n uint64) uint64 {
	rem := n % alignment
	if rem == 0 {
		return n
	}
	return n + (alignment - rem)
}
