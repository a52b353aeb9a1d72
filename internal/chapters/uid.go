package chapters

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/google/uuid"
)

// ErrUIDRange reports a base UID too large to allocate from.
var ErrUIDRange = errors.New("uid base is out of range")

const (
	uidStride = 100
	// maxRandomBase keeps random bases well inside the allocator's range.
	maxRandomBase = 1 << 40
)

// UIDAllocator hands out sequential UIDs starting at base*100, so a single
// edition gets base*100 and its chapters base*100+1, base*100+2 and so on.
type UIDAllocator struct {
	next uint64
}

// NewUIDAllocator starts allocation at base*100.
func NewUIDAllocator(base uint64) (*UIDAllocator, error) {
	if base == 0 || base > math.MaxUint64/uidStride-uidStride {
		return nil, ErrUIDRange
	}
	return &UIDAllocator{next: base * uidStride}, nil
}

// Next returns the next unused UID.
func (a *UIDAllocator) Next() uint64 {
	uid := a.next
	a.next++
	return uid
}

// RandomUIDBase derives a non-zero base from a random UUID.
func RandomUIDBase() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[8:])%maxRandomBase + 1
}

// assignUIDs numbers every edition and chapter of doc in document order.
func assignUIDs(doc *Document, base uint64) error {
	alloc, err := NewUIDAllocator(base)
	if err != nil {
		return err
	}
	for i := range doc.Editions {
		ed := &doc.Editions[i]
		ed.UID = alloc.Next()
		for j := range ed.Chapters {
			ed.Chapters[j].UID = alloc.Next()
		}
	}
	return nil
}
