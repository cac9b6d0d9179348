package store

import (
	"os"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/outofforest/photon"

	"github.com/outofforest/noun/types"
)

const (
	segmentMagic   uint64 = 0x6e756f6e73656730
	segmentVersion uint64 = 1

	recordAlignment = 8
)

type segmentHeader struct {
	Magic   uint64
	Version uint64
	Used    uint64
}

type recordHeader struct {
	Mug    types.Mug
	Length uint64
}

var (
	segmentHeaderLength = uint64(unsafe.Sizeof(segmentHeader{}))
	recordHeaderLength  = uint64(unsafe.Sizeof(recordHeader{}))
)

type span struct {
	offset uint64
	length uint64
}

// NewFileStore creates new file-based store. The file is mapped whole; size
// is the capacity of the segment, not the amount of data in it. A fresh
// segment is initialised in place, an existing one is scanned to rebuild the
// mug index.
func NewFileStore(file *os.File, size uint64) (*FileStore, func(), error) {
	if size < segmentHeaderLength {
		return nil, nil, errors.Errorf("segment size %d is below the header length", size)
	}

	data, err := unix.Mmap(int(file.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "memory mapping failed")
	}

	s := &FileStore{
		file:   file,
		data:   data,
		header: photon.FromBytes[segmentHeader](data),
		index:  map[types.Mug]span{},
	}

	switch {
	case s.header.Magic == 0 && s.header.Used == 0:
		s.header.Magic = segmentMagic
		s.header.Version = segmentVersion
		s.header.Used = segmentHeaderLength
	case s.header.Magic != segmentMagic:
		_ = unix.Munmap(data)
		return nil, nil, errors.Errorf("not a noun segment")
	case s.header.Version != segmentVersion:
		_ = unix.Munmap(data)
		return nil, nil, errors.Errorf("unsupported segment version %d", s.header.Version)
	}

	if err := s.rebuildIndex(); err != nil {
		_ = unix.Munmap(data)
		return nil, nil, err
	}

	return s, func() {
		_ = unix.Munmap(data)
		_ = file.Close()
	}, nil
}

// FileStore is a content-addressed append segment of jammed nouns backed by a
// memory-mapped file.
type FileStore struct {
	file   *os.File
	data   []byte
	header *segmentHeader
	index  map[types.Mug]span
}

// Put appends the blob unless its mug is already present.
func (s *FileStore) Put(m types.Mug, blob []byte) error {
	if _, exists := s.index[m]; exists {
		return nil
	}

	needed := recordHeaderLength + alignRecord(uint64(len(blob)))
	if s.header.Used+needed > uint64(len(s.data)) {
		return errors.Errorf("segment is full: %d bytes needed, %d available",
			needed, uint64(len(s.data))-s.header.Used)
	}

	off := s.header.Used
	rh := recordHeader{
		Mug:    m,
		Length: uint64(len(blob)),
	}
	copy(s.data[off:], photon.NewFromValue(&rh).B)
	copy(s.data[off+recordHeaderLength:], blob)

	s.index[m] = span{offset: off + recordHeaderLength, length: uint64(len(blob))}
	s.header.Used = off + needed
	return nil
}

// Get returns a copy of the blob stored under the mug.
func (s *FileStore) Get(m types.Mug) ([]byte, bool, error) {
	sp, exists := s.index[m]
	if !exists {
		return nil, false, nil
	}
	blob := make([]byte, sp.length)
	copy(blob, s.data[sp.offset:])
	return blob, true, nil
}

// Sync syncs pending writes.
func (s *FileStore) Sync() error {
	if err := unix.Msync(s.data, unix.MS_SYNC); err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(s.file.Sync())
}

func (s *FileStore) rebuildIndex() error {
	if s.header.Used > uint64(len(s.data)) {
		return errors.Errorf("segment header claims %d used bytes of %d", s.header.Used, len(s.data))
	}
	for off := segmentHeaderLength; off < s.header.Used; {
		if off+recordHeaderLength > s.header.Used {
			return errors.Errorf("truncated record header at offset %d", off)
		}
		rh := photon.FromBytes[recordHeader](s.data[off:])
		if off+recordHeaderLength+rh.Length > s.header.Used {
			return errors.Errorf("truncated record at offset %d", off)
		}
		s.index[rh.Mug] = span{offset: off + recordHeaderLength, length: rh.Length}
		off += recordHeaderLength + alignRecord(rh.Length)
	}
	return nil
}

func alignRecord(length uint64) uint64 {
	return (length + recordAlignment - 1) &^ uint64(recordAlignment-1)
}
