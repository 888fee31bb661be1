// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rsrcfork

import (
	"errors"
	"fmt"
	"os"
	"sort"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/saferwall/rsrcfork/binary"
	"github.com/saferwall/rsrcfork/log"
)

// Errors
var (
	// ErrMalformedFork is returned when the fork layout fails a
	// structural check: unreasonable offsets, truncation, or
	// inconsistent sizes.
	ErrMalformedFork = errors.New("malformed resource fork")

	// ErrNotFound is returned when a lookup by type/id or type/name does
	// not match any resource.
	ErrNotFound = errors.New("no such resource")
)

// Resource is one typed, numbered, optionally named blob from a fork.
type Resource struct {
	Type  uint32
	ID    int16
	Flags uint16
	Name  string
	Data  []byte
}

// Options configures parsing.
type Options struct {

	// Directory holding system decompressor payloads, named
	// dcmp_<id>.bin / ncmp_<id>.bin. Empty means the environment or
	// built-in default.
	SystemDecompressorDir string

	// Decompression flags applied to every GetResource call in addition
	// to the per-call flags.
	DecompressionFlags uint64

	// A custom logger.
	Logger log.Logger
}

// File owns the resources parsed from one fork. Resources are keyed by
// the 48-bit value (type << 16) | (id & 0xFFFF); key order groups
// resources of the same type by ascending unsigned 16-bit id, so negative
// ids sort after positive ones.
type File struct {
	resources map[uint64]*Resource
	keys      []uint64 // sorted
	nameIndex map[string][]uint64

	data   mmap.MMap
	f      *os.File
	opts   *Options
	logger *log.Helper
}

func makeResourceKey(typ uint32, id int16) uint64 {
	return uint64(typ)<<16 | uint64(uint16(id))
}

func typeFromResourceKey(key uint64) uint32 {
	return uint32(key >> 16)
}

func idFromResourceKey(key uint64) int16 {
	return int16(key)
}

func newFile(opts *Options) *File {
	file := &File{
		resources: make(map[uint64]*Resource),
		nameIndex: make(map[string][]uint64),
	}
	if opts != nil {
		file.opts = opts
	} else {
		file.opts = &Options{}
	}
	var logger log.Logger
	if file.opts.Logger == nil {
		logger = log.NewStdLogger(os.Stdout)
		file.logger = log.NewHelper(log.NewFilter(logger,
			log.FilterLevel(log.LevelError)))
	} else {
		file.logger = log.NewHelper(file.opts.Logger)
	}
	return file
}

// New instantiates a file instance with options given a file name. The
// name may point directly at a resource fork exposed as a regular file,
// the <file>/..namedfork/rsrc path form included; that path shape is the
// OS's business, not ours.
func New(name string, opts *Options) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	// Memory map the file instead of using read/write.
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	file := newFile(opts)
	file.data = data
	file.f = f
	if err := file.parseStructure(data); err != nil {
		file.Close()
		return nil, err
	}
	return file, nil
}

// NewBytes instantiates a file instance with options given a memory
// buffer.
func NewBytes(data []byte, opts *Options) (*File, error) {
	file := newFile(opts)
	if err := file.parseStructure(data); err != nil {
		return nil, err
	}
	return file, nil
}

// NewResources wraps one or more pre-existing resources in a File.
func NewResources(opts *Options, ress ...Resource) *File {
	file := newFile(opts)
	for i := range ress {
		res := ress[i]
		file.insert(&res)
	}
	return file
}

// Close releases the underlying mapping, if any.
func (f *File) Close() error {
	var err error
	if f.data != nil {
		err = f.data.Unmap()
		f.data = nil
	}
	if f.f != nil {
		if cerr := f.f.Close(); err == nil {
			err = cerr
		}
		f.f = nil
	}
	return err
}

func (f *File) insert(res *Resource) {
	key := makeResourceKey(res.Type, res.ID)
	if _, exists := f.resources[key]; !exists {
		f.keys = append(f.keys, key)
		sort.Slice(f.keys, func(i, j int) bool { return f.keys[i] < f.keys[j] })
	}
	f.resources[key] = res
	if res.Name != "" {
		f.nameIndex[res.Name] = append(f.nameIndex[res.Name], key)
	}
}

// parseStructure walks the three-region fork layout: header, data
// segment, and map (type list, reference lists, name list). An empty
// input is a valid, empty fork.
func (f *File) parseStructure(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	r := binary.NewReader(data)

	dataOffset, err := r.PGetU32BE(0)
	if err != nil {
		return fmt.Errorf("%w: truncated header", ErrMalformedFork)
	}
	mapOffset, _ := r.PGetU32BE(4)
	if _, err := r.PGetU32BE(12); err != nil {
		return fmt.Errorf("%w: truncated header", ErrMalformedFork)
	}

	// 28-byte map header: 16 reserved bytes, handle, file ref num,
	// attributes, then the two list offsets.
	typeListRel, err := r.PGetU16BE(int(mapOffset) + 24)
	if err != nil {
		return fmt.Errorf("%w: map header out of range", ErrMalformedFork)
	}
	nameListRel, _ := r.PGetU16BE(int(mapOffset) + 26)

	typeListOffset := int(mapOffset) + int(typeListRel)
	numTypesRaw, err := r.PGetU16BE(typeListOffset)
	if err != nil {
		return fmt.Errorf("%w: type list out of range", ErrMalformedFork)
	}
	// Overflow is fine here: the raw value 0xFFFF legitimately means the
	// list is empty.
	numTypes := int(numTypesRaw) + 1
	if numTypesRaw == 0xFFFF {
		numTypes = 0
	}

	type typeEntry struct {
		typ           uint32
		count         int
		refListOffset int
	}
	var typeEntries []typeEntry
	for x := 0; x < numTypes; x++ {
		entryOffset := typeListOffset + 2 + x*8
		typ, err := r.PGetU32BE(entryOffset)
		if err != nil {
			return fmt.Errorf("%w: type entry out of range", ErrMalformedFork)
		}
		countMinusOne, _ := r.PGetU16BE(entryOffset + 4)
		refOffset, err := r.PGetU16BE(entryOffset + 6)
		if err != nil {
			return fmt.Errorf("%w: type entry out of range", ErrMalformedFork)
		}
		typeEntries = append(typeEntries, typeEntry{
			typ:           typ,
			count:         int(countMinusOne) + 1,
			refListOffset: int(refOffset),
		})
	}

	for _, te := range typeEntries {
		baseOffset := typeListOffset + te.refListOffset
		for x := 0; x < te.count; x++ {
			refOffset := baseOffset + x*12
			idU, err := r.PGetU16BE(refOffset)
			if err != nil {
				return fmt.Errorf("%w: reference entry out of range", ErrMalformedFork)
			}
			nameOffset, _ := r.PGetU16BE(refOffset + 2)
			attrAndOffset, err := r.PGetU32BE(refOffset + 4)
			if err != nil {
				return fmt.Errorf("%w: reference entry out of range", ErrMalformedFork)
			}

			var name string
			if nameOffset != 0xFFFF {
				absNameOffset := int(mapOffset) + int(nameListRel) + int(nameOffset)
				nameBytes, err := r.PGetPString(absNameOffset)
				if err != nil {
					return fmt.Errorf("%w: name out of range", ErrMalformedFork)
				}
				name = string(nameBytes)
			}

			blobOffset := int(dataOffset) + int(attrAndOffset&0x00FFFFFF)
			blobSize, err := r.PGetU32BE(blobOffset)
			if err != nil {
				return fmt.Errorf("%w: data entry out of range", ErrMalformedFork)
			}
			blob, err := r.PRead(blobOffset+4, int(blobSize))
			if err != nil {
				return fmt.Errorf("%w: data contents out of range", ErrMalformedFork)
			}

			f.insert(&Resource{
				Type:  te.typ,
				ID:    int16(idU),
				Flags: uint16(attrAndOffset >> 24),
				Name:  name,
				Data:  blob,
			})
		}
	}
	return nil
}

// ResourceExists reports whether a (type, id) pair exists.
func (f *File) ResourceExists(typ uint32, id int16) bool {
	_, ok := f.resources[makeResourceKey(typ, id)]
	return ok
}

// ResourceExistsName reports whether a resource of the given type carries
// the given name.
func (f *File) ResourceExistsName(typ uint32, name string) bool {
	for _, key := range f.nameIndex[name] {
		if typeFromResourceKey(key) == typ {
			return true
		}
	}
	return false
}

// GetResource returns the resource with the given type and id. On the
// first non-disabled call for a compressed resource the decompression
// dispatcher runs; its outcome is cached in the resource's flags and the
// data is replaced in place on success.
func (f *File) GetResource(typ uint32, id int16, decompressFlags uint64) (*Resource, error) {
	res, ok := f.resources[makeResourceKey(typ, id)]
	if !ok {
		return nil, fmt.Errorf("%s:%d: %w", TypeString(typ), id, ErrNotFound)
	}

	decompressFlags |= f.opts.DecompressionFlags
	if res.Flags&FlagCompressed != 0 &&
		res.Flags&FlagDecompressionFailed == 0 &&
		decompressFlags&DecompressDisabled == 0 {
		decompressed, err := f.decompressResource(res.Data, decompressFlags)
		if err != nil {
			res.Flags |= FlagDecompressionFailed
			if decompressFlags&DecompressVerbose != 0 {
				f.logger.Warnf("decompression failed: %v", err)
			}
			return res, fmt.Errorf("%s:%d: %w", TypeString(typ), id, ErrDecompressionFailed)
		}
		res.Data = decompressed
		res.Flags = (res.Flags &^ FlagCompressed) | FlagDecompressed
	}
	return res, nil
}

// GetResourceByName returns the first resource of the given type with the
// given name.
func (f *File) GetResourceByName(typ uint32, name string, decompressFlags uint64) (*Resource, error) {
	for _, key := range f.nameIndex[name] {
		if typeFromResourceKey(key) == typ {
			return f.GetResource(typ, idFromResourceKey(key), decompressFlags)
		}
	}
	return nil, fmt.Errorf("%s:%q: %w", TypeString(typ), name, ErrNotFound)
}

// AllResourcesOfType returns the ids of all resources of a type, in
// ascending id order.
func (f *File) AllResourcesOfType(typ uint32) []int16 {
	var ids []int16
	start := sort.Search(len(f.keys), func(i int) bool {
		return f.keys[i] >= uint64(typ)<<16
	})
	for _, key := range f.keys[start:] {
		if typeFromResourceKey(key) != typ {
			break
		}
		ids = append(ids, idFromResourceKey(key))
	}
	// Keys sort by the raw 16-bit id, so negative ids come after
	// positive ones within a type; re-sort into signed order.
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ResourceID pairs a type tag with a resource id.
type ResourceID struct {
	Type uint32
	ID   int16
}

// AllResources returns every (type, id) pair, in ascending (type, id)
// lexicographic order.
func (f *File) AllResources() []ResourceID {
	out := make([]ResourceID, 0, len(f.keys))
	for _, key := range f.keys {
		out = append(out, ResourceID{typeFromResourceKey(key), idFromResourceKey(key)})
	}
	// Keys sort by the raw 16-bit id; re-sort so negative ids come first
	// within a type.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// FindResourceByID returns the first type in the provided ordered list
// for which (type, id) exists.
func (f *File) FindResourceByID(id int16, types []uint32) (uint32, error) {
	for _, typ := range types {
		if f.ResourceExists(typ, id) {
			return typ, nil
		}
	}
	return 0, fmt.Errorf("id %d: %w", id, ErrNotFound)
}
