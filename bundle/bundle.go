// Package bundle decodes the tagged, versioned "bundle/blob" container shared by
// modelbin, materialbin and swatchbin files.
package bundle

import (
	"fmt"
	"slices"

	"github.com/binzume/modelbinconv/binstream"
	"github.com/pkg/errors"
)

var ErrMissingBlob = errors.New("missing blob")

type Version struct {
	Major uint8
	Minor uint8
}

func ReadVersion(r *binstream.Reader) Version {
	return Version{Major: r.Uint8(), Minor: r.Uint8()}
}

func (v Version) IsAtLeast(major, minor uint8) bool {
	return v.Major > major || (v.Major == major && v.Minor >= minor)
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Metadata is a small typed value attached to a blob.
type Metadata struct {
	Tag    Tag
	Flags  uint8
	Offset uint16
	data   []byte
}

func readMetadata(r *binstream.Reader) *Metadata {
	m := &Metadata{Tag: Tag(r.Uint32())}
	sizeAndFlags := r.Uint16()
	m.Flags = uint8(sizeAndFlags & 0xf)
	m.Offset = r.Uint16()
	m.data = binstream.Slice(r.Bytes(), int(m.Offset), int(m.Offset)+int(sizeAndFlags>>4))
	return m
}

func (m *Metadata) Bytes() []byte {
	return m.data
}

func (m *Metadata) Reader() *binstream.Reader {
	return binstream.New(m.data)
}

func (m *Metadata) String() string {
	return string(m.data)
}

func (m *Metadata) Int32() int32 {
	return m.Reader().Int32()
}

const blobRecordSize = 24

type Blob struct {
	Tag            Tag
	Version        Version
	MetadataCount  uint16
	MetadataOffset uint32
	DataOffset     uint32
	DataSize       uint32
	Metadata       map[Tag]*Metadata
	data           []byte
}

// readBlob reads one 24-byte blob record. buf is the whole bundle buffer the
// record's offsets refer to.
func readBlob(r *binstream.Reader, buf []byte) *Blob {
	b := &Blob{
		Tag:      Tag(r.Uint32()),
		Version:  ReadVersion(r),
		Metadata: map[Tag]*Metadata{},
	}
	b.MetadataCount = r.Uint16()
	b.MetadataOffset = r.Uint32()
	b.DataOffset = r.Uint32()
	b.DataSize = r.Uint32()
	r.Skip(4)

	for i := 0; i < int(b.MetadataCount); i++ {
		start := int(b.MetadataOffset) + i*8
		m := readMetadata(binstream.New(binstream.Slice(buf, start, len(buf))))
		b.Metadata[m.Tag] = m
	}
	b.data = binstream.Slice(buf, int(b.DataOffset), int(b.DataOffset)+int(b.DataSize))
	return b
}

// Data returns the blob payload. It shares memory with the bundle buffer.
func (b *Blob) Data() []byte {
	return b.data
}

// Stream returns a fresh reader positioned at the start of the payload.
func (b *Blob) Stream() *binstream.Reader {
	return binstream.New(b.data)
}

func (b *Blob) Meta(tag Tag) (*Metadata, bool) {
	m, ok := b.Metadata[tag]
	return m, ok
}

// MetaTags returns the metadata tags of the blob in ascending order.
func (b *Blob) MetaTags() []Tag {
	tags := make([]Tag, 0, len(b.Metadata))
	for t := range b.Metadata {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

func (b *Blob) MetaString(tag Tag, def string) string {
	if m, ok := b.Metadata[tag]; ok {
		return m.String()
	}
	return def
}

func (b *Blob) MetaInt32(tag Tag, def int32) int32 {
	if m, ok := b.Metadata[tag]; ok {
		return m.Int32()
	}
	return def
}

type Bundle struct {
	Tag     Tag
	Version Version
	Blobs   map[Tag][]*Blob
	// Truncated is set when the blob directory ran past the end of the buffer.
	Truncated bool
	order     []Tag
	count     int
}

func Read(r *binstream.Reader) *Bundle {
	bnd := &Bundle{
		Tag:     Tag(r.Uint32()),
		Version: ReadVersion(r),
		Blobs:   map[Tag][]*Blob{},
	}
	n := uint32(r.Uint16())
	r.Skip(8)
	if bnd.Version.IsAtLeast(1, 1) {
		n = r.Uint32()
	}
	for i := uint32(0); i < n; i++ {
		if r.Remaining() < blobRecordSize {
			bnd.Truncated = true
			break
		}
		b := readBlob(r, r.Bytes())
		if _, ok := bnd.Blobs[b.Tag]; !ok {
			bnd.order = append(bnd.order, b.Tag)
		}
		bnd.Blobs[b.Tag] = append(bnd.Blobs[b.Tag], b)
		bnd.count++
	}
	bnd.Truncated = bnd.Truncated || r.Short()
	return bnd
}

func Decode(data []byte) *Bundle {
	return Read(binstream.New(data))
}

// All returns the blobs with the tag in file order.
func (b *Bundle) All(tag Tag) []*Blob {
	return b.Blobs[tag]
}

func (b *Bundle) First(tag Tag) *Blob {
	if l := b.Blobs[tag]; len(l) > 0 {
		return l[0]
	}
	return nil
}

// FirstOf returns the first blob of the first tag that has any.
func (b *Bundle) FirstOf(tags ...Tag) *Blob {
	for _, t := range tags {
		if blob := b.First(t); blob != nil {
			return blob
		}
	}
	return nil
}

func (b *Bundle) Require(tag Tag) (*Blob, error) {
	if blob := b.First(tag); blob != nil {
		return blob, nil
	}
	return nil, errors.Wrap(ErrMissingBlob, tag.String())
}

// Tags returns the distinct blob tags in order of first appearance.
func (b *Bundle) Tags() []Tag {
	return b.order
}

// Count returns the number of blobs decoded.
func (b *Bundle) Count() int {
	return b.count
}
