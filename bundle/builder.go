package bundle

import (
	"github.com/binzume/modelbinconv/binstream"
)

// MetaEntry is a metadata value to be written by Builder.
type MetaEntry struct {
	Tag  Tag
	Data []byte
}

func MetaString(tag Tag, s string) MetaEntry {
	return MetaEntry{Tag: tag, Data: []byte(s)}
}

func MetaInt32(tag Tag, v int32) MetaEntry {
	return MetaEntry{Tag: tag, Data: binstream.NewWriter().Int32(v).Bytes()}
}

type blobEntry struct {
	tag     Tag
	version Version
	meta    []MetaEntry
	data    []byte
}

// Builder writes a bundle in the on-disk layout Read expects.
type Builder struct {
	Tag     Tag
	Version Version
	blobs   []*blobEntry
}

func NewBuilder(tag Tag, version Version) *Builder {
	return &Builder{Tag: tag, Version: version}
}

func (b *Builder) Add(tag Tag, version Version, data []byte, meta ...MetaEntry) *Builder {
	b.blobs = append(b.blobs, &blobEntry{tag: tag, version: version, meta: meta, data: data})
	return b
}

func (b *Builder) Bytes() []byte {
	w := binstream.NewWriter()
	w.Uint32(uint32(b.Tag)).Uint8(b.Version.Major).Uint8(b.Version.Minor)
	w.Uint16(uint16(len(b.blobs))).Zero(8)
	if b.Version.IsAtLeast(1, 1) {
		w.Uint32(uint32(len(b.blobs)))
	}

	records := w.Len()
	w.Zero(len(b.blobs) * blobRecordSize)

	type placed struct{ metaOffset, dataOffset int }
	pos := make([]placed, len(b.blobs))
	for i, blob := range b.blobs {
		pos[i].metaOffset = w.Len()
		table := w.Len()
		w.Zero(len(blob.meta) * 8)
		for j, m := range blob.meta {
			rec := table + j*8
			valueOffset := w.Len() - rec
			w.Write(m.Data)
			hdr := binstream.NewWriter().
				Uint32(uint32(m.Tag)).
				Uint16(uint16(len(m.Data) << 4)).
				Uint16(uint16(valueOffset)).Bytes()
			copy(w.Bytes()[rec:], hdr)
		}
		pos[i].dataOffset = w.Len()
		w.Write(blob.data)
	}

	for i, blob := range b.blobs {
		rec := binstream.NewWriter().
			Uint32(uint32(blob.tag)).
			Uint8(blob.version.Major).Uint8(blob.version.Minor).
			Uint16(uint16(len(blob.meta))).
			Uint32(uint32(pos[i].metaOffset)).
			Uint32(uint32(pos[i].dataOffset)).
			Uint32(uint32(len(blob.data))).
			Zero(4).Bytes()
		copy(w.Bytes()[records+i*blobRecordSize:], rec)
	}
	return w.Bytes()
}
