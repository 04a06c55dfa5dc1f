package bundle

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Tag is a chunk or metadata identifier. Its big-endian bytes spell a 4-char mnemonic.
type Tag uint32

const (
	TagGrub Tag = 0x47727562
	TagID   Tag = 0x49642020
	TagName Tag = 0x4E616D65
	TagTXCH Tag = 0x54584348
	TagModl Tag = 0x4D6F646C
	TagSkel Tag = 0x536B656C
	TagMatI Tag = 0x4D617449
	TagMesh Tag = 0x4D657368
	TagVLay Tag = 0x564C6179
	TagIndB Tag = 0x496E6442
	TagVerB Tag = 0x56657242
	TagMATI Tag = 0x4D415449
	TagMATL Tag = 0x4D41544C
	TagMTPR Tag = 0x4D545052
	TagDFPR Tag = 0x44465052
	TagTXCB Tag = 0x54584342
)

func (t Tag) String() string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(t))
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08X", uint32(t))
		}
	}
	return strings.TrimRight(string(b[:]), " ")
}

// ParseTag is the inverse of Tag.String for 1-4 character mnemonics.
func ParseTag(s string) Tag {
	var b [4]byte
	copy(b[:], "    ")
	copy(b[:], s)
	return Tag(binary.BigEndian.Uint32(b[:]))
}
