package bundle

import (
	"strings"

	"github.com/google/uuid"
)

// FormatGUID formats a 16-byte GUID stored with its first three fields
// little-endian, as "{XXXXXXXX-XXXX-XXXX-XXXX-XXXXXXXXXXXX}".
func FormatGUID(b []byte) string {
	var raw [16]byte
	copy(raw[:], b)
	raw[0], raw[1], raw[2], raw[3] = raw[3], raw[2], raw[1], raw[0]
	raw[4], raw[5] = raw[5], raw[4]
	raw[6], raw[7] = raw[7], raw[6]
	return "{" + strings.ToUpper(uuid.UUID(raw).String()) + "}"
}
