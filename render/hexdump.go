package render

import (
	"fmt"
	"strings"
)

const hexDumpWidth = 16

// HexDump renders data as the classic three-column dump: offset, hex
// bytes, and an ASCII gutter with non-printable bytes shown as dots.
func HexDump(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var b strings.Builder
	for offset := 0; offset < len(data); offset += hexDumpWidth {
		end := offset + hexDumpWidth
		if end > len(data) {
			end = len(data)
		}
		line := data[offset:end]

		fmt.Fprintf(&b, "%08X  ", offset)
		for i := 0; i < hexDumpWidth; i++ {
			if i < len(line) {
				fmt.Fprintf(&b, "%02X ", line[i])
			} else {
				b.WriteString("   ")
			}
			if i == 7 {
				b.WriteByte(' ')
			}
		}

		b.WriteString(" |")
		for _, c := range line {
			if c >= 0x20 && c < 0x7F {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}
