package render

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// FileInfo describes a chosen upload file, e.g. "Archivo: song.mp3 (3.1 MiB)"
func FileInfo(name string, size int64) string {
	if name == "" {
		return ""
	}
	if size < 0 {
		size = 0
	}
	return fmt.Sprintf("Archivo: %s (%s)", name, humanize.IBytes(uint64(size)))
}
