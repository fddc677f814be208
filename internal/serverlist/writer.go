package serverlist

import (
	"bytes"
	"fmt"
	"io/fs"

	"github.com/lc/dnssift/internal/filesys"
)

// resultFileMode is world-readable; server lists hold no secrets.
const resultFileMode fs.FileMode = 0o644

// WriteFile persists the result lines to path, one line per entry,
// newline-terminated. The write goes through filesys.AtomicWrite so a crash
// mid-write leaves either the previous file or the complete new one.
func WriteFile(fsys filesys.FileOps, path string, lines []string) error {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := filesys.AtomicWrite(fsys, path, buf.Bytes(), resultFileMode); err != nil {
		return fmt.Errorf("writing server list %q: %w", path, err)
	}
	return nil
}
