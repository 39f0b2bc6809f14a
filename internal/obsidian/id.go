package obsidian

import (
	"crypto/md5" //nolint:gosec // G501: used as a stable identifier, not for security
	"encoding/hex"
	"path"
	"strings"
)

// idLength is the number of hex characters Obsidian uses for vault ids.
const idLength = 16

// CanonicalPath rewrites an absolute path into a separator-independent form so
// that `C:\Notes` and `C:/Notes` compare and digest identically.
func CanonicalPath(p string) string {
	s := strings.ReplaceAll(p, `\`, "/")
	unc := strings.HasPrefix(s, "//")
	s = path.Clean(s)
	if unc && !strings.HasPrefix(s, "//") {
		s = "/" + s
	}
	return s
}

// VaultID derives the vault id for an absolute folder path.
func VaultID(absPath string) string {
	//nolint:gosec // G401: see import
	sum := md5.Sum([]byte(CanonicalPath(absPath)))
	return hex.EncodeToString(sum[:])[:idLength]
}

// samePath reports whether two stored paths refer to the same folder.
func samePath(a, b string) bool {
	return CanonicalPath(a) == CanonicalPath(b)
}
