//go:build !windows

package locate

// InstallDirs returns nothing outside Windows: other platforms keep no
// installation registry the tool can query.
func InstallDirs() []string {
	return nil
}
