//go:build !windows

package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// CheckDiskSpace returns free-space information for the filesystem
// backing path. If path does not exist yet (the common case right
// before Create writes a brand-new vault file), it checks the parent
// directory instead.
func CheckDiskSpace(path string) (*DiskSpaceInfo, error) {
	target := path
	if _, err := os.Stat(target); os.IsNotExist(err) {
		target = filepath.Dir(target)
	}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(target, &stat); err != nil {
		return nil, fmt.Errorf("vault: statfs %s: %w", target, err)
	}

	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bfree * uint64(stat.Bsize)
	available := stat.Bavail * uint64(stat.Bsize)

	usedPct := 0
	if total > 0 {
		usedPct = int(100 * (total - free) / total)
	}

	return &DiskSpaceInfo{
		Total:     total,
		Free:      free,
		Available: available,
		UsedPct:   usedPct,
	}, nil
}
