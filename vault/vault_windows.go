//go:build windows

package vault

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/windows"
)

// CheckDiskSpace returns free-space information for the filesystem
// backing path. If path does not exist yet, it checks the parent
// directory instead.
func CheckDiskSpace(path string) (*DiskSpaceInfo, error) {
	target := path
	if _, err := os.Stat(target); os.IsNotExist(err) {
		target = filepath.Dir(target)
	}

	pathPtr, err := windows.UTF16PtrFromString(target)
	if err != nil {
		return nil, fmt.Errorf("vault: convert path %s: %w", target, err)
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(pathPtr, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return nil, fmt.Errorf("vault: GetDiskFreeSpaceEx %s: %w", target, err)
	}

	usedPct := 0
	if totalBytes > 0 {
		usedPct = int(100 * (totalBytes - totalFreeBytes) / totalBytes)
	}

	return &DiskSpaceInfo{
		Total:     totalBytes,
		Free:      totalFreeBytes,
		Available: freeBytesAvailable,
		UsedPct:   usedPct,
	}, nil
}
