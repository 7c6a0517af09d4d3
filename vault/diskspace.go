package vault

import "fmt"

// DiskSpaceInfo reports free space for the filesystem backing a vault's
// directory, in bytes.
type DiskSpaceInfo struct {
	Total     uint64
	Free      uint64
	Available uint64
	UsedPct   int
}

// minFreeDiskBytes is the floor below which Create refuses to write a
// new vault, mirroring the "fail fast before touching crypto" posture
// the rest of the package's validation follows.
const minFreeDiskBytes = 1 * 1024 * 1024 // 1 MiB

func checkSufficientDiskSpace(path string) error {
	info, err := CheckDiskSpace(path)
	if err != nil {
		return fmt.Errorf("vault: checking disk space: %w", err)
	}
	if info.Available < minFreeDiskBytes {
		return fmt.Errorf("vault: insufficient disk space at %s: %d bytes available", path, info.Available)
	}
	return nil
}
