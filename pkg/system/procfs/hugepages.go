//go:build linux

package procfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SampleHugepages reads every hugepages-<sizekB>kB/nr_hugepages file under
// root and returns the total, normalized to base pages of basePageSizeKB
// (the host's base page size, in kB).
func SampleHugepages(root string, basePageSizeKB uint64) (uint64, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("procfs: read hugepages root: %w", err)
	}
	if basePageSizeKB == 0 {
		return 0, fmt.Errorf("procfs: base page size is zero")
	}

	var total uint64
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), "hugepages-") {
			continue
		}
		sizeKB, ok := hugepageSizeKB(e.Name())
		if !ok {
			continue
		}
		b, rerr := os.ReadFile(filepath.Join(root, e.Name(), "nr_hugepages"))
		if rerr != nil {
			continue
		}
		nr, perr := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
		if perr != nil {
			continue
		}
		total += nr * (sizeKB / basePageSizeKB)
	}
	return total, nil
}

func hugepageSizeKB(dirName string) (uint64, bool) {
	s := strings.TrimSuffix(strings.TrimPrefix(dirName, "hugepages-"), "kB")
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
