//go:build linux

package procfs

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Kernel page-flag bit positions, per Documentation/admin-guide/mm/pagemap.rst.
const (
	kpfSlab     = 1 << 7
	kpfBuddy    = 1 << 10
	kpfHuge     = 1 << 17
	kpfHWPoison = 1 << 19
	kpfNoPage   = 1 << 20
	kpfOffline  = 1 << 23
	kpfPgtable  = 1 << 26

	kpageEntrySize = 8
	kpageBatch     = 8192 // bytes per batched read, matching get_unmapped_pages()
)

// SampleUnmappedPages scans /proc/kpagecount and /proc/kpageflags for PFNs
// [0, maxPFN), counting pages with mapcount == 0 whose flags exclude
// NOPAGE, HWPOISON, OFFLINE, SLAB, BUDDY, and PGTABLE, and whose HUGE flag
// is not set — reported for diagnostics only, never a leak trigger.
func SampleUnmappedPages(countPath, flagsPath string, maxPFN uint64) (uint64, error) {
	cf, err := os.Open(countPath)
	if err != nil {
		return 0, fmt.Errorf("procfs: open kpagecount: %w", err)
	}
	defer cf.Close()
	ff, err := os.Open(flagsPath)
	if err != nil {
		return 0, fmt.Errorf("procfs: open kpageflags: %w", err)
	}
	defer ff.Close()

	cbuf := make([]byte, kpageBatch)
	fbuf := make([]byte, kpageBatch)

	var unmapped uint64
	for pfn := uint64(0); pfn < maxPFN; {
		n, cerr := cf.ReadAt(cbuf, int64(pfn*kpageEntrySize))
		if n == 0 && cerr != nil {
			break
		}
		m, ferr := ff.ReadAt(fbuf, int64(pfn*kpageEntrySize))
		if m == 0 && ferr != nil {
			break
		}

		entries := n / kpageEntrySize
		if me := m / kpageEntrySize; me < entries {
			entries = me
		}
		if entries == 0 {
			break
		}
		if rem := maxPFN - pfn; uint64(entries) > rem {
			entries = int(rem)
		}

		for i := 0; i < entries; i++ {
			off := i * kpageEntrySize
			count := binary.LittleEndian.Uint64(cbuf[off : off+kpageEntrySize])
			flags := binary.LittleEndian.Uint64(fbuf[off : off+kpageEntrySize])

			if flags&(kpfNoPage|kpfHWPoison|kpfOffline|kpfSlab|kpfBuddy|kpfPgtable) != 0 {
				continue
			}
			if flags&kpfHuge != 0 {
				continue
			}
			if count == 0 {
				unmapped++
			}
		}
		pfn += uint64(entries)
	}
	return unmapped, nil
}
