//go:build linux

package procfs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ReadWatermarkScaleFactor reads the current watermark_scale_factor.
func ReadWatermarkScaleFactor(path string) (uint, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("procfs: read watermark_scale_factor: %w", err)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("procfs: parse watermark_scale_factor: %w", err)
	}
	return uint(v), nil
}

// WriteWatermarkScaleFactor writes a new watermark_scale_factor value.
func WriteWatermarkScaleFactor(path string, wsf uint) error {
	if err := os.WriteFile(path, []byte(strconv.FormatUint(uint64(wsf), 10)), 0o644); err != nil {
		return fmt.Errorf("procfs: write watermark_scale_factor: %w", err)
	}
	return nil
}

// CheckWatermarkScaleAccess verifies the watermark tunable is both
// readable and writable. This is the single fatal-at-startup check the
// daemon performs, matching check_permissions() in adaptivemmd.c.
func CheckWatermarkScaleAccess(path string) error {
	if _, err := ReadWatermarkScaleFactor(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("procfs: watermark_scale_factor not writable: %w", err)
	}
	return f.Close()
}

// TriggerCompaction writes '1' to a node's compact control file.
func TriggerCompaction(nodeCompactPath string) error {
	f, err := os.OpenFile(nodeCompactPath, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("procfs: open compact file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString("1"); err != nil {
		return fmt.Errorf("procfs: write compact file: %w", err)
	}
	return nil
}

// WriteNegDentryLimit writes the negative-dentry cap. A missing file is
// not an error: older kernels don't expose this tunable.
func WriteNegDentryLimit(path string, val int) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(val)), 0o644); err != nil {
		return fmt.Errorf("procfs: write negative-dentry-limit: %w", err)
	}
	return nil
}
