//go:build linux

package procfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestSampleBuddyInfo_SumsZonesSkipsDMA(t *testing.T) {
	content := `Node 0, zone      DMA      1      2      3      0      0      0      0      0      0      0      0
Node 0, zone    DMA32    100    50     10      5      0      0      0      0      0      0      0
Node 0, zone   Normal    200    90     20     10      1      0      0      0      0      0      0
Node 1, zone   Normal    300    10      0      0      0      0      0      0      0      0      0
`
	path := writeFixture(t, "buddyinfo", content)

	nodes, err := SampleBuddyInfo(path, true)
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	require.Equal(t, 0, nodes[0].Node)
	require.Equal(t, uint64(300), nodes[0].NrFree[0]) // 100+200, DMA skipped
	require.Equal(t, uint64(140), nodes[0].NrFree[1]) // 50+90

	require.Equal(t, 1, nodes[1].Node)
	require.Equal(t, uint64(300), nodes[1].NrFree[0])
}

func TestSampleBuddyInfo_NoSkipIncludesDMA(t *testing.T) {
	content := `Node 0, zone      DMA      1      0      0      0      0      0      0      0      0      0      0
Node 0, zone   Normal    10      0      0      0      0      0      0      0      0      0      0
`
	path := writeFixture(t, "buddyinfo", content)

	nodes, err := SampleBuddyInfo(path, false)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	require.Equal(t, uint64(11), nodes[0].NrFree[0])
}

func TestSampleBuddyInfo_MalformedLineErrors(t *testing.T) {
	content := `Node 0, zone   Normal    abc      0      0      0      0      0      0      0      0      0      0
`
	path := writeFixture(t, "buddyinfo", content)

	_, err := SampleBuddyInfo(path, false)
	require.Error(t, err)
}

func TestSampleBuddyInfo_MissingFile(t *testing.T) {
	_, err := SampleBuddyInfo(filepath.Join(t.TempDir(), "missing"), false)
	require.Error(t, err)
}
