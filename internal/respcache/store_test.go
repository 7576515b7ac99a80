package respcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SetGetDelete(t *testing.T) {
	m, err := NewMemoryStore(1 << 20)
	require.NoError(t, err)
	defer m.Close()

	m.Set("a", []byte("alpha"))
	got, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("alpha"), got)

	m.Delete("a")
	_, ok = m.Get("a")
	assert.False(t, ok)
}

func TestMemoryStore_RejectsNonPositiveCapacity(t *testing.T) {
	_, err := NewMemoryStore(0)
	assert.Error(t, err)
}

func TestMemoryStore_RejectsEntryLargerThanCapacity(t *testing.T) {
	m, err := NewMemoryStore(16)
	require.NoError(t, err)
	defer m.Close()

	m.Set("big", make([]byte, 64))
	_, ok := m.Get("big")
	assert.False(t, ok)
}

func TestDiskStore_SetGetDeletePurge(t *testing.T) {
	d, err := OpenDisk(DiskConfig{InMemory: true})
	require.NoError(t, err)
	defer d.Close()

	d.Set("k1", []byte("v1"))
	d.Set("k2", []byte("v2"))
	got, ok := d.Get("k1")
	require.True(t, ok)
	assert.Equal(t, []byte("v1"), got)

	d.Delete("k1")
	_, ok = d.Get("k1")
	assert.False(t, ok)

	require.NoError(t, d.Purge())
	_, ok = d.Get("k2")
	assert.False(t, ok)
}

func TestDiskStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)
	d.Set("k", []byte("persisted"))
	require.NoError(t, d.Close())

	d, err = OpenDisk(DiskConfig{Dir: dir})
	require.NoError(t, err)
	defer d.Close()
	got, ok := d.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("persisted"), got)
}

func TestDiskStore_CapacityDropsAllOnOverflow(t *testing.T) {
	const chunk = 1 << 10
	// Room for four entries (key plus value) but not five.
	d, err := OpenDisk(DiskConfig{Dir: t.TempDir(), Capacity: 4*(chunk+2) + chunk/2})
	require.NoError(t, err)
	defer d.Close()

	for _, key := range []string{"k1", "k2", "k3", "k4"} {
		d.Set(key, make([]byte, chunk))
	}
	for _, key := range []string{"k1", "k2", "k3", "k4"} {
		_, ok := d.Get(key)
		assert.True(t, ok, "%s below the cap should be kept", key)
	}
	assert.Equal(t, int64(4*(chunk+2)), d.Used())

	d.Set("k5", make([]byte, chunk))
	for _, key := range []string{"k1", "k2", "k3", "k4"} {
		_, ok := d.Get(key)
		assert.False(t, ok, "%s should be dropped by the overflowing write", key)
	}
	d.Set("k6", make([]byte, chunk))
	for _, key := range []string{"k5", "k6"} {
		_, ok := d.Get(key)
		assert.True(t, ok, "%s written after the drop should be kept", key)
	}
	assert.Equal(t, int64(2*(chunk+2)), d.Used())
}

func TestDiskStore_UsedTracksOverwriteDeleteAndReopen(t *testing.T) {
	dir := t.TempDir()
	d, err := OpenDisk(DiskConfig{Dir: dir, Capacity: 1 << 20})
	require.NoError(t, err)

	d.Set("k", make([]byte, 100))
	d.Set("k", make([]byte, 40))
	assert.Equal(t, int64(41), d.Used(), "overwrite replaces the old size")
	d.Set("other", make([]byte, 10))
	d.Delete("k")
	assert.Equal(t, int64(15), d.Used())
	require.NoError(t, d.Close())

	d, err = OpenDisk(DiskConfig{Dir: dir, Capacity: 1 << 20})
	require.NoError(t, err)
	defer d.Close()
	assert.Equal(t, int64(15), d.Used(), "reopen recounts stored bytes")

	require.NoError(t, d.Purge())
	assert.Zero(t, d.Used())
}

func TestOpenDisk_RequiresDir(t *testing.T) {
	_, err := OpenDisk(DiskConfig{})
	assert.Error(t, err)
}

func TestTiered_PromotesDiskHits(t *testing.T) {
	mem := newMapStore()
	disk := newMapStore()
	tier := &Tiered{Memory: mem, Disk: disk}

	disk.Set("k", []byte("from disk"))
	got, ok := tier.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("from disk"), got)

	promoted, ok := mem.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("from disk"), promoted)
}

func TestTiered_WritesAndDeletesBothTiers(t *testing.T) {
	mem := newMapStore()
	disk := newMapStore()
	tier := &Tiered{Memory: mem, Disk: disk}

	tier.Set("k", []byte("v"))
	_, inMem := mem.Get("k")
	_, onDisk := disk.Get("k")
	assert.True(t, inMem)
	assert.True(t, onDisk)

	tier.Delete("k")
	_, inMem = mem.Get("k")
	_, onDisk = disk.Get("k")
	assert.False(t, inMem)
	assert.False(t, onDisk)

	require.NoError(t, tier.Close())
	assert.True(t, mem.closed)
	assert.True(t, disk.closed)
}

func TestTiered_MemoryOnly(t *testing.T) {
	tier := &Tiered{Memory: newMapStore()}
	tier.Set("k", []byte("v"))
	_, ok := tier.Get("k")
	assert.True(t, ok)
	require.NoError(t, tier.Purge())
	_, ok = tier.Get("k")
	assert.False(t, ok)
}
