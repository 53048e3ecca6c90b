package filesystem

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"
)

const unknownVolume = "unknown"

// VolumeResolver names the mount a path lives on, for metric labels. The
// deepest matching mount wins.
type VolumeResolver struct {
	roots []volumeRoot // deepest first
}

type volumeRoot struct {
	dir, name string
}

// NewVolumeResolver takes volume names keyed to their mount directories,
// e.g. {"media": "/media", "cache": "/cache"}.
func NewVolumeResolver(volumes map[string]string) *VolumeResolver {
	vr := &VolumeResolver{}
	for name, dir := range volumes {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		vr.roots = append(vr.roots, volumeRoot{dir: filepath.Clean(dir), name: name})
	}
	slices.SortFunc(vr.roots, func(a, b volumeRoot) int {
		return cmp.Compare(len(b.dir), len(a.dir))
	})
	return vr
}

// Resolve returns the volume holding path, or "unknown". A nil resolver
// knows no volumes.
func (vr *VolumeResolver) Resolve(path string) string {
	if vr == nil {
		return unknownVolume
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return unknownVolume
	}
	for _, root := range vr.roots {
		rel, err := filepath.Rel(root.dir, abs)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return root.name
		}
	}
	return unknownVolume
}
