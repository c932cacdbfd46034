package shader

import (
	"sort"

	"github.com/cogentcore/webgpu/wgpu"
)

// MergeLayouts combines the bind group layouts of two stages into the layouts a render
// pipeline needs. A binding declared by both stages keeps the first stage's entry with the
// visibility flags ORed together.
//
// Parameters:
//   - first: layouts from the first stage, usually the vertex shader
//   - second: layouts from the second stage, usually the fragment shader
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: the merged layouts keyed by group index
func MergeLayouts(first, second map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	byGroup := make(map[int]map[uint32]wgpu.BindGroupLayoutEntry)
	add := func(layouts map[int]wgpu.BindGroupLayoutDescriptor) {
		for g, desc := range layouts {
			if byGroup[g] == nil {
				byGroup[g] = make(map[uint32]wgpu.BindGroupLayoutEntry)
			}
			for _, e := range desc.Entries {
				if existing, ok := byGroup[g][e.Binding]; ok {
					existing.Visibility |= e.Visibility
					byGroup[g][e.Binding] = existing
					continue
				}
				byGroup[g][e.Binding] = e
			}
		}
	}
	add(first)
	add(second)

	merged := make(map[int]wgpu.BindGroupLayoutDescriptor, len(byGroup))
	for g, entries := range byGroup {
		list := make([]wgpu.BindGroupLayoutEntry, 0, len(entries))
		for _, e := range entries {
			list = append(list, e)
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].Binding < list[j].Binding
		})
		merged[g] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return merged
}
