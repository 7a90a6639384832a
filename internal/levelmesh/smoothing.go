package levelmesh

import "fmt"

// assignSmoothingGroups gives every surface a group id shared with any
// other surface of the same kind whose plane equation matches closely,
// so the bake pass can blend normals across adjoining flats instead of
// faceting every sector boundary.
func assignSmoothingGroups(surfaces []Surface) {
	groups := map[string]int32{}
	next := int32(0)

	for i := range surfaces {
		s := &surfaces[i]
		key := fmt.Sprintf("%d:%.2f:%.2f:%.2f:%.2f", s.Kind, round2(s.Plane.A), round2(s.Plane.B), round2(s.Plane.C), round2(s.Plane.D))
		id, ok := groups[key]
		if !ok {
			id = next
			groups[key] = id
			next++
		}
		s.SmoothingGroup = id
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100)) / 100
}
