package tracker

import "math"

// Bearing calculates the initial bearing from point 1 to point 2 in degrees (0-360)
func Bearing(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	x := math.Sin(deltaLambda) * math.Cos(phi2)
	y := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(deltaLambda)

	bearing := math.Atan2(x, y) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// Direction returns the unit vector pointing from point 1 toward point 2 in
// lon/lat space, with its compass bearing. Coincident points have no
// direction and report ok=false instead of a degenerate zero vector.
func Direction(lat1, lon1, lat2, lon2 float64) (Vector, bool) {
	dx := lon2 - lon1
	dy := lat2 - lat1
	mag := math.Hypot(dx, dy)
	if mag == 0 {
		return Vector{}, false
	}
	return Vector{
		Dx:      dx / mag,
		Dy:      dy / mag,
		Bearing: Bearing(lat1, lon1, lat2, lon2),
	}, true
}
