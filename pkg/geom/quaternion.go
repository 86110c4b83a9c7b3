// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AttrCore Contributors

package geom

import "math"

// Quaternion is a rotation stored as (w, x, y, z).
type Quaternion struct{ W, X, Y, Z float32 }

// QuaternionIdentity is the no-rotation quaternion.
var QuaternionIdentity = Quaternion{W: 1}

// QuaternionFromEuler builds a rotation from Euler angles in degrees,
// applied in Y-X-Z order.
func QuaternionFromEuler(x, y, z float32) Quaternion {
	const halfDegToRad = math.Pi / 360
	hx := float64(x) * halfDegToRad
	hy := float64(y) * halfDegToRad
	hz := float64(z) * halfDegToRad
	sinX, cosX := math.Sincos(hx)
	sinY, cosY := math.Sincos(hy)
	sinZ, cosZ := math.Sincos(hz)

	return Quaternion{
		W: float32(cosY*cosX*cosZ + sinY*sinX*sinZ),
		X: float32(cosY*sinX*cosZ + sinY*cosX*sinZ),
		Y: float32(sinY*cosX*cosZ - cosY*sinX*sinZ),
		Z: float32(cosY*cosX*sinZ - sinY*sinX*cosZ),
	}
}

func (q Quaternion) String() string { return formatFloats(q.W, q.X, q.Y, q.Z) }

// ParseQuaternion parses "w x y z", or "x y z" as Euler angles in degrees.
// Fewer than three components yields QuaternionIdentity.
func ParseQuaternion(s string) Quaternion {
	fields := Fields(s)
	switch {
	case len(fields) >= 4:
		return Quaternion{
			W: ParseFloat(fields[0]),
			X: ParseFloat(fields[1]),
			Y: ParseFloat(fields[2]),
			Z: ParseFloat(fields[3]),
		}
	case len(fields) == 3:
		return QuaternionFromEuler(ParseFloat(fields[0]), ParseFloat(fields[1]), ParseFloat(fields[2]))
	default:
		return QuaternionIdentity
	}
}
