package lin

// Quaternion deals with quaternion math specifically for linear algebra
// rotations, plus the packed 32-bit encoding used by the scene build
// pipeline and the runtime scene loader.

import "math"

// Q is a unit length quaternion representing an angle of rotation and
// an orientation, used to track/manipulate object rotations.
type Q struct {
	X float32
	Y float32
	Z float32
	W float32
}

// QI is the identity rotation.
var QI = Q{0, 0, 0, 1}

// Eq (==) returns true if each element in q has the same value as r.
func (q Q) Eq(r Q) bool { return q.X == r.X && q.Y == r.Y && q.Z == r.Z && q.W == r.W }

// Aeq (~=) almost-equals returns true if all elements in q are
// essentially the same value as the corresponding elements in r.
func (q Q) Aeq(r Q) bool {
	return Aeq(q.X, r.X) && Aeq(q.Y, r.Y) && Aeq(q.Z, r.Z) && Aeq(q.W, r.W)
}

// Conjugate returns the conjugate of q, which for a unit quaternion is
// also its inverse.
func (q Q) Conjugate() Q { return Q{-q.X, -q.Y, -q.Z, q.W} }

// Mult (*) returns q*r, applying the rotation of r after q.
func (q Q) Mult(r Q) Q {
	return Q{
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Dot returns the dot product of q and r.
func (q Q) Dot(r Q) float32 { return q.X*r.X + q.Y*r.Y + q.Z*r.Z + q.W*r.W }

// Len returns the length of q.
func (q Q) Len() float32 { return float32(math.Sqrt(float64(q.Dot(q)))) }

// Unit normalizes q to have length 1. The zero quaternion is returned
// unchanged.
func (q Q) Unit() Q {
	l := q.Len()
	if l == 0 {
		return q
	}
	s := 1 / l
	return Q{q.X * s, q.Y * s, q.Z * s, q.W * s}
}

// RotateV3 applies the rotation of q to vector v.
func (q Q) RotateV3(v V3) V3 {
	// t = 2 * cross(q.xyz, v)
	qv := V3{q.X, q.Y, q.Z}
	t := qv.Cross(v).Scale(2)
	// v' = v + q.w*t + cross(q.xyz, t)
	return v.Add(t.Scale(q.W)).Add(qv.Cross(t))
}

// Packed quaternion encoding
// ===========================================================================
//
// The largest-component-implicit scheme: the index of the
// largest-magnitude component is stored in the top 2 bits, the other
// three components are each quantized to 10 bits after being scaled by
// sqrt(2) and re-biased into [0,1]. The decoder reconstructs the
// dropped component from the unit-length constraint.

const (
	packBits     = 10
	packMask     = (1 << packBits) - 1
	packMaxVal   = float32((1 << packBits) - 1) // 1023
	identitySnap = 0.9999
)

// Pack encodes a unit quaternion q into the 32-bit representation used
// by the object stream. q is expected to already be
// normalized; Pack does not renormalize it.
func Pack(q Q) uint32 {
	largest := AbsMax(q.X, q.Y, q.Z, q.W)
	comps := [4]float32{q.X, q.Y, q.Z, q.W}

	// sign convention: the dropped (largest) component is reconstructed
	// as positive, so if it was negative here, flip the whole quaternion
	// (q and -q represent the same rotation).
	if comps[largest] < 0 {
		comps[0], comps[1], comps[2], comps[3] = -comps[0], -comps[1], -comps[2], -comps[3]
	}

	idx0, idx1, idx2 := (largest+1)&3, (largest+2)&3, (largest+3)&3
	v0 := floatToS10(comps[idx0])
	v1 := floatToS10(comps[idx1])
	v2 := floatToS10(comps[idx2])

	return uint32(largest)<<30 | v0<<(packBits*2) | v1<<packBits | v2
}

// Unpack decodes a 32-bit packed rotation into a unit quaternion. It
// snaps to identity when the reconstructed W is close enough to 1,
// matching the original engine's fast-path convention.
func Unpack(packed uint32) Q {
	largest := packed >> 30
	idx0, idx1, idx2 := (largest+1)&3, (largest+2)&3, (largest+3)&3

	q0 := s10ToFloat(uint32((packed >> (packBits * 2)) & packMask))
	q1 := s10ToFloat(uint32((packed >> packBits) & packMask))
	q2 := s10ToFloat(uint32(packed & packMask))

	var comps [4]float32
	comps[idx0] = q0
	comps[idx1] = q1
	comps[idx2] = q2

	rem := 1 - q0*q0 - q1*q1 - q2*q2
	if rem < 0 {
		rem = 0
	}
	comps[largest] = float32(math.Sqrt(float64(rem)))

	q := Q{comps[0], comps[1], comps[2], comps[3]}
	if q.W > identitySnap {
		return QI
	}
	return q
}

// floatToS10 maps a value in [-Sqrt2Inv, Sqrt2Inv] to a 10-bit unsigned
// quantization. The original packs with scale = SQRT_2_INV*2,
// offset = -SQRT_2_INV, i.e. value = (raw/1023)*scale + offset; this
// inverts that.
func floatToS10(v float32) uint32 {
	scale := Sqrt2Inv * 2
	offset := -Sqrt2Inv
	raw := (v - offset) / scale * packMaxVal
	if raw < 0 {
		raw = 0
	}
	if raw > packMaxVal {
		raw = packMaxVal
	}
	return uint32(raw + 0.5)
}

// s10ToFloat is the inverse of floatToS10.
func s10ToFloat(raw uint32) float32 {
	scale := Sqrt2Inv * 2
	offset := -Sqrt2Inv
	return float32(raw)/packMaxVal*scale + offset
}
