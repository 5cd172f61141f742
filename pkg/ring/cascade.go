package ring

// StackOffset returns the vertical offset at which a ring placed directly on
// top of prev starts: prev.yOffset + (prev.layers + 0.5)·VStepBase·prev.scale.
func StackOffset(prev Ring) float64 {
	return prev.YOffset + (float64(prev.Layers)+0.5)*VStepBase*prev.Scale
}

// Cascade recomputes the vertical offset of every ring after the first whose
// offset is automatic. Rings with a manual offset are left untouched but
// still serve as the base of the ring above them.
func Cascade(rings []Ring) {
	for i := 1; i < len(rings); i++ {
		if rings[i].YOffsetAuto {
			rings[i].YOffset = StackOffset(rings[i-1])
		}
	}
}
