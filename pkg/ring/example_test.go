package ring_test

import (
	"fmt"

	"github.com/matzehuels/ringtower/pkg/ring"
)

func ExampleSolve() {
	// Pin modules, arc and radius; the solver derives the scale.
	r := ring.Default()
	r.Modules = 30
	r.Arc = 180
	r.Fixed = ring.Fixed{Modules: true, Arc: true, Radius: true}

	r = ring.Solve(r)
	fmt.Printf("auto=%s scale=%.1f\n", r.AutoKey, r.Scale)
	// Output:
	// auto=scale scale=0.3
}

func ExampleSet_Add() {
	s := ring.NewSet()
	s.Add()

	for i, r := range s.Rings {
		fmt.Printf("ring %d: y=%.2f instances=%d\n", i, r.YOffset, r.Modules*r.Layers)
	}
	// Output:
	// ring 0: y=0.00 instances=200
	// ring 1: y=6.30 instances=200
}
