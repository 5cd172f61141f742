package placement_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/ringtower/pkg/placement"
	"github.com/matzehuels/ringtower/pkg/ring"
	"github.com/matzehuels/ringtower/pkg/template"
)

func ExampleGenerate() {
	set := ring.NewSet()
	geom := &template.Geometry{Name: "module"}

	insts, err := placement.Generate(context.Background(), set, geom, nil)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(len(insts), "instances")
	fmt.Println(insts[0].Name, insts[len(insts)-1].Name)
	// Output:
	// 200 instances
	// ring-0.layer-0.module-0 ring-0.layer-9.module-19
}
