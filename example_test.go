package thicket_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/thicket"
	"github.com/aretw0/thicket/pkg/domain"
)

// ExampleNew_definition builds an automaton in code: strings over {0, 1}
// whose second-to-last symbol is 1.
func ExampleNew_definition() {
	def := domain.NewDefinition("q0", "q2").
		AddTransition("q0", domain.Consume('0'), "q0").
		AddTransition("q0", domain.Consume('1'), "q0", "q1").
		AddTransition("q1", domain.Consume('0'), "q2").
		AddTransition("q1", domain.Consume('1'), "q2")

	eng, err := thicket.New("second-to-last", thicket.WithDefinition(def))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	for _, in := range []string{"10", "0110", "01", ""} {
		fmt.Printf("%q: %v\n", in, eng.Accepts(ctx, in))
	}
	// Output:
	// "10": true
	// "0110": true
	// "01": false
	// "": false
}

// ExampleEngine_Trace shows the active state sets of a run.
func ExampleEngine_Trace() {
	eng, err := thicket.New("testdata/epsilon.yaml")
	if err != nil {
		log.Fatal(err)
	}

	trace := eng.Trace(context.Background(), "b")
	fmt.Println(trace.Initial.Sorted())
	for _, step := range trace.Steps {
		fmt.Printf("%c -> %v\n", step.Symbol, step.Closed.Sorted())
	}
	fmt.Println(trace.Accepted)
	// Output:
	// [B S]
	// b -> [A]
	// true
}
