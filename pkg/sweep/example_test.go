package sweep_test

import (
	"fmt"

	"github.com/matzehuels/tipscan/pkg/sweep"
)

func ExampleConfig_Samples() {
	inclusive, _ := sweep.Config{Low: -1, High: 1, Points: 5}.Samples()
	halfOpen, _ := sweep.Config{Low: -1, High: 1, Divisor: 2}.Samples()
	fmt.Println(inclusive)
	fmt.Println(halfOpen)
	// Output:
	// [-1 -0.5 0 0.5 1]
	// [-1 -0.5 0 0.5]
}

func ExampleFormatFloat() {
	fmt.Println(sweep.FormatFloat(1), sweep.FormatFloat(0.5), sweep.FormatFloat(1e-5))
	// Output: 1.0 0.5 1e-05
}
