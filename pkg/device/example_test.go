package device_test

import (
	"fmt"

	"github.com/matzehuels/tipscan/pkg/device"
	"github.com/matzehuels/tipscan/pkg/lattice"
)

func ExampleBuilder() {
	lat := lattice.NewSquare("a", 1)
	b := device.NewBuilder()
	_ = b.SetSites(device.Rect(lat, 0, 3, 0, 2), device.Const(4))
	_ = b.SetHoppings(device.Neighbors(lat), device.Const(-1))

	lead, _ := device.NewLead(lattice.Vec{-1, 0})
	_ = lead.SetSites(device.Column(lat, -1, 0, 2), device.Const(4))
	_ = lead.SetHoppings(device.Neighbors(lat), device.Const(-1))
	left, _ := b.AttachLead(lead, 0)
	right, _ := b.AttachLead(lead.Reversed(), 0)

	m, err := b.Finalize()
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("sites:", m.NumSites())
	fmt.Println("hoppings:", len(m.Hoppings()))
	fmt.Println("leads:", left, right)
	// Output:
	// sites: 6
	// hoppings: 7
	// leads: 0 1
}

func ExampleValue() {
	pot := device.OnsiteFunc("Pot", func(_ lattice.Site, p device.Params) float64 {
		return p["Vg"]
	}, device.Required("Vg"))
	fmt.Println(pot)
	fmt.Println(device.Const(-1))
	// Output:
	// Pot(Vg)
	// -1
}
