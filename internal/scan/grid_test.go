package scan_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaosmap/internal/dynamo"
	"github.com/san-kum/chaosmap/internal/scan"
)

var _ = Describe("Grid", func() {
	It("counts 7500 samples for 800x600 at stride 8", func() {
		g := scan.Grid{Width: 800, Height: 600, Resolution: 8}
		Expect(g.Cols()).To(Equal(100))
		Expect(g.Rows()).To(Equal(75))
		Expect(g.Total()).To(Equal(7500))
	})

	It("includes a partial last row and column", func() {
		g := scan.Grid{Width: 10, Height: 7, Resolution: 4}
		Expect(g.Cols()).To(Equal(3))
		Expect(g.Rows()).To(Equal(2))
		Expect(g.Total()).To(Equal(6))
	})

	It("walks samples in row-major order", func() {
		g := scan.Grid{Width: 800, Height: 600, Resolution: 8}

		x, y := g.Pixel(0)
		Expect([]int{x, y}).To(Equal([]int{0, 0}))
		x, y = g.Pixel(1)
		Expect([]int{x, y}).To(Equal([]int{8, 0}))
		x, y = g.Pixel(100)
		Expect([]int{x, y}).To(Equal([]int{0, 8}))
		x, y = g.Pixel(7499)
		Expect([]int{x, y}).To(Equal([]int{792, 592}))
	})

	It("maps pixels affinely onto [-pi, pi)", func() {
		g := scan.Grid{Width: 800, Height: 600, Resolution: 1}

		t1, t2 := g.InitialCondition(0, 0)
		Expect(t1).To(Equal(-math.Pi))
		Expect(t2).To(Equal(-math.Pi))

		t1, t2 = g.InitialCondition(400, 300)
		Expect(t1).To(BeNumerically("~", 0, 1e-12))
		Expect(t2).To(BeNumerically("~", 0, 1e-12))

		t1, _ = g.InitialCondition(800, 0)
		Expect(t1).To(BeNumerically("~", math.Pi, 1e-12))

		step := 2 * math.Pi / 800
		prev, _ := g.InitialCondition(0, 0)
		for x := 1; x < 800; x++ {
			cur, _ := g.InitialCondition(x, 0)
			Expect(cur).To(BeNumerically(">", prev))
			Expect(cur - prev).To(BeNumerically("~", step, 1e-12))
			prev = cur
		}
	})

	DescribeTable("rejects non-positive dimensions",
		func(g scan.Grid, field string) {
			err := g.Validate()
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring(field))
		},
		Entry("width", scan.Grid{Width: 0, Height: 600, Resolution: 8}, "width"),
		Entry("height", scan.Grid{Width: 800, Height: -1, Resolution: 8}, "height"),
		Entry("resolution", scan.Grid{Width: 800, Height: 600, Resolution: 0}, "resolution"),
	)
})

var _ = Describe("MultiSink", func() {
	It("forwards fills to every sink in order", func() {
		var order []string
		a := scan.SinkFunc(func(scan.Fill) { order = append(order, "a") })
		b := scan.SinkFunc(func(scan.Fill) { order = append(order, "b") })

		scan.MultiSink(a, b).Fill(scan.Fill{})
		Expect(order).To(Equal([]string{"a", "b"}))
	})
})
