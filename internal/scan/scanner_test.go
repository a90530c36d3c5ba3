package scan_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaosmap/internal/compute"
	"github.com/san-kum/chaosmap/internal/config"
	"github.com/san-kum/chaosmap/internal/dynamo"
	"github.com/san-kum/chaosmap/internal/scan"
)

type recorder struct {
	fills    []scan.Fill
	progress []scan.Progress
}

func (r *recorder) Fill(f scan.Fill)            { r.fills = append(r.fills, f) }
func (r *recorder) Progress(p scan.Progress)    { r.progress = append(r.progress, p) }
func (r *recorder) options() []scan.Option      { return []scan.Option{scan.WithSink(r), scan.WithProgress(r)} }
func (r *recorder) lastProgress() scan.Progress { return r.progress[len(r.progress)-1] }

// fastParams keeps the tests quick; the counting properties do not
// depend on the cutoff.
func fastParams() config.Params {
	p := config.DefaultParams()
	p.MaxTime = 0.5
	return p
}

func newScanner(p config.Params, g scan.Grid, opts ...scan.Option) *scan.Scanner {
	s, err := scan.New(p, g, opts...)
	Expect(err).NotTo(HaveOccurred())
	return s
}

var _ = Describe("Scanner", func() {
	var (
		ctx  context.Context
		rec  *recorder
		grid scan.Grid
	)

	BeforeEach(func() {
		ctx = context.Background()
		rec = &recorder{}
		grid = scan.Grid{Width: 800, Height: 600, Resolution: 8}
	})

	It("starts idle at index 0", func() {
		s := newScanner(fastParams(), grid)
		Expect(s.State()).To(Equal(scan.Idle))
		Expect(s.Cursor()).To(Equal(scan.Cursor{Index: 0, Resolution: 8, Total: 7500}))
	})

	It("produces exactly 7500 samples for 800x600 at stride 8", func() {
		s := newScanner(fastParams(), grid, rec.options()...)

		Expect(scan.Run(ctx, s, nil)).To(Succeed())

		Expect(s.State()).To(Equal(scan.Complete))
		Expect(s.Cursor().Index).To(Equal(7500))
		Expect(rec.fills).To(HaveLen(7500))
		for _, p := range rec.progress {
			Expect(p.Done).To(BeNumerically("<=", p.Total))
		}
		Expect(rec.progress).To(HaveLen(8))
		Expect(rec.lastProgress()).To(Equal(scan.Progress{Done: 7500, Total: 7500, State: scan.Complete}))
	})

	It("emits fills in row-major order with the stride as block size", func() {
		s := newScanner(fastParams(), scan.Grid{Width: 40, Height: 24, Resolution: 8}, rec.options()...)
		Expect(scan.Run(ctx, s, nil)).To(Succeed())

		Expect(rec.fills).To(HaveLen(15))
		for i, f := range rec.fills {
			Expect(f.X).To(Equal((i % 5) * 8))
			Expect(f.Y).To(Equal((i / 5) * 8))
			Expect(f.W).To(Equal(8))
			Expect(f.H).To(Equal(8))
		}
	})

	It("colors unflipped samples black and flipped samples at full lightness", func() {
		p := config.DefaultParams()
		s := newScanner(p, scan.Grid{Width: 32, Height: 32, Resolution: 4}, rec.options()...)
		Expect(scan.Run(ctx, s, nil)).To(Succeed())

		var flipped, still int
		for _, f := range rec.fills {
			if f.Value == p.MaxTime {
				Expect(f.Color.L).To(Equal(0.0))
				still++
			} else {
				Expect(f.Value).To(BeNumerically("<", p.MaxTime))
				Expect(f.Color.L).To(Equal(50.0))
				flipped++
			}
		}
		Expect(still).To(BeNumerically(">", 0))
		Expect(flipped).To(BeNumerically(">", 0))
	})

	It("runs batches of the configured size with a short last batch", func() {
		s := newScanner(fastParams(), scan.Grid{Width: 50, Height: 50, Resolution: 1},
			append(rec.options(), scan.WithBatchSize(1000))...)
		Expect(s.Start()).To(Succeed())

		Expect(s.Step(ctx).Done).To(Equal(1000))
		Expect(s.Step(ctx).Done).To(Equal(2000))
		p := s.Step(ctx)
		Expect(p.Done).To(Equal(2500))
		Expect(p.State).To(Equal(scan.Complete))

		Expect(s.Step(ctx).Done).To(Equal(2500))
		Expect(rec.fills).To(HaveLen(2500))
	})

	It("does nothing when stepped while idle", func() {
		s := newScanner(fastParams(), grid, rec.options()...)
		Expect(s.Step(ctx)).To(Equal(scan.Progress{Done: 0, Total: 7500, State: scan.Idle}))
		Expect(rec.fills).To(BeEmpty())
	})

	Describe("cancellation", func() {
		It("stops within one batch and restarts from zero after reset", func() {
			s := newScanner(fastParams(), grid, append(rec.options(), scan.WithBatchSize(1000))...)
			Expect(s.Start()).To(Succeed())
			s.Step(ctx)
			s.Step(ctx)

			s.Cancel()
			Expect(s.State()).To(Equal(scan.Cancelled))
			Expect(s.Cursor().Index).To(Equal(2000))

			s.Step(ctx)
			Expect(rec.fills).To(HaveLen(2000))

			Expect(errors.Is(s.Start(), scan.ErrNotIdle)).To(BeTrue())

			s.Reset()
			Expect(s.State()).To(Equal(scan.Idle))
			Expect(s.Cursor().Index).To(Equal(0))

			rec.fills = nil
			Expect(s.Start()).To(Succeed())
			s.Step(ctx)
			Expect(rec.fills).To(HaveLen(1000))
			Expect(rec.fills[0].X).To(Equal(0))
			Expect(rec.fills[0].Y).To(Equal(0))
		})

		It("treats a done context as a cancel", func() {
			s := newScanner(fastParams(), grid, rec.options()...)
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Expect(scan.Run(cctx, s, nil)).To(Succeed())
			Expect(s.State()).To(Equal(scan.Cancelled))
			Expect(s.Cursor().Index).To(Equal(0))
			Expect(rec.fills).To(BeEmpty())
			Expect(rec.lastProgress().State).To(Equal(scan.Cancelled))
		})

		It("honours a cancel requested from the yield hook", func() {
			s := newScanner(fastParams(), grid, append(rec.options(), scan.WithBatchSize(500))...)
			cctx, cancel := context.WithCancel(ctx)

			batches := 0
			Expect(scan.Run(cctx, s, func() {
				batches++
				if batches == 3 {
					cancel()
				}
			})).To(Succeed())

			Expect(s.State()).To(Equal(scan.Cancelled))
			Expect(s.Cursor().Index).To(Equal(1500))
			Expect(rec.fills).To(HaveLen(1500))
		})

		It("is a no-op on a completed scan", func() {
			s := newScanner(fastParams(), scan.Grid{Width: 8, Height: 8, Resolution: 8})
			Expect(scan.Run(ctx, s, nil)).To(Succeed())
			s.Cancel()
			Expect(s.State()).To(Equal(scan.Complete))
		})
	})

	Describe("reconfiguration", func() {
		It("restarts a running scan from zero when parameters change", func() {
			s := newScanner(fastParams(), grid, append(rec.options(), scan.WithBatchSize(1000))...)
			Expect(s.Start()).To(Succeed())
			s.Step(ctx)
			gen := s.Generation()

			p := fastParams()
			p.Physics.G = 1.62
			restarted, err := s.Reconfigure(p, grid)
			Expect(err).NotTo(HaveOccurred())
			Expect(restarted).To(BeTrue())
			Expect(s.State()).To(Equal(scan.Scanning))
			Expect(s.Cursor().Index).To(Equal(0))
			Expect(s.Generation()).NotTo(Equal(gen))
			Expect(s.Params()).To(Equal(p))
		})

		It("restarts on a resize", func() {
			s := newScanner(fastParams(), grid)
			Expect(s.Start()).To(Succeed())
			s.Step(ctx)

			bigger := scan.Grid{Width: 1024, Height: 768, Resolution: 8}
			restarted, err := s.Reconfigure(fastParams(), bigger)
			Expect(err).NotTo(HaveOccurred())
			Expect(restarted).To(BeTrue())
			Expect(s.Cursor()).To(Equal(scan.Cursor{Index: 0, Resolution: 8, Total: 128 * 96}))
		})

		It("ignores identical values", func() {
			s := newScanner(fastParams(), grid)
			Expect(s.Start()).To(Succeed())
			s.Step(ctx)

			restarted, err := s.Reconfigure(fastParams(), grid)
			Expect(err).NotTo(HaveOccurred())
			Expect(restarted).To(BeFalse())
			Expect(s.Cursor().Index).To(Equal(1000))
		})

		It("stays idle when reconfigured before starting", func() {
			s := newScanner(fastParams(), grid)
			p := fastParams()
			p.Dt = 0.005
			restarted, err := s.Reconfigure(p, grid)
			Expect(err).NotTo(HaveOccurred())
			Expect(restarted).To(BeTrue())
			Expect(s.State()).To(Equal(scan.Idle))
		})

		It("rejects invalid values and keeps the running scan", func() {
			s := newScanner(fastParams(), grid)
			Expect(s.Start()).To(Succeed())
			s.Step(ctx)

			p := fastParams()
			p.Physics.L2 = 0
			_, err := s.Reconfigure(p, grid)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
			Expect(s.State()).To(Equal(scan.Scanning))
			Expect(s.Cursor().Index).To(Equal(1000))
		})
	})

	DescribeTable("New rejects invalid configuration",
		func(mutate func(*config.Params), g scan.Grid, opts ...scan.Option) {
			p := fastParams()
			mutate(&p)
			_, err := scan.New(p, g, opts...)
			Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())
		},
		Entry("zero dt", func(p *config.Params) { p.Dt = 0 }, scan.Grid{Width: 8, Height: 8, Resolution: 1}),
		Entry("negative mass", func(p *config.Params) { p.Physics.M1 = -1 }, scan.Grid{Width: 8, Height: 8, Resolution: 1}),
		Entry("zero max time", func(p *config.Params) { p.MaxTime = 0 }, scan.Grid{Width: 8, Height: 8, Resolution: 1}),
		Entry("zero resolution", func(p *config.Params) {}, scan.Grid{Width: 8, Height: 8, Resolution: 0}),
		Entry("zero batch", func(p *config.Params) {}, scan.Grid{Width: 8, Height: 8, Resolution: 1}, scan.WithBatchSize(0)),
	)

	It("produces identical results on serial and parallel backends", func() {
		p := config.DefaultParams()
		p.MaxTime = 3
		g := scan.Grid{Width: 64, Height: 48, Resolution: 2}

		serial := &recorder{}
		s := newScanner(p, g, scan.WithSink(serial), scan.WithBackend(compute.NewSerial()), scan.WithBatchSize(300))
		Expect(scan.Run(ctx, s, nil)).To(Succeed())

		parallel := &recorder{}
		s = newScanner(p, g, scan.WithSink(parallel), scan.WithBackend(compute.NewParallel(4)), scan.WithBatchSize(300))
		Expect(scan.Run(ctx, s, nil)).To(Succeed())

		Expect(parallel.fills).To(HaveLen(g.Total()))
		Expect(parallel.fills).To(Equal(serial.fills))
	})
})
