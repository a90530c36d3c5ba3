package automation_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/chaosmap/internal/automation"
	"github.com/san-kum/chaosmap/internal/config"
	"github.com/san-kum/chaosmap/internal/dynamo"
	"github.com/san-kum/chaosmap/internal/storage"
)

const scenarioYAML = `
name: moons
description: gravity sweep
steps:
  - name: tiny-classic
    preset: classic
    width: 16
    height: 12
    resolution: 4
    params:
      max_time: 0.5
  - name: tiny-moon
    preset: moon
    width: 16
    height: 12
    resolution: 4
    save: false
    params:
      max_time: 0.5
sweeps:
  - param: g
    min: 1
    max: 3
    steps: 3
    template:
      name: grav
      width: 8
      height: 8
      resolution: 4
      params:
        max_time: 0.25
`

var _ = Describe("Scenario", func() {
	It("parses steps and expands sweeps", func() {
		sc, err := automation.ParseScenario([]byte(scenarioYAML))
		Expect(err).NotTo(HaveOccurred())
		Expect(sc.Name).To(Equal("moons"))
		Expect(sc.Steps).To(HaveLen(2))

		steps, err := sc.AllSteps()
		Expect(err).NotTo(HaveOccurred())
		Expect(steps).To(HaveLen(5))
		Expect(steps[2].Name).To(Equal("grav-g-1"))
		Expect(steps[3].Params).To(HaveKeyWithValue("g", 2.0))
		Expect(steps[4].Params).To(HaveKeyWithValue("max_time", 0.25))
		Expect(sc.Sweeps[0].Template.Params).NotTo(HaveKey("g"))
	})

	It("rejects a sweep without steps", func() {
		_, err := automation.Sweep{Param: "g"}.Expand()
		Expect(err).To(HaveOccurred())
	})

	It("resolves mode, preset and overrides in order", func() {
		step := automation.ScenarioStep{
			Mode:   "preview",
			Preset: "moon",
			Params: map[string]float64{"max_time": 5},
			Width:  320,
		}
		cfg, err := step.Settings(*config.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Physics.G).To(Equal(1.62))
		Expect(cfg.MaxTime).To(Equal(5.0))
		Expect(cfg.Width).To(Equal(320))
		Expect(cfg.Height).To(Equal(config.DefaultHeight))
		Expect(cfg.Resolution).To(Equal(8))
	})

	It("reports invalid overrides", func() {
		step := automation.ScenarioStep{Params: map[string]float64{"l1": 0}}
		_, err := step.Settings(*config.DefaultConfig())
		Expect(errors.Is(err, dynamo.ErrInvalidConfig)).To(BeTrue())

		step = automation.ScenarioStep{Preset: "jupiter"}
		_, err = step.Settings(*config.DefaultConfig())
		Expect(errors.Is(err, dynamo.ErrUnknownPreset)).To(BeTrue())
	})
})

var _ = Describe("Runner", func() {
	var (
		dir   string
		store *storage.Store
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		store = storage.New(filepath.Join(dir, "runs"))
	})

	It("renders every step and saves the ones marked for saving", func() {
		sc, err := automation.ParseScenario([]byte(scenarioYAML))
		Expect(err).NotTo(HaveOccurred())

		results, err := automation.NewRunner(*config.DefaultConfig(), store, nil).Run(context.Background(), sc)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(5))

		for _, r := range results {
			Expect(r.Result.Complete()).To(BeTrue())
		}
		Expect(results[0].RunID).NotTo(BeEmpty())
		Expect(results[1].RunID).To(BeEmpty())
		Expect(results[0].Result.Grid.Total()).To(Equal(12))

		runs, err := store.List()
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).To(HaveLen(4))
	})

	It("stops at the first failing step", func() {
		sc := &automation.Scenario{Steps: []automation.ScenarioStep{
			{Width: 8, Height: 8, Resolution: 4, Params: map[string]float64{"max_time": 0.1}},
			{Preset: "nope"},
			{Width: 8, Height: 8, Resolution: 4},
		}}

		results, err := automation.NewRunner(*config.DefaultConfig(), nil, nil).Run(context.Background(), sc)
		Expect(errors.Is(err, dynamo.ErrUnknownPreset)).To(BeTrue())
		Expect(results).To(HaveLen(1))
	})

	It("loads base settings named by the scenario", func() {
		base := config.DefaultConfig()
		base.Width, base.Height, base.Resolution = 12, 12, 6
		base.MaxTime = 0.2
		path := filepath.Join(dir, "base.yaml")
		Expect(config.Save(path, base)).To(Succeed())

		sc := &automation.Scenario{Base: path, Steps: []automation.ScenarioStep{{Name: "from-base"}}}
		results, err := automation.NewRunner(*config.DefaultConfig(), nil, nil).Run(context.Background(), sc)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(1))
		Expect(results[0].Result.Grid.Total()).To(Equal(4))
		Expect(results[0].Result.Params.MaxTime).To(Equal(0.2))
	})

	It("returns the context error when cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		sc := &automation.Scenario{Steps: []automation.ScenarioStep{{Width: 8, Height: 8, Resolution: 4}}}
		_, err := automation.NewRunner(*config.DefaultConfig(), store, nil).Run(ctx, sc)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())

		_, statErr := os.Stat(filepath.Join(dir, "runs"))
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})
})
