// Command protocell-headless drives the simulation core without a
// renderer, for local testing and benchmarking. It is not part of the
// core's public contract.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/voxlab/protocell"
	"github.com/voxlab/protocell/config"
	"github.com/voxlab/protocell/seed"
)

var (
	configPath string
	gridSize   int
	tickRate   int
	preset     string
	debug      bool

	runTicks int
	runJSON  bool

	benchTicks int

	inspectField string
)

var rootCmd = &cobra.Command{
	Use:   "protocell-headless",
	Short: "Run the voxel artificial-life core without a renderer",
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if gridSize > 0 {
		cfg.GridSize = gridSize
	}
	if tickRate > 0 {
		cfg.TickRate = tickRate
	}
	if preset != "" {
		cfg.Preset = seed.Name(preset)
	}
	if debug {
		cfg.Debug = true
	}
	return cfg, nil
}

func newCore(cfg *config.Config) (*protocell.Core, error) {
	logger := protocell.NewDefaultLogger("protocell-headless", cfg.Debug)
	core := protocell.NewCore(logger)
	var err error
	if cfg.GridSize > 0 {
		err = core.InitAtGridSize(cfg.Preset, cfg.GridSize)
	} else {
		err = core.Init(cfg.Preset)
	}
	if err != nil {
		return nil, fmt.Errorf("init core: %w", err)
	}
	core.FrameTiming().SetTickRate(cfg.TickRate)
	applyFeatureToggles(core, cfg.Features)
	return core, nil
}

// applyFeatureToggles switches a mechanic off by pushing its governing
// parameter to an extreme value, rather than adding a code path the tick
// pipeline has to branch on. A zero diffusion_rate stops neighbor
// blending, though heat and cold sources still shift their own cell; a
// zero predation_energy_fraction leaves predation in place but gives the
// predator no energy from its prey; and a replication_energy_min of 1e9
// is never reached, so no protocell replicates.
func applyFeatureToggles(core *protocell.Core, f config.FeatureToggles) {
	if !f.TemperatureDiffusion {
		core.SetParam("diffusion_rate", 0)
	}
	if !f.Predation {
		core.SetParam("predation_energy_fraction", 0)
	}
	if !f.Replication {
		core.SetParam("replication_energy_min", float32(1e9))
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation for a fixed number of ticks and print the final stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		core, err := newCore(cfg)
		if err != nil {
			return err
		}
		defer core.Close()

		dt := 1.0 / float64(cfg.TickRate)
		for i := 0; i < runTicks; i++ {
			if err := core.Frame(dt); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
		}

		printSnapshot(core.Snapshot(), runJSON)
		return nil
	},
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the simulation for a fixed number of ticks and report wall-clock throughput",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		core, err := newCore(cfg)
		if err != nil {
			return err
		}
		defer core.Close()

		dt := 1.0 / float64(cfg.TickRate)
		start := time.Now()
		for i := 0; i < benchTicks; i++ {
			if err := core.Frame(dt); err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
		}
		elapsed := time.Since(start)

		snap := core.Snapshot()
		fmt.Printf("ticks=%d elapsed=%s ticks_per_sec=%.1f grid=%d sparse=%v\n",
			benchTicks, elapsed, float64(benchTicks)/elapsed.Seconds(), snap.GridSize, snap.Sparse)
		printSnapshot(snap, runJSON)
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Run one tick and print a single snapshot field, for scripted checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		core, err := newCore(cfg)
		if err != nil {
			return err
		}
		defer core.Close()

		if err := core.Frame(1.0 / float64(cfg.TickRate)); err != nil {
			return fmt.Errorf("frame: %w", err)
		}

		snap := core.Snapshot()
		switch inspectField {
		case "population":
			fmt.Println(snap.Stats.Population)
		case "tick_count":
			fmt.Println(snap.TickCount)
		case "tier":
			fmt.Printf("%dx%dx%d sparse=%v\n", snap.GridSize, snap.GridSize, snap.GridSize, snap.Sparse)
		case "":
			printSnapshot(snap, runJSON)
		default:
			return fmt.Errorf("unknown inspect field %q", inspectField)
		}
		return nil
	},
}

func printSnapshot(snap protocell.CoreSnapshot, asJSON bool) {
	if asJSON {
		fmt.Printf(`{"grid_size":%d,"sparse":%v,"tick_count":%d,"population":%d,"max_energy":%d,"preset":%q}`+"\n",
			snap.GridSize, snap.Sparse, snap.TickCount, snap.Stats.Population, snap.Stats.MaxEnergy, snap.LastPreset)
		return
	}
	fmt.Printf("tick=%d grid=%d sparse=%v population=%d max_energy=%d preset=%s\n",
		snap.TickCount, snap.GridSize, snap.Sparse, snap.Stats.Population, snap.Stats.MaxEnergy, snap.LastPreset)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file overriding the embedded defaults")
	rootCmd.PersistentFlags().IntVar(&gridSize, "grid-size", 0, "override the configured grid size")
	rootCmd.PersistentFlags().IntVar(&tickRate, "tick-rate", 0, "override the configured tick rate")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "override the configured preset (petri-dish, gradient, arena, benchmark)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	runCmd.Flags().IntVar(&runTicks, "ticks", 100, "number of ticks to run")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the final snapshot as JSON")

	benchCmd.Flags().IntVar(&benchTicks, "ticks", 1000, "number of ticks to run")
	benchCmd.Flags().BoolVar(&runJSON, "json", false, "print the final snapshot as JSON instead of text")

	inspectCmd.Flags().StringVar(&inspectField, "field", "", "snapshot field to print (population, tick_count, tier); empty prints the full snapshot")
	inspectCmd.Flags().BoolVar(&runJSON, "json", false, "print the full snapshot as JSON when --field is empty")

	rootCmd.AddCommand(runCmd, benchCmd, inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
