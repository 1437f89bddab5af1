// Command hexapod reads inverse-kinematics telemetry from a hexapod's motion
// controller, reconstructs each leg's joint positions and reports live
// per-leg state.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/banshee-data/hexapod.report/internal/config"
	"github.com/banshee-data/hexapod.report/internal/kinematics"
	"github.com/banshee-data/hexapod.report/internal/legtelemetry"
	"github.com/banshee-data/hexapod.report/internal/monitoring"
	"github.com/banshee-data/hexapod.report/internal/pipeline"
	"github.com/banshee-data/hexapod.report/internal/render"
	"github.com/banshee-data/hexapod.report/internal/robotstate"
	"github.com/banshee-data/hexapod.report/internal/serialport"
	"github.com/banshee-data/hexapod.report/internal/synthetic"
	"github.com/banshee-data/hexapod.report/internal/timeutil"
	"github.com/banshee-data/hexapod.report/internal/version"
)

const defaultConfigFile = "config.yaml"

// legActiveWindow is how recently a leg must have reported to count as
// active in the status line.
const legActiveWindow = time.Second

type options struct {
	configPath    string
	port          string
	replay        string
	demo          string
	rate          int
	duration      time.Duration
	plotPath      string
	chartPath     string
	writeDefault  string
	listPorts     bool
	echo          bool
	verbose       bool
	showVersion   bool
	configChanged bool
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stdout io.Writer) (*options, error) {
	var o options
	flagSet := pflag.NewFlagSet("hexapod", pflag.ContinueOnError)
	flagSet.SetOutput(stdout)
	flagSet.StringVar(&o.configPath, "config", defaultConfigFile, "configuration file (YAML)")
	flagSet.StringVar(&o.port, "port", "", "serial port, overriding serial.port from the config")
	flagSet.StringVar(&o.replay, "replay", "", "replay a captured console log instead of reading the serial port")
	flagSet.StringVar(&o.demo, "demo", "", "generate synthetic telemetry: tripod or wave")
	flagSet.IntVar(&o.rate, "rate", 0, "consumer updates per second, overriding pipeline.update_rate")
	flagSet.DurationVar(&o.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	flagSet.StringVar(&o.plotPath, "plot", "", "write a top-view image of the final state to this file (.png, .svg, .pdf)")
	flagSet.StringVar(&o.chartPath, "chart", "", "write an interactive HTML top view of the final state to this file")
	flagSet.StringVar(&o.writeDefault, "write-default-config", "", "write the default configuration to this path and exit")
	flagSet.BoolVar(&o.listPorts, "list-ports", false, "list serial ports and exit")
	flagSet.BoolVarP(&o.echo, "echo", "e", false, "print every record as it is merged")
	flagSet.BoolVarP(&o.verbose, "verbose", "v", false, "log per-line diagnostics")
	flagSet.BoolVar(&o.showVersion, "version", false, "print version information and exit")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if o.replay != "" && o.demo != "" {
		return nil, errors.New("--replay and --demo are mutually exclusive")
	}
	o.configChanged = flagSet.Changed("config")
	return &o, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, err := parseFlags(args, stdout)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	monitoring.SetVerbose(o.verbose)

	if o.showVersion {
		fmt.Fprintln(stdout, version.String("hexapod"))
		return nil
	}
	if o.writeDefault != "" {
		if err := config.WriteDefault(o.writeDefault); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Default configuration created at: %s\n", o.writeDefault)
		return nil
	}
	if o.listPorts {
		ports, err := serialport.ListPorts()
		if err != nil {
			return fmt.Errorf("failed to list serial ports: %w", err)
		}
		for _, p := range ports {
			fmt.Fprintln(stdout, p)
		}
		return nil
	}

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}
	if o.rate != 0 {
		if cfg.Pipeline == nil {
			cfg.Pipeline = &config.PipelineConfig{}
		}
		cfg.Pipeline.UpdateRate = &o.rate
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("--rate: %w", err)
		}
	}
	geo, err := cfg.Geometry()
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Robot: %d legs configured\n%s", kinematics.LegCount, render.GeometrySummary(geo))

	source, err := openSource(o, cfg, geo, stdout)
	if err != nil {
		return err
	}
	p, err := pipeline.New(source, pipeline.Options{Capacity: cfg.GetQueueCapacity()})
	if err != nil {
		source.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if o.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.duration)
		defer cancel()
	}

	clock := timeutil.RealClock{}
	state := robotstate.New(geo, clock)
	var sink pipeline.Sink = state
	if o.echo {
		sink = &echoSink{state: state, geo: geo, w: stdout}
	}

	if err := p.Start(ctx); err != nil {
		return err
	}
	log.Printf("pipeline %s: reading at %d updates/s", p.ID(), cfg.GetUpdateRate())
	consume(ctx, p, sink, state, clock, cfg.GetUpdateInterval(), stdout)

	runErr := p.Stop()
	p.Drain(sink)
	stats := p.Stats()
	log.Printf("pipeline %s: %s after %d lines, %d records, %d parse errors, %d dropped",
		p.ID(), p.State(), stats.LinesRead, stats.Parsed, stats.ParseFailures, stats.Dropped)

	scene := render.Scene{
		Title:    "Hexapod top view",
		Body:     render.Body{Length: cfg.Robot.Body.Length, Width: cfg.Robot.Body.Width},
		Geometry: geo,
		Snapshot: state.Snapshot(),
	}
	if err := writeOutputs(o, scene, stdout); err != nil {
		return err
	}
	return runErr
}

func loadConfig(o *options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err == nil {
		return cfg, nil
	}
	if !o.configChanged && errors.Is(err, os.ErrNotExist) {
		log.Printf("no %s found, using built-in defaults (see --write-default-config)", o.configPath)
		return config.DefaultConfig(), nil
	}
	return nil, err
}

func openSource(o *options, cfg *config.Config, geo *kinematics.Geometry, stdout io.Writer) (pipeline.LineSource, error) {
	switch {
	case o.demo != "":
		pattern, err := synthetic.ParsePattern(o.demo)
		if err != nil {
			return nil, err
		}
		gen, err := synthetic.NewGenerator(geo, pattern, timeutil.RealClock{})
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(stdout, "Starting %s pattern demo...\n", pattern)
		return gen, nil
	case o.replay != "":
		src, err := serialport.OpenReplay(o.replay)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(stdout, "Replaying %s\n", o.replay)
		return src, nil
	default:
		port := cfg.GetPort()
		if o.port != "" {
			port = o.port
		}
		opts := cfg.PortOptions()
		src, err := serialport.Open(port, opts)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(stdout, "Connected to %s at %d baud\n", port, opts.BaudRate)
		return src, nil
	}
}

// consume drains the pipeline every interval until ctx ends or the
// producer stops, printing a status line once a second.
func consume(ctx context.Context, p *pipeline.Pipeline, sink pipeline.Sink, state *robotstate.State, clock timeutil.Clock, interval time.Duration, stdout io.Writer) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	lastStatus := clock.Now()
	var merged int
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.Done():
			return
		case now := <-ticker.C():
			merged += p.Drain(sink)
			if elapsed := now.Sub(lastStatus); elapsed >= time.Second {
				rate := float64(merged) / elapsed.Seconds()
				fmt.Fprintln(stdout, render.StatusLine(state.Snapshot(), p.Stats(), rate, legActiveWindow))
				lastStatus, merged = now, 0
			}
		}
	}
}

func writeOutputs(o *options, scene render.Scene, stdout io.Writer) error {
	if o.plotPath != "" {
		if err := render.WritePlot(scene, o.plotPath); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %s\n", o.plotPath)
	}
	if o.chartPath != "" {
		f, err := os.Create(o.chartPath)
		if err != nil {
			return fmt.Errorf("failed to create chart file: %w", err)
		}
		if err := render.WriteChart(f, scene); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to write chart file: %w", err)
		}
		fmt.Fprintf(stdout, "Wrote %s\n", o.chartPath)
	}
	return nil
}

// echoSink prints each record before merging it.
type echoSink struct {
	state *robotstate.State
	geo   *kinematics.Geometry
	w     io.Writer
}

func (e *echoSink) Merge(rec legtelemetry.LegTelemetry) {
	fmt.Fprintln(e.w, render.RecordLine(rec, e.geo))
	e.state.Merge(rec)
}
