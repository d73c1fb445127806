// Murmuration runs a flock in the terminal.
//
// Keys: space pauses, left/right orbit the camera, a toggles the world axes, q or Esc quits.
// The scenario is read from -config (YAML or TOML); logs go to the file named in it.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"github.com/akmonengine/flock"
	"github.com/akmonengine/flock/actor"
	"github.com/akmonengine/flock/camera"
	"github.com/akmonengine/flock/config"
	"github.com/akmonengine/flock/render"
	"github.com/akmonengine/flock/wind"
	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

// cellAspect is the height of a terminal cell over its width
const cellAspect = 2

type Simulation struct {
	conf   *config.Config
	flock  *flock.Flock
	wind   *wind.System
	rng    *rand.Rand
	props  actor.PhysicalProps
	logger *zap.Logger

	expired int
	paused  bool
	ticks   int
}

func NewSimulation(conf *config.Config, logger *zap.Logger) *Simulation {
	seed := conf.Flock.Seed
	s := &Simulation{
		conf:   conf,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		props:  conf.Props(),
		logger: logger,
	}

	vehicles := make([]*actor.Vehicle, conf.Flock.Size)
	for i := range vehicles {
		vehicles[i] = s.spawn()
	}

	s.flock = flock.New(vehicles...)
	s.flock.Workers = conf.Flock.Workers
	s.flock.OctreeCapacity = conf.Flock.OctreeCapacity
	s.flock.Logger = logger
	s.flock.Events.Subscribe(flock.VEHICLE_EXPIRED, func(event flock.Event) {
		s.expired++
	})

	if conf.Wind.Enabled {
		s.wind = wind.New(wind.PerlinNoise(conf.Wind.Seed))
		s.wind.NoiseScale = conf.Wind.NoiseScale
		s.wind.TimeScale = conf.Wind.TimeScale
	}

	return s
}

// spawn creates a vehicle at a random point of the spawn sphere, heading in a random direction
func (s *Simulation) spawn() *actor.Vehicle {
	r := s.conf.Flock.SpawnRadius * math.Cbrt(s.rng.Float64())
	position := s.randomDirection().Mul(r)
	forward := s.randomDirection()

	v := actor.NewVehicleOriented(position, forward, mgl64.Vec3{0, 0, 1}, s.props)
	v.Velocity = forward.Mul(actor.RandomRange(s.rng, 0.5, 1) * s.props.MaxVelocity)
	return v
}

func (s *Simulation) randomDirection() mgl64.Vec3 {
	z := actor.RandomRange(s.rng, -1, 1)
	phi := actor.RandomRange(s.rng, 0, 2*math.Pi)
	rho := math.Sqrt(1 - z*z)
	return mgl64.Vec3{rho * math.Cos(phi), rho * math.Sin(phi), z}
}

// Step advances the simulation by one tick unless it is paused
func (s *Simulation) Step() {
	if s.paused {
		return
	}
	conf := s.conf.Flock

	if s.wind != nil {
		s.wind.Advance()
		s.flock.ApplyWind(s.wind, s.conf.Wind.Multiplier)
	}
	s.flock.Flock(conf.Separate, conf.Align, conf.Cohere, conf.NeighborDistance)
	if conf.Wander {
		s.flock.Wander(s.rng)
	}
	if conf.HomeRadius > 0 {
		for _, v := range s.flock.Vehicles {
			if v.Position().Len() > conf.HomeRadius {
				v.AccumulateSteer(v.Position().Mul(-1).Normalize(), actor.MaxVelocity)
			}
		}
		s.flock.ApplyAggregateSteer()
	}

	s.flock.Update()

	// keep the population constant
	for ; s.expired > 0; s.expired-- {
		s.flock.Add(s.spawn())
	}
	s.ticks++
}

func (s *Simulation) TogglePause() {
	s.paused = !s.paused
	s.logger.Info("pause toggled", zap.Bool("paused", s.paused), zap.Int("tick", s.ticks))
}

func main() {
	configPath := flag.String("config", "", "scenario file (.yaml, .yml or .toml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	conf := config.Default()
	if configPath != "" {
		var err error
		if conf, err = config.Load(configPath); err != nil {
			return err
		}
	}

	logger, err := newLogger(conf.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}

	sim := NewSimulation(conf, logger)
	cols, rows := screen.Size()
	width, height := float64(cols), float64(rows*cellAspect)
	cam := camera.New(conf.CameraConfig(width, height))
	canvas := render.NewTerminalCanvas(screen, width, height)
	canvas.Style = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	scene := render.Scene{Camera: cam, Canvas: canvas}

	logger.Info("murmuration started",
		zap.Int("vehicles", sim.flock.Len()),
		zap.Int("columns", cols),
		zap.Int("rows", rows),
	)

	events := make(chan tcell.Event, 100)
	done := make(chan struct{})
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return nil
			}
			select {
			case events <- ev:
			case <-done:
				return nil
			case <-ctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		// Fini makes PollEvent return nil, which stops the poller
		defer screen.Fini()
		defer close(done)

		ticker := time.NewTicker(time.Second / time.Duration(conf.TickRate))
		defer ticker.Stop()

		orbit := mgl64.DegToRad(conf.Camera.OrbitStep)
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()

			case ev := <-events:
				switch ev := ev.(type) {
				case *tcell.EventKey:
					switch {
					case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
						(ev.Key() == tcell.KeyRune && ev.Rune() == 'q'):
						logger.Info("murmuration stopped", zap.Int("tick", sim.ticks))
						return nil
					case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
						sim.TogglePause()
					case ev.Key() == tcell.KeyRune && ev.Rune() == 'a':
						scene.ShowAxes = !scene.ShowAxes
					case ev.Key() == tcell.KeyLeft:
						cam.Orbit(-orbit)
					case ev.Key() == tcell.KeyRight:
						cam.Orbit(orbit)
					}

				case *tcell.EventResize:
					screen.Sync()
					cols, rows := screen.Size()
					width, height := float64(cols), float64(rows*cellAspect)
					cam.ResizeViewport(width, height)
					canvas.Resize(width, height)
				}

			case <-ticker.C:
				sim.Step()
				scene.Draw(sim.flock.Vehicles)
			}
		}
	})

	return g.Wait()
}

func newLogger(conf config.LogConfig) (*zap.Logger, error) {
	if conf.Path == "" {
		return zap.NewNop(), nil
	}

	level, err := zapcore.ParseLevel(conf.Level)
	if err != nil {
		return nil, err
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{conf.Path},
		ErrorOutputPaths: []string{conf.Path},
		DisableCaller:    true,
	}
	return zapConfig.Build()
}
