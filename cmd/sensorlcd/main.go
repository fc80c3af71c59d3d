package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-stack/stack"
	"github.com/karlmutch/envflag"
	"github.com/karlmutch/errors"
	log "github.com/mgutz/logxi/v1"

	"github.com/luki/sensorlcd/internal/api"
	"github.com/luki/sensorlcd/internal/config"
	"github.com/luki/sensorlcd/internal/logging"
	"github.com/luki/sensorlcd/internal/monitor"
	"github.com/luki/sensorlcd/internal/render"
	"github.com/luki/sensorlcd/internal/runner"
	"github.com/luki/sensorlcd/internal/sensor"
	"github.com/luki/sensorlcd/internal/store"
	"github.com/luki/sensorlcd/internal/viewer"
)

var (
	logger = logging.New("sensorlcd")

	configPath = flag.String("config", "", "JSON or YAML configuration file; defaults are used when empty")
	deviceUID  = flag.String("device", "", "uid of the LCD device; the first device with an LCD is used when empty")
	deviceName = flag.String("device-name", "", "device name for shape detection when the daemon is not asked (render, local source)")
	outPath    = flag.String("out", "frame.png", "output file for render, and for frames saved from preview")
	upload     = flag.Bool("upload", false, "preview also uploads frames to the device")
	verbose    = flag.Bool("v", false, "When enabled will print debug logging from every package of this tool")
)

func usage() {
	fmt.Fprintln(os.Stderr, path.Base(os.Args[0]))
	fmt.Fprintln(os.Stderr, "usage: ", os.Args[0], "[options] run|render|preview|log|init")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Renders sensor readings as bar graphs for a cooling device's LCD")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run      poll, render and upload a frame every refresh interval")
	fmt.Fprintln(os.Stderr, "  render   render one frame to -out")
	fmt.Fprintln(os.Stderr, "  preview  show the frame loop in the terminal")
	fmt.Fprintln(os.Stderr, "  log      browse the reading log")
	fmt.Fprintln(os.Stderr, "  init     write the default configuration to -config")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Environment Variables:")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "options can also be extracted from environment variables by changing dashes '-' to underscores and using upper case.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "log levels are handled by the LOGXI env variables, these are documented at https://github.com/mgutz/logxi")
	fmt.Fprintln(os.Stderr, "-v is the same as LOGXI=*=DBG; LOGXI=render=DBG,api=DBG narrows debug output to some packages.")
}

func init() {
	flag.Usage = usage
}

func main() {
	if !flag.Parsed() {
		envflag.Parse()
	}
	if *verbose {
		logging.SetLevel(log.LevelDebug)
	}

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "run"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd {
	case "run":
		err = runDaemon(ctx)
	case "render":
		err = renderOnce(ctx)
	case "preview":
		err = preview(ctx)
	case "log":
		err = browseLog()
	case "init":
		err = writeDefaults()
	default:
		usage()
		os.Exit(2)
	}
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	if *configPath == "" {
		return config.Default(), nil
	}
	return config.Load(*configPath)
}

// session is what a command needs to produce frames.
type session struct {
	cfg    config.Config
	client *api.Client
	source sensor.Source
	target runner.Target
	engine *render.Engine
}

func newSession(ctx context.Context, needDevice bool) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	fonts, err := render.LoadFonts(cfg.Font.Face)
	if err != nil {
		return nil, err
	}
	s := &session{cfg: cfg, engine: render.NewEngine(fonts), target: runner.Target{Name: *deviceName}}

	d := cfg.Daemon
	s.client = api.NewClient(d.Address, d.Username, d.Password, time.Duration(d.Timeout)*time.Second)

	if cfg.Runtime.Source == "local" {
		s.source = sensor.LocalSource{}
	} else {
		s.source = api.Source{Client: s.client}
	}

	if !needDevice && cfg.Runtime.Source == "local" {
		return s, nil
	}

	uid := *deviceUID
	if uid == "" {
		uid = d.DeviceUID
	}
	devices, err := s.client.Devices(ctx)
	if err != nil {
		if needDevice {
			return nil, err
		}
		logger.Warn("daemon unreachable, using configured geometry", "err", err)
		return s, nil
	}
	dev, err := api.FindLCD(devices, uid)
	if err != nil {
		if needDevice {
			return nil, err
		}
		logger.Warn("no LCD device, using configured geometry", "err", err)
		return s, nil
	}
	s.target = runner.Target{UID: dev.UID, Name: dev.Name}
	if lcd, ok := dev.LCD(); ok && lcd.ScreenWidth > 0 && lcd.ScreenHeight > 0 {
		s.cfg.Display.Width = lcd.ScreenWidth
		s.cfg.Display.Height = lcd.ScreenHeight
	}
	logger.Info("lcd device", "name", dev.Name, "uid", dev.UID, "width", s.cfg.Display.Width, "height", s.cfg.Display.Height)
	return s, nil
}

func openRecorder(cfg config.Config) (runner.Recorder, func(), error) {
	if cfg.Runtime.LogDir == "" {
		return nil, func() {}, nil
	}
	ds, err := store.New(cfg.Runtime.LogDir)
	if err != nil {
		return nil, nil, err
	}
	return ds, ds.Close, nil
}

func runDaemon(ctx context.Context) error {
	s, err := newSession(ctx, true)
	if err != nil {
		return err
	}
	rec, closeRec, err := openRecorder(s.cfg)
	if err != nil {
		return err
	}
	defer closeRec()

	r := runner.New(s.cfg, s.source, s.engine, s.client, rec, s.target)

	// SIGHUP re-reads the config file and keeps the device geometry.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-hup:
				cfg, err := loadConfig()
				if err != nil {
					logger.Warn("reload failed, keeping current config", "err", err)
					continue
				}
				cfg.Display.Width = s.cfg.Display.Width
				cfg.Display.Height = s.cfg.Display.Height
				r.SetConfig(cfg)
			}
		}
	}()

	logger.Info("running", "device", s.target.Name, "interval", s.cfg.Runtime.RefreshEvery())
	return r.Run(ctx)
}

func renderOnce(ctx context.Context) error {
	s, err := newSession(ctx, false)
	if err != nil {
		return err
	}
	r := runner.New(s.cfg, s.source, s.engine, nil, nil, s.target)
	tick, err := r.Step(ctx)
	if err != nil {
		return err
	}
	if errGo := os.WriteFile(*outPath, tick.Encoded, 0644); errGo != nil {
		return errors.Wrap(errGo).With("path", *outPath).With("stack", stack.Trace().TrimRuntime())
	}
	if !tick.Frame.Drawn {
		logger.Warn("no active slot, wrote a blank frame", "path", *outPath)
	}
	fmt.Println(*outPath)
	return nil
}

func preview(ctx context.Context) error {
	s, err := newSession(ctx, *upload)
	if err != nil {
		return err
	}
	var up runner.Uploader
	if *upload {
		up = s.client
	}
	rec, closeRec, err := openRecorder(s.cfg)
	if err != nil {
		return err
	}
	defer closeRec()

	r := runner.New(s.cfg, s.source, s.engine, up, rec, s.target)
	p := tea.NewProgram(monitor.New(r, *outPath), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}

func browseLog() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return viewer.Run(cfg, cfg.Runtime.LogDir)
}

func writeDefaults() error {
	if *configPath == "" {
		return fmt.Errorf("init needs -config")
	}
	if _, errGo := os.Stat(*configPath); errGo == nil {
		return errors.New("refusing to overwrite existing config").With("path", *configPath)
	}
	return config.Save(*configPath, config.Default())
}
