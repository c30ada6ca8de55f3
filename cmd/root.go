package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	arg "github.com/alexflint/go-arg"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ftahirops/celltop/config"
	"github.com/ftahirops/celltop/engine"
	"github.com/ftahirops/celltop/logging"
	"github.com/ftahirops/celltop/model"
	"github.com/ftahirops/celltop/publish"
	"github.com/ftahirops/celltop/report"
	"github.com/ftahirops/celltop/server"
	"github.com/ftahirops/celltop/ui"
)

// Version is set at build time via ldflags.
var Version = "0.1.0"

// Args are the command-line flags. Zero values defer to the config file.
type Args struct {
	Watch      bool     `arg:"-w,--watch" help:"CLI output mode: print the dashboard to the terminal on every refresh"`
	Count      int      `arg:"-n,--count" help:"number of refreshes for --watch (0 = until interrupted)"`
	JSON       bool     `arg:"--json" help:"print one snapshot with metrics and alerts as JSON, then exit"`
	MD         bool     `arg:"--md" help:"print one markdown report, then exit"`
	Serve      bool     `arg:"--serve" help:"run the HTTP/WebSocket server"`
	Interval   int      `arg:"-i,--interval" help:"refresh interval in seconds (config default: 5)"`
	NoAuto     bool     `arg:"--no-auto" help:"start with auto-refresh paused"`
	Process    []string `arg:"-p,--process" help:"process filter, e.g. CC,CV (default: all)"`
	Seed       int64    `arg:"--seed" help:"random seed for repeatable telemetry (0 = clock)"`
	Config     string   `arg:"-c,--config" help:"config file (default: $XDG_CONFIG_HOME/celltop/config.json)"`
	LogLevel   string   `arg:"-l,--log-level" help:"logging level (debug, info, warn, error)"`
	LogFile    string   `arg:"--log-file" help:"write logs to this file"`
	Listen     string   `arg:"--listen" help:"listen address for --serve"`
	MQTTBroker string   `arg:"--mqtt-broker" help:"publish every snapshot to this MQTT broker, e.g. tcp://localhost:1883"`
}

func (Args) Version() string {
	return "celltop v" + Version
}

func (Args) Description() string {
	return "celltop: battery cell charging monitor"
}

type mode int

const (
	modeTUI mode = iota
	modeWatch
	modeJSON
	modeMarkdown
	modeServe
)

// options is the result of layering flags over the loaded config.
type options struct {
	mode       mode
	count      int
	session    engine.SessionOptions
	seed       int64
	logLevel   string
	logFile    string
	listen     string
	mqtt       publish.Config
	alerts     engine.AlertConfig
	configPath string
}

// Run parses flags and starts the application.
func Run() error {
	var args Args
	p, err := arg.NewParser(arg.Config{Program: "celltop"}, &args)
	if err != nil {
		return err
	}
	switch err := p.Parse(os.Args[1:]); {
	case errors.Is(err, arg.ErrHelp):
		p.WriteHelp(os.Stdout)
		return nil
	case errors.Is(err, arg.ErrVersion):
		fmt.Println(args.Version())
		return nil
	case err != nil:
		p.WriteUsage(os.Stderr)
		return err
	}

	cfg, err := config.Load(args.Config)
	if err != nil {
		return err
	}
	opts, err := resolve(args, cfg)
	if err != nil {
		return err
	}

	log, closeLog, err := openLogger(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	ticker, store, closeTicker := buildTicker(opts, log)
	defer closeTicker()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch opts.mode {
	case modeJSON:
		v := engine.NewSession(ticker, opts.session).Refresh()
		return report.WriteJSON(os.Stdout, v, time.Now())
	case modeMarkdown:
		v := engine.NewSession(ticker, opts.session).Refresh()
		fmt.Print(report.Markdown(v))
		return nil
	case modeWatch:
		return runWatch(ctx, os.Stdout, engine.NewSession(ticker, opts.session), opts.count)
	case modeServe:
		return server.New(ticker, store, opts.session, log).Run(ctx, opts.listen)
	}

	m := ui.NewModel(ui.Options{
		Session:    engine.NewSession(ticker, opts.session),
		ConfigPath: opts.configPath,
		ReportDir:  report.Dir(),
		Log:        log,
	})
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// resolve layers command-line flags over cfg.
func resolve(args Args, cfg config.Config) (options, error) {
	opts := options{
		mode:       modeTUI,
		count:      args.Count,
		seed:       cfg.Seed,
		logLevel:   cfg.LogLevel,
		logFile:    cfg.LogFile,
		listen:     cfg.Server.Listen,
		configPath: args.Config,
		mqtt: publish.Config{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
		},
		alerts: engine.AlertConfig{
			Webhook: cfg.Alerts.Webhook,
			Command: cfg.Alerts.Command,
		},
	}

	selected := 0
	for _, m := range []struct {
		on   bool
		mode mode
	}{
		{args.Watch, modeWatch},
		{args.JSON, modeJSON},
		{args.MD, modeMarkdown},
		{args.Serve, modeServe},
	} {
		if m.on {
			opts.mode = m.mode
			selected++
		}
	}
	if selected > 1 {
		return opts, fmt.Errorf("--watch, --json, --md and --serve are mutually exclusive")
	}
	if args.Count < 0 {
		return opts, fmt.Errorf("--count must not be negative")
	}
	if args.Interval < 0 {
		return opts, fmt.Errorf("--interval must be positive")
	}

	intervalSec := cfg.IntervalSec
	if args.Interval > 0 {
		intervalSec = args.Interval
	}
	opts.session.Interval = time.Duration(intervalSec) * time.Second
	opts.session.AutoRefresh = cfg.AutoRefresh && !args.NoAuto

	names, explicit := cfg.Processes, cfg.ProcessesSet
	if len(args.Process) > 0 {
		names, explicit = args.Process, true
	}
	if explicit {
		procs, err := engine.ParseProcesses(names)
		if err != nil {
			return opts, err
		}
		opts.session.Processes = procs
	}

	if args.Seed != 0 {
		opts.seed = args.Seed
	}
	if args.LogLevel != "" {
		opts.logLevel = args.LogLevel
	}
	if args.LogFile != "" {
		opts.logFile = args.LogFile
	}
	if args.Listen != "" {
		opts.listen = args.Listen
	}
	if args.MQTTBroker != "" {
		opts.mqtt.Broker = args.MQTTBroker
	}
	return opts, nil
}

// openLogger returns the logger for the chosen mode. The TUI owns the
// terminal, so it only logs when a file is configured.
func openLogger(opts options) (*logrus.Logger, func(), error) {
	if opts.logFile != "" {
		f, err := logging.OpenFile(opts.logFile)
		if err != nil {
			return nil, nil, err
		}
		return logging.New(opts.logLevel, f), func() { f.Close() }, nil
	}
	if opts.mode == modeTUI {
		return logging.Discard(), func() {}, nil
	}
	return logging.New(opts.logLevel, os.Stderr), func() {}, nil
}

// buildTicker wires the engine with metrics, the optional MQTT publisher
// and the optional alert notifier.
func buildTicker(opts options, log logrus.FieldLogger) (engine.Ticker, *engine.MetricsStore, func()) {
	store := engine.NewMetricsStore()
	var t engine.Ticker = engine.NewEngine(opts.seed)
	t = engine.NewInstrumentedTicker(t, store)
	cleanup := func() {}

	if opts.mqtt.Broker != "" {
		pub, err := publish.Connect(opts.mqtt, log)
		if err != nil {
			log.WithError(err).Warn("mqtt disabled")
		} else {
			t = engine.NewPublishingTicker(t, pub, log)
			cleanup = pub.Close
		}
	}

	if n := engine.NewNotifier(opts.alerts, log); n.Enabled() {
		t = engine.NewAlertingTicker(t, n)
	}

	log.WithFields(logrus.Fields{
		"cells": model.CellCount,
		"seed":  opts.seed,
	}).Debug("engine ready")
	return t, store, cleanup
}
