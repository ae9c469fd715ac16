package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"pnmptrace/internal/analysis"
	"pnmptrace/internal/config"
	"pnmptrace/internal/feed"
	"pnmptrace/internal/output"
	"pnmptrace/internal/reporting"
	"pnmptrace/internal/trace"
	"pnmptrace/internal/tui"
)

var Version = "devel"

// tracerGrace bounds how long the dashboard waits for the tracer to
// stop after quitting.
const tracerGrace = 2 * time.Second

// negated flags turn a default-on display toggle off.
var negated = map[string]string{
	"no-netrom": "display.netrom",
	"no-l4":     "display.l4",
	"no-color":  "display.color",
	"no-inp3":   "display.inp3",
	"no-l3rtt":  "display.l3rtt",
	"no-blank":  "display.blank_line",
	"no-nodes":  "display.nodes",
	"no-stamp":  "display.timestamp",
	"no-ui":     "display.ui",
}

// bound flags map straight onto a config key.
var bound = map[string]string{
	"all":                 "filter.all",
	"from":                "filter.from",
	"port":                "filter.port",
	"protocol":            "filter.protocol",
	"reporter":            "filter.reporter",
	"to":                  "filter.to",
	"type":                "filter.type",
	"color-file":          "display.color_file",
	"header-line":         "display.header_line",
	"json":                "display.json",
	"quiet":               "display.quiet",
	"warnings":            "display.warnings",
	"width":               "display.width",
	"legacy-field-search": "display.legacy_search",
	"output":              "output",
	"input":               "input",
	"report":              "report",
	"tui":                 "tui",
	"log-level":           "log_level",
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "pnmptrace: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:   "pnmptrace",
		Short: "Decode PNMP L2Trace reports into AX25 packet traces",
		Long: `pnmptrace reads the JSON reports XRouter and BPQ nodes publish to the
Packet Network Monitoring Project and prints each L2Trace report as a
compact AX25 trace line, decoding NetRom, INP3, L3RTT, IP and ARP.

Pipe the reports in, for example:
  mosquitto_sub -h update.g8bpq.net -t in/udp | pnmptrace
or let pnmptrace start the producer itself:
  pnmptrace --input "exec:mosquitto_sub -h update.g8bpq.net -t in/udp"`,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadSettings(cmd, v, configFile); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.SortFlags = false

	f.BoolP("no-netrom", "3", false, "Disable NetRom layer 3 and above trace")
	f.BoolP("no-l4", "4", false, "Disable NetRom layer 4 trace")
	f.StringP("all", "a", "", "Show only frames to or from this callsign")
	f.BoolP("no-color", "c", false, "Disable colorization")
	f.BoolP("color-file", "C", false, "Include color codes in the capture file")
	f.StringP("from", "f", "", "Show only frames from this L2 source callsign")
	f.BoolP("header-line", "H", false, "Put the reporter header on its own line")
	f.BoolP("no-inp3", "i", false, "Disable INP3 content trace")
	f.BoolP("json", "j", false, "Show the raw JSON before each trace")
	f.BoolP("no-l3rtt", "k", false, "Hide L3RTT payloads")
	f.BoolP("no-blank", "l", false, "Suppress the blank line between traces")
	f.BoolP("no-nodes", "n", false, "Disable NODES content trace")
	f.StringP("output", "o", "", "Capture the trace to this file")
	f.IntP("port", "p", 0, "Show only frames on this port number")
	f.StringP("protocol", "P", "", "Show only frames with this L3 protocol")
	f.BoolP("quiet", "q", false, "Write the trace only to the capture file")
	f.StringP("reporter", "r", "", "Show only reports from this node")
	f.BoolP("no-stamp", "s", false, "Suppress the time stamp")
	f.StringP("to", "t", "", "Show only frames to this L2 destination callsign")
	f.StringP("type", "T", "", "Show only frames of this type (I, UI, RR...)")
	f.BoolP("no-ui", "u", false, "Hide UI frames")
	f.IntP("width", "w", config.DefaultConfig().Display.Width, "Display width for wrapping")
	f.BoolP("warnings", "W", false, "Warn about missing or unknown fields")

	f.String("input", "-", `Report source: "-" for stdin, a file, "exec:<command>" or a ws:// URL`)
	f.StringVar(&configFile, "config", "", "Config file (default ./pnmptrace.yaml or ~/.config/pnmptrace/pnmptrace.yaml)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.Bool("legacy-field-search", false, "Use the order-dependent textual field search")
	f.Bool("tui", false, "Show a live statistics dashboard instead of the trace")
	f.String("report", "", "Write an HTML session report to this file on exit")

	return cmd
}

// loadSettings layers flags over environment over config file over
// defaults.
func loadSettings(cmd *cobra.Command, v *viper.Viper, configFile string) error {
	config.SetDefaults(v)
	config.BindEnv(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("pnmptrace")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/pnmptrace")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	flags := cmd.Flags()
	for name, key := range bound {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	var err error
	flags.Visit(func(fl *pflag.Flag) {
		key, ok := negated[fl.Name]
		if !ok || err != nil {
			return
		}
		var off bool
		if off, err = flags.GetBool(fl.Name); err == nil {
			v.Set(key, !off)
		}
	})
	return err
}

func initLogger(level string, out io.Writer) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.TimeOnly,
	}).With().Timestamp().Logger()

	if err != nil {
		log.Warn().Str("provided_level", level).Msg("Invalid log level provided, using info")
	}
}

func run(parent context.Context, cfg config.Config) error {
	logOut := io.Writer(os.Stderr)
	if cfg.TUI {
		// The dashboard owns the terminal.
		logOut = io.Discard
	}
	initLogger(cfg.LogLevel, logOut)

	for _, notice := range cfg.Notices() {
		log.Info().Msg(notice)
	}

	interrupted, stop := interruptContext(parent)
	defer stop()

	// Cancelling the session stops the producer or websocket feed, which
	// unblocks any pending read.
	ctx, cancel := context.WithCancel(interrupted)
	defer cancel()

	// The capture file is opened before any input is read so a bad
	// path fails fast.
	var capture io.Writer
	if cfg.CaptureFile != "" {
		file, err := output.OpenCapture(cfg.CaptureFile)
		if err != nil {
			return err
		}
		defer file.Close()
		capture = file
		log.Info().Str("path", cfg.CaptureFile).Msg("Capturing trace to file")
	}

	in, err := feed.Open(ctx, cfg.Input)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil {
			log.Warn().Err(err).Msg("Closing input")
		}
	}()

	stats := analysis.NewTraceStats()
	if cfg.TUI {
		err = runDashboard(ctx, cancel, cfg, capture, in, stats)
	} else {
		out := output.New(os.Stdout, capture, cfg.Display)
		err = trace.New(cfg, out, stats).Run(ctx, in)
	}
	if interrupted.Err() != nil {
		log.Info().Msg("Interrupted")
		err = nil
	}

	if cfg.ReportFile != "" {
		name, rerr := reporting.GenerateSessionReport(stats, cfg.ReportFile)
		if rerr != nil {
			log.Error().Err(rerr).Msg("Writing session report")
		} else {
			log.Info().Str("path", name).Msg("Session report written")
		}
	}

	totals := stats.Totals()
	log.Info().
		Int64("displayed", totals.Displayed).
		Int64("filtered", totals.Filtered).
		Int64("dropped", totals.Dropped).
		Msg("Trace finished")
	return err
}

// interruptContext is cancelled by the first SIGINT or SIGTERM. The
// handler is released at once, so a second Ctrl-C kills the process
// even while a read is blocked on a terminal or FIFO.
func interruptContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}

// runDashboard traces in the background while the dashboard shows the
// statistics. Trace text only reaches the capture file. cancel stops the
// session; it is called when the dashboard quits so the tracer lets go
// of in before the caller closes it.
func runDashboard(ctx context.Context, cancel context.CancelFunc, cfg config.Config, capture io.Writer, in io.Reader, stats *analysis.TraceStats) error {
	out := output.New(nil, capture, cfg.Display)
	tracer := trace.New(cfg, out, stats)

	p := tea.NewProgram(tui.NewDashboardModel(stats, cfg.Input), tea.WithAltScreen(), tea.WithContext(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Send(tui.DoneMsg{Err: tracer.Run(ctx, in)})
	}()

	_, err := p.Run()
	cancel()

	// Standard input can't be interrupted; don't wait on it for long.
	select {
	case <-done:
	case <-time.After(tracerGrace):
		log.Debug().Msg("tracer still blocked on input")
	}

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
