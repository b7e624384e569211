package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/eggtimer-project/eggtimer/internal/chime"
	"github.com/eggtimer-project/eggtimer/internal/display"
	"github.com/eggtimer-project/eggtimer/internal/engine"
	"github.com/eggtimer-project/eggtimer/internal/loop"
	"github.com/eggtimer-project/eggtimer/internal/notify"
	"github.com/eggtimer-project/eggtimer/internal/preset"
	"github.com/eggtimer-project/eggtimer/pkg/color"
	"github.com/eggtimer-project/eggtimer/pkg/config"
	"github.com/eggtimer-project/eggtimer/pkg/errclass"
	"github.com/eggtimer-project/eggtimer/pkg/logging"
)

const logFileName = "eggtimer.log"

// finishLinger keeps a finished run on screen before --exit-on-finish quits.
var finishLinger = 3 * time.Second

const barRefresh = 100 * time.Millisecond

var (
	runMinutes  float64
	runStart    bool
	runExit     bool
	runDebug    preset.DebugFlag
	runDisplay  string
	runLogLevel string
)

var runCmd = &cobra.Command{
	Use:   "run [preset]",
	Short: "Run the timer",
	Long: `Run the timer.

Select a preset by name or number, or a custom duration with --minutes.
Without either the default preset from the config is used.

Keys while running:
  s, space  start or resume
  p         pause
  r         reset
  1-9       select a preset
  + / -     custom duration up or down by half a minute
  m, v, c   toggle sound, vibration (terminal bell), confetti
  q         quit

When stdin is not a terminal the run starts at once and exits after it
finishes.

Examples:
  eggtimer run                 # Default preset, press s to start
  eggtimer run soft --start    # Start a soft egg right away
  eggtimer run --minutes 7.5   # Custom duration
  eggtimer run --debug         # Medium preset lasts 10 seconds
  eggtimer run --debug=30 hard`,
	Args: cobra.MaximumNArgs(1),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, 0, len(preset.Builtins))
		for _, p := range preset.Builtins {
			names = append(names, p.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runTimer,
}

func runTimer(cmd *cobra.Command, args []string) error {
	cfg, d, err := loadConfig()
	if err != nil {
		return err
	}
	table, err := preset.NewTable(cfg.Presets)
	if err != nil {
		return err
	}
	sel, err := initialSelection(table, cfg, args)
	if err != nil {
		return err
	}
	mode := cfg.Display
	if runDisplay != "" {
		mode = runDisplay
	}

	log, closeLog, err := openRunLog(d, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	out := cmd.OutOrStdout()
	interactive := isInteractive()
	if interactive {
		restore, err := makeRaw(os.Stdin)
		if err != nil {
			log.WarnErr("raw mode unavailable, keyboard disabled", err)
			interactive = false
		} else {
			defer restore()
			out = &crlfWriter{w: out}
		}
	}

	scale := runDebug.Scale()
	if banner := scale.Banner(); banner != "" {
		fmt.Fprintln(out, color.Warning(banner))
	}

	surface, err := newSurface(mode, out, interactive)
	if err != nil {
		return err
	}
	defer surface.Close()

	l, err := loop.New(loop.WithLogger(log))
	if err != nil {
		return err
	}

	store, err := openNote()
	if err != nil {
		return err
	}
	if text, err := store.Load(); err != nil {
		log.WarnErr("load note failed", err)
	} else {
		surface.SetNote(text)
	}

	sess := &session{
		table: table,
		scale: scale,
		cfg:   cfg,
		save:  func(c *config.Config) error { return config.Save(appFs, d.Config, c) },
		log:   log,
	}
	if cfg.Journal {
		sess.journal = openJournal(d)
		sess.journal.SetLogger(log)
	}

	var vibrator notify.Vibrator
	if interactive {
		vibrator = &notify.BellVibrator{W: out, Scheduler: l}
	}
	notifier := notify.New(notify.Options{
		Scheduler: l,
		Prefs:     notify.PrefsFunc(sess.enabled),
		Chimer: &chime.Bell{
			Player:     newPlayer(chime.DefaultSampleRate),
			SampleRate: chime.DefaultSampleRate,
			Volume:     cfg.Volume,
			Logger:     log,
		},
		Vibrator: vibrator,
		Surface:  surface,
		Logger:   log,
	})
	eng := engine.New(l, surface, notifier)
	sess.eng = eng
	eng.SetObserver(sess.observe)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	sess.quit = stop
	if runExit || !interactive {
		sess.onFinish = func() { l.AfterFunc(finishLinger, stop) }
	}

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	defer cancelLoop()
	done := make(chan error, 1)
	go func() { done <- l.Run(loopCtx) }()

	autoStart := runStart || !interactive
	if err := l.Submit(func() {
		if err := sess.apply(sel); err != nil {
			log.ErrorErr("initial selection failed", err)
			stop()
			return
		}
		if autoStart {
			eng.Start()
		}
	}); err != nil {
		return err
	}

	if interactive {
		go readKeys(os.Stdin, func(b byte) {
			_ = l.Submit(func() { sess.handleKey(b) })
		})
	}

	log.Info("run started", map[string]any{"label": labelOf(sel), "debug": scale.Debug, "scale": scale.Factor()})

	select {
	case <-ctx.Done():
	case err := <-done:
		if err == nil {
			err = errors.New("stopped unexpectedly")
		}
		return fmt.Errorf("event loop: %w", err)
	}

	quiesced := make(chan struct{})
	if err := l.Submit(func() {
		eng.SetObserver(nil)
		eng.Pause()
		notifier.Cancel()
		close(quiesced)
	}); err == nil {
		select {
		case <-quiesced:
		case <-time.After(time.Second):
		}
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	if err := l.Shutdown(shutdownCtx); err != nil {
		log.Debug("loop shutdown", map[string]any{"error": err.Error()})
	}
	cancel()
	cancelLoop()
	<-done

	log.Info("run ended", map[string]any{"state": eng.State().String()})
	return nil
}

func labelOf(sel selection) string {
	if sel.custom {
		return "custom"
	}
	return sel.preset.Name
}

// initialSelection resolves the preset argument, --minutes, or the default
// preset.
func initialSelection(table *preset.Table, cfg *config.Config, args []string) (selection, error) {
	if runMinutes != 0 {
		if len(args) > 0 {
			return selection{}, errclass.ErrDurationInvalid.WithMessage("give a preset or --minutes, not both")
		}
		if runMinutes < preset.MinCustom || runMinutes > preset.MaxCustom {
			return selection{}, errclass.ErrDurationInvalid.WithMessagef("--minutes must be between %g and %g", preset.MinCustom, preset.MaxCustom)
		}
		return selection{custom: true, minutes: runMinutes}, nil
	}

	name := cfg.DefaultPreset
	if len(args) > 0 {
		name = args[0]
	}
	p, err := table.Lookup(name)
	if err != nil {
		return selection{}, err
	}
	return selection{preset: p}, nil
}

func newSurface(mode string, w io.Writer, interactive bool) (display.Surface, error) {
	switch mode {
	case config.DisplayBar:
		return display.NewBar(w, barRefresh), nil
	case config.DisplayPlain:
		return display.NewPlain(w, interactive), nil
	case config.DisplayAuto, "":
		if interactive {
			return display.NewBar(w, barRefresh), nil
		}
		return display.NewPlain(w, false), nil
	default:
		return nil, errclass.ErrConfigValue.WithMessagef("display must be auto, bar or plain, got %q", mode)
	}
}

// openRunLog sends logs to a file in the data dir so they do not tear the
// display. The returned func restores the previous global logger.
func openRunLog(d dirs, cfg *config.Config) (*logging.Logger, func(), error) {
	levelName := cfg.Logging.Level
	if runLogLevel != "" {
		levelName = runLogLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, nil, errclass.ErrConfigValue.WithMessage(err.Error())
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, nil, errclass.ErrConfigValue.WithMessage(err.Error())
	}

	if err := appFs.MkdirAll(d.Data, 0o755); err != nil {
		return nil, nil, errclass.ErrStorage.WithMessagef("create data dir: %v", err)
	}
	f, err := appFs.OpenFile(filepath.Join(d.Data, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, errclass.ErrStorage.WithMessagef("open log file: %v", err)
	}

	log := logging.New(f, level, format).WithFields(map[string]any{"pid": os.Getpid()})
	prev := logging.Global()
	logging.SetGlobal(log)
	return log, func() {
		logging.SetGlobal(prev)
		f.Close()
	}, nil
}

func makeRaw(f *os.File) (func(), error) {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	return func() { _ = term.Restore(fd, state) }, nil
}

// readKeys forwards every byte read from r until it fails.
func readKeys(r io.Reader, fn func(byte)) {
	buf := make([]byte, 16)
	for {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			fn(b)
		}
		if err != nil {
			return
		}
	}
}

// crlfWriter turns "\n" into "\r\n" while the terminal is in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c *crlfWriter) Write(p []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}

func init() {
	runCmd.Flags().Float64VarP(&runMinutes, "minutes", "m", 0, "custom duration in minutes (1-30)")
	runCmd.Flags().BoolVarP(&runStart, "start", "s", false, "start immediately")
	runCmd.Flags().BoolVar(&runExit, "exit-on-finish", false, "quit shortly after the timer finishes")
	f := runCmd.Flags().VarPF(&runDebug, "debug", "", "scale durations so the medium preset lasts this many seconds")
	f.NoOptDefVal = preset.NoOptDefault
	runCmd.Flags().StringVar(&runDisplay, "display", "", "renderer: auto, bar or plain (default from config)")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "", "log level for this run (default from config)")
	rootCmd.AddCommand(runCmd)
}
