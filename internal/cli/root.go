package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sadopc/focuslog/internal/config"
	"github.com/sadopc/focuslog/internal/focus"
	"github.com/sadopc/focuslog/internal/logging"
	"github.com/sadopc/focuslog/internal/store"
	"github.com/sadopc/focuslog/internal/tui"
)

// app carries what every command needs once the persistent pre-run has
// opened the data directory.
type app struct {
	v       *viper.Viper
	cfgFile string
	now     func() time.Time

	cfg     *config.Config
	store   *store.Store
	svc     *focus.Service
	log     *slog.Logger
	closers []io.Closer

	// Swapped out in tests.
	isTerminal func() bool
	runTUI     func(tui.Deps) error
}

func newApp() *app {
	return &app{v: config.New(), now: time.Now, isTerminal: stdoutIsTerminal, runTUI: tui.Run}
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Execute runs the root command against os.Args.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "focuslog",
		Short: "Focus timer, daily tasks and weekday time blocks",
		Long: `focuslog runs focus sessions against a per-day task list, suggests breaks,
recovers sessions left open by a crash and keeps weekday time blocks per project.
Run without arguments on a terminal to open the interactive view.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return a.open() },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return a.close() },
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.isTerminal() {
				return cmd.Help()
			}
			return a.runTUI(tui.Deps{
				Store:   a.store,
				Service: a.svc,
				Log:     a.log,
				Now:     a.now,
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default <data-dir>/config.yaml)")
	pf.String("data-dir", "", "data directory")
	pf.String("backend", "", "collections backend: sqlite or diskv")
	pf.Bool("json", false, "output JSON")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	bindFlag(a.v, "data_dir", pf.Lookup("data-dir"))
	bindFlag(a.v, "collections_backend", pf.Lookup("backend"))
	bindFlag(a.v, "json", pf.Lookup("json"))
	bindFlag(a.v, "log_level", pf.Lookup("log-level"))

	root.AddCommand(
		taskCmd(a),
		sessionCmd(a),
		breakCmd(a),
		orphansCmd(a),
		adviseCmd(a),
		blockCmd(a),
		exportCmd(a),
	)
	return root
}

// open loads the configuration and opens the log file, the SQLite store and
// the collections backend.
func (a *app) open() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	log, lc, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = log
	a.closers = append(a.closers, lc)

	s, err := store.New(store.DefaultDBPath(cfg.DataDir))
	if err != nil {
		a.close()
		return fmt.Errorf("open database: %w", err)
	}
	a.store = s
	a.closers = append(a.closers, s)

	var backend focus.Backend = s
	if cfg.CollectionsBackend == config.BackendDiskv {
		backend = store.NewDiskvCollections(cfg.CollectionsDir())
	}
	a.svc = focus.NewService(backend, log)
	log.Debug("opened", "data_dir", cfg.DataDir, "backend", cfg.CollectionsBackend)
	return nil
}

func (a *app) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func (a *app) jsonOutput() bool {
	return a.v.GetBool("json")
}
