package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/timesheet-ledger/internal/config"
	"github.com/Tiliavir/timesheet-ledger/internal/kvstore"
	"github.com/Tiliavir/timesheet-ledger/internal/session"
)

var rootCmd = &cobra.Command{
	Use:   "tsg",
	Short: "Timesheet ledger - record work sessions and export CSV reports",
	Long: `tsg is an offline, single-user timesheet ledger.
Customers, projects and entries are stored locally in ~/.tsg/ (or $TSG_HOME).`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(customerCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(storageCmd)
}

// env is everything a command needs to do its work.
type env struct {
	base  string
	cfg   config.Config
	l     *slog.Logger
	store kvstore.Store
	sess  *session.Session
	now   func() time.Time
}

func (e *env) close() {
	closeStore(e.store)
}

func closeStore(s kvstore.Store) {
	if c, ok := s.(io.Closer); ok {
		_ = c.Close()
	}
}

// newLogger writes text logs to w at the configured level.
func newLogger(w io.Writer, cfg config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.LogLevel()}))
}

// openEnv loads config, opens the store and boots the session. Failures here
// are fatal, so it exits with code 2 like the other storage errors.
func openEnv() *env {
	base, err := config.BaseDir()
	if err != nil {
		fail(2, err)
	}
	cfg, err := config.Load(base)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	l := newLogger(os.Stderr, cfg)

	store, err := kvstore.Open(cfg.Storage.Backend, cfg.DataDir(base))
	if err != nil {
		fail(2, err)
	}
	l.Debug("storage opened", slog.String("backend", cfg.Storage.Backend), slog.String("dir", cfg.DataDir(base)))

	return &env{
		base:  base,
		cfg:   cfg,
		l:     l,
		store: store,
		sess:  session.Open(store, session.Options{Now: time.Now, Logger: l}),
		now:   time.Now,
	}
}

// check reports err and exits unless it is only a storage notice. Validation
// errors exit 1, anything else 2.
func check(err error) {
	if err == nil {
		return
	}
	if session.IsNotice(err) {
		fmt.Fprintf(os.Stderr, "Warning: change kept for this session only, it could not be saved: %v\n", err)
		return
	}
	if session.IsValidation(err) {
		fail(1, err)
	}
	fail(2, err)
}

func fail(code int, err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}
