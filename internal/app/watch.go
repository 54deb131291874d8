package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/laborwatch/internal/config"
	"github.com/blackwell-systems/laborwatch/internal/insight"
	"github.com/blackwell-systems/laborwatch/internal/watcher"
	"github.com/spf13/cobra"
)

var (
	watchDaemon    bool
	watchInterval  string
	watchStop      bool
	watchQuiet     bool
	watchNoPersist bool
	watchRegions   []string
)

const minWatchInterval = 30 * time.Second

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate insights on an interval and alert on new signals",
	Long: `Run a monitor that periodically evaluates the rule catalog for each
configured scope (watch.scopes in config.yaml). When a rule starts firing,
its insight is stored and a desktop notification and terminal alert are
emitted; when it stops firing, a cleared alert follows.

Examples:
  laborwatch watch                       # run in foreground (ctrl-c to stop)
  laborwatch watch --daemon              # run in background, write PID file
  laborwatch watch --interval 5m         # check every 5 minutes
  laborwatch watch --region NA --region EMEA
  laborwatch watch --stop                # stop the background daemon`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	watchCmd.Flags().StringVar(&watchInterval, "interval", "", "Check interval as duration string (default: watch.interval from config)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "Stop a running background daemon")
	watchCmd.Flags().BoolVar(&watchQuiet, "quiet", false, "Suppress terminal output, only send notifications")
	watchCmd.Flags().BoolVar(&watchNoPersist, "no-persist", false, "Alert on new signals without storing them")
	watchCmd.Flags().StringSliceVar(&watchRegions, "region", nil, "Watch only these regions (overrides watch.scopes)")
	rootCmd.AddCommand(watchCmd)
}

// pidFilePath returns the path to the daemon PID file.
func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.pid")
}

// logFilePath returns the path to the daemon log file.
func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "watch.log")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchStop {
		return stopDaemon(cmd.OutOrStdout())
	}

	if watchDaemon {
		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config dir: %w", err)
		}
		logFile, err := os.OpenFile(logFilePath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer func() { _ = logFile.Close() }()

		e, err := setup(logFile)
		if err != nil {
			return err
		}
		defer e.Close()
		interval, err := resolveInterval(e.cfg)
		if err != nil {
			return err
		}
		return runDaemon(e, interval, logFile)
	}

	e, err := setup(nil)
	if err != nil {
		return err
	}
	defer e.Close()
	interval, err := resolveInterval(e.cfg)
	if err != nil {
		return err
	}
	return runForeground(cmd.OutOrStdout(), e, interval)
}

func resolveInterval(cfg *config.Config) (time.Duration, error) {
	interval := cfg.Watch.Interval
	if watchInterval != "" {
		d, err := time.ParseDuration(watchInterval)
		if err != nil {
			return 0, fmt.Errorf("invalid interval %q: %w", watchInterval, err)
		}
		interval = d
	}
	if interval < minWatchInterval {
		return 0, fmt.Errorf("interval must be at least %s, got %s", minWatchInterval, interval)
	}
	return interval, nil
}

// watchScopes resolves the scopes to watch: --region flags win over
// watch.scopes, and empty fields fall back to the configured defaults.
func watchScopes(cfg *config.Config) []insight.Scope {
	configured := cfg.Watch.Scopes
	if len(watchRegions) > 0 {
		configured = make([]config.Scope, 0, len(watchRegions))
		for _, r := range watchRegions {
			configured = append(configured, config.Scope{Region: r})
		}
	}
	scopes := make([]insight.Scope, 0, len(configured))
	for _, s := range configured {
		s = cfg.ResolveScope(s)
		scopes = append(scopes, insight.Scope{Company: s.Company, Region: s.Region, Function: s.Function})
	}
	return scopes
}

// newWatcher builds a watcher over the configured scopes that persists newly
// firing insights unless --no-persist is set.
func newWatcher(e *env, interval time.Duration, alertFn func(watcher.Alert)) *watcher.Watcher {
	var persister watcher.Persister
	if !watchNoPersist {
		persister = e.db
	}
	w := watcher.New(e.gen, persister, watchScopes(e.cfg), interval, alertFn)
	w.SetLogger(e.log.Named("watcher"))
	return w
}

// runForeground runs the watcher in the foreground with live terminal output.
func runForeground(out io.Writer, e *env, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	scopes := watchScopes(e.cfg)
	if !watchQuiet {
		fmt.Fprintf(out, "laborwatch watching %d scope(s)... (checking every %s)\n", len(scopes), interval)
	}

	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)
		e.metrics.AlertEmitted(a.Level)
		if !watchQuiet {
			printAlert(out, a)
		}
	}

	err := newWatcher(e, interval, alertFn).Run(ctx)
	if errors.Is(err, context.Canceled) {
		if !watchQuiet {
			fmt.Fprintln(out, "\nStopped.")
		}
		return nil
	}
	return err
}

// runDaemon writes the PID file, then runs the watcher. The actual
// backgrounding should be done by the caller (nohup, &, etc.) since Go
// cannot reliably fork.
func runDaemon(e *env, interval time.Duration, logFile io.Writer) error {
	if pid, err := readPID(); err == nil {
		if processExists(pid) {
			return fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file.
		_ = os.Remove(pidFilePath())
	}

	pid := os.Getpid()
	if err := os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer func() { _ = os.Remove(pidFilePath()) }()

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	writeLog(logFile, "laborwatch daemon started (PID %d, interval %s)", pid, interval)

	alertFn := func(a watcher.Alert) {
		_ = watcher.Notify(a)
		e.metrics.AlertEmitted(a.Level)
		writeLog(logFile, "[%s] %s: %s", a.Level, a.Title, a.Message)
	}

	err := newWatcher(e, interval, alertFn).Run(ctx)
	if errors.Is(err, context.Canceled) {
		writeLog(logFile, "daemon stopped")
		return nil
	}
	return err
}

// readPID reads the daemon PID from the PID file.
func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

// writeLog writes a timestamped line to the log file.
func writeLog(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	_, _ = fmt.Fprintf(w, "[%s] %s\n", timestamp, msg)
}

// printAlert formats and prints an alert to the terminal.
func printAlert(w io.Writer, a watcher.Alert) {
	timestamp := a.Time.Format("15:04:05")
	fmt.Fprintf(w, "[%s] %s %s\n", timestamp, alertIcon(a.Level), a.Title)
	if a.Message != "" {
		fmt.Fprintf(w, "         %s\n", a.Message)
	}
	if a.Insight != nil && a.Insight.Recommendation != "" {
		fmt.Fprintf(w, "         -> %s\n", a.Insight.Recommendation)
	}
}

// alertIcon returns the terminal indicator for an alert level.
func alertIcon(level string) string {
	switch level {
	case "critical":
		return "\xf0\x9f\x94\xb4" // red circle
	case "warning":
		return "\xe2\x9a\xa0\xef\xb8\x8f" // warning sign
	case "info":
		return "\xe2\x9c\x93" // check mark
	default:
		return " "
	}
}
