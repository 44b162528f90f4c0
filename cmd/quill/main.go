package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cuemby/quill/pkg/config"
	"github.com/cuemby/quill/pkg/index"
	"github.com/cuemby/quill/pkg/live"
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// errQuit signals a clean REPL exit via /quit.
var errQuit = errors.New("quit")

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill - Live in-memory text index",
	Long: `Quill maintains an in-memory inverted text index over watched
directory trees, kept current by filesystem change events. Queries stay
answerable while the index is being rebuilt underneath them.`,
	Version: Version,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Quill version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index [paths...]",
	Short: "Start the live indexer and the query REPL",
	Long: `Start the live indexer, optionally watching the given paths right
away, and read queries from stdin.

Lines starting with "/" are commands:

  /watch <paths...>     index the paths and watch them for changes
  /unwatch <paths...>   stop watching and drop the paths from the index
  /quit                 exit

Any other line is a query term; matching file paths are printed one per
line.`,
	RunE: runIndex,
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfgPath, _ := rootCmd.PersistentFlags().GetString("config")

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	// Flags win over the config file.
	if level, _ := rootCmd.PersistentFlags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
	}
	if jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json"); jsonOut {
		cfg.LogJSON = true
	}

	return cfg, nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})

	factory, err := cfg.Factory()
	if err != nil {
		return err
	}
	chain, err := cfg.NormalizerChain()
	if err != nil {
		return err
	}

	ix := index.New(factory)
	for _, n := range chain {
		ix = ix.WithNormalizer(n)
	}

	li, err := live.StartWithOptions(ix, live.Options{
		Debounce:  time.Duration(cfg.Debounce),
		QueueSize: cfg.QueueSize,
	})
	if err != nil {
		return fmt.Errorf("failed to start live indexer: %w", err)
	}
	defer li.Stop()

	for _, path := range args {
		if err := li.Watch(path); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux()}
	g.Go(func() error {
		log.Logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics endpoint listening")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return repl(ctx, li)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// repl reads lines from stdin: "/"-prefixed lines are commands, everything
// else is a query.
func repl(ctx context.Context, li *live.LiveIndexer) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if command, isCommand := strings.CutPrefix(line, "/"); isCommand {
				if err := runCommand(li, command); err != nil {
					return err
				}
				continue
			}

			runQuery(li, line)
		}
	}
}

func runCommand(li *live.LiveIndexer, command string) error {
	items := strings.Fields(command)
	if len(items) == 0 {
		return nil
	}

	switch items[0] {
	case "quit":
		return errQuit

	case "watch":
		for _, path := range items[1:] {
			if err := li.Watch(path); err != nil {
				return err
			}
		}

	case "unwatch":
		for _, path := range items[1:] {
			if err := li.Unwatch(path); err != nil {
				log.Logger.Warn().Err(err).Str("path", path).Msg("failed to unwatch")
				break
			}
		}

	default:
		fmt.Printf("unrecognised command: %s\n", strings.Join(items, " "))
	}

	return nil
}

func runQuery(li *live.LiveIndexer, term string) {
	start := time.Now()

	paths := li.Query(term).ToSlice()
	sort.Strings(paths)

	fmt.Printf(" :: %d matches:\n", len(paths))
	for _, path := range paths {
		fmt.Printf(" - %s\n", path)
	}

	log.Logger.Trace().
		Str("term", term).
		Dur("took", time.Since(start)).
		Msg("query executed")
}
