package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/nfrund/livetone/internal/feed"
	"github.com/nfrund/livetone/internal/pubsub"
	"github.com/nfrund/livetone/internal/script"
	"github.com/nfrund/livetone/internal/session"
	"github.com/nfrund/livetone/internal/transport"
)

var (
	runWatch   bool
	runFeedURL string
	runTag     string
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run a script through the execution gate",
	Long: `Validate and run a script with the LiveTone namespace bound.

With --watch the script runs again every time the file is saved. With
--feed the session joins a collaborator relay: code shared by others runs
after the script as read-only fragments, and --tag shares this script under
the given tag on every run. Either flag keeps the command running until it
is interrupted.

Examples:
  livetone run song.js
  livetone run song.js --watch
  livetone run song.js --feed ws://localhost:8080/ws --tag bass`,
	Args: cobra.ExactArgs(1),
	RunE: runHandler,
}

func runHandler(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(background(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	v, err := loadValidator()
	if err != nil {
		return err
	}

	tracer, cleanup, err := pubsub.SetupOTel(ctx, pubsub.TracingConfigFrom(cfg, version))
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer cleanup()

	feedURL := runFeedURL
	if feedURL == "" {
		feedURL = cfg.GetFeedURL()
	}
	live := runWatch || feedURL != ""

	bus := pubsub.NewWatermillBridgeWithTracer(tracer)
	defer bus.Close()
	if live {
		if err := printOutcomes(ctx, bus, cmd.OutOrStdout()); err != nil {
			return err
		}
	}

	clock := transport.NewClock()
	gate := transport.NewGate(clock)
	playing := transport.NewPlayingSet(clock)
	runner := script.NewGojaRunner(script.RunnerConfig{
		Limits: script.Limits{
			MaxExecutionTime: cfg.GetMaxExecutionTime(),
			MaxCallStackSize: cfg.GetMaxCallStackSize(),
		},
		ExposeTransport: cfg.GetExposeTransport(),
		HardenGlobals:   cfg.GetHardenGlobals(),
		DenyList:        v.DenyList(),
		Transport:       gate,
		Playing:         playing,
	})

	registry := script.NewRegistry(afero.NewOsFs())
	if err := registry.AddFile(session.MainFragment, args[0], true); err != nil {
		return err
	}

	sess := session.New(session.Config{
		Gate:                  script.NewGate(v, runner),
		Registry:              registry,
		Playing:               playing,
		Publisher:             bus,
		Source:                args[0],
		CancelTransportOnStop: cfg.GetCancelTransportOnStop(),
	})
	defer sess.Stop()

	rerun := sess.Rerun(ctx)

	var client *feed.Client
	if feedURL != "" {
		client = feed.NewClient(feedURL, func(state feed.ConnectionState, asError bool) {
			fmt.Fprintf(cmd.OutOrStdout(), "feed: %s\n", state)
			if asError {
				slog.Warn("Feed connection failed", "url", feedURL)
			}
		})
		if err := client.Open(ctx, sess.Receive(ctx, rerun)); err != nil {
			return err
		}
		defer client.Close()
	}

	share := func() {
		if client == nil || runTag == "" {
			return
		}
		main, err := registry.Fragment(session.MainFragment)
		if err == nil {
			err = client.Share(ctx, runTag, main.Source)
		}
		if err != nil {
			slog.Error("Failed to share code", "tag", runTag, "error", err)
		}
	}

	runErr := sess.Run(ctx)
	if runErr == nil {
		share()
	}

	if !live {
		if runErr != nil {
			fmt.Fprintln(cmd.OutOrStdout(), describe(runErr))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", sess.CodeState())
		if runErr != nil {
			return errInvalid
		}
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", sess.CodeState())

	if runWatch {
		onChange := func(name string) {
			rerun(name)
			if sess.Err() == nil {
				share()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", sess.CodeState())
		}
		if err := registry.Watch(ctx, onChange); err != nil {
			return err
		}
		defer registry.StopWatcher()
	}

	<-ctx.Done()
	return nil
}

// printOutcomes prints execution outcomes published on the bus.
func printOutcomes(ctx context.Context, bus pubsub.Subscriber, out io.Writer) error {
	if err := bus.Subscribe(ctx, pubsub.ExecutionError.Name(), func(_ context.Context, msg pubsub.Message) error {
		event, err := pubsub.Decode(pubsub.ExecutionError, msg)
		if err != nil || event.Cleared {
			return err
		}
		fmt.Fprintf(out, "%s: %s\n", event.Name, event.Message)
		return nil
	}); err != nil {
		return err
	}
	return bus.Subscribe(ctx, pubsub.ExecutionPlaying.Name(), func(_ context.Context, msg pubsub.Message) error {
		event, err := pubsub.Decode(pubsub.ExecutionPlaying, msg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "playing: %v\n", event.Fragments)
		return nil
	})
}

func init() {
	runCmd.Flags().BoolVarP(&runWatch, "watch", "w", false, "run again when the file changes")
	runCmd.Flags().StringVar(&runFeedURL, "feed", "", "collaborator relay URL; overrides LIVETONE_FEED_URL")
	runCmd.Flags().StringVar(&runTag, "tag", "", "share this script under tag on every run")
	rootCmd.AddCommand(runCmd)
}
