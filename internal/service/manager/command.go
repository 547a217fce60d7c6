package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/oshokin/alarm-console/internal/config"
	"github.com/oshokin/alarm-console/internal/console"
	"github.com/oshokin/alarm-console/internal/core"
	"github.com/oshokin/alarm-console/internal/logger"
	"github.com/oshokin/alarm-console/internal/parse"
	"github.com/oshokin/alarm-console/internal/queue"
	"github.com/oshokin/alarm-console/internal/service/common"
)

// Options controls the alarm console process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// LogLevel overrides the configured minimum log level when set.
	LogLevel string
	// In overrides the input stream; nil means stdin. Test hook.
	In io.Reader
	// Out overrides the output stream; nil means stdout. Test hook.
	Out io.Writer
}

// banner lists the accepted command formats, printed at startup.
var banner = []string{
	"Alarm System Initialized. Enter commands in the following formats:",
	"  Start_Alarm(ID): Group(Group_ID) Interval Time Message",
	"  Change_Alarm(ID): Group(Group_ID) Time Message",
	"  Cancel_Alarm(ID)",
	"  Suspend_Alarm(ID)",
	"  Reactivate_Alarm(ID)",
	"  View_Alarms",
	"  quit or exit to terminate the program",
}

// Run starts the console and blocks until the user quits, input ends, or
// the context is cancelled.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "alarm-console")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	in := opts.In
	if in == nil {
		in = os.Stdin
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	con := console.New(in, out, cfg.Prompt)
	if err = con.Start(); err != nil {
		return fmt.Errorf("start console: %w", err)
	}

	defer func() {
		_ = con.Close()
	}()

	// Route all log output through the console so log lines never clobber
	// the input line the user is typing.
	levelName := cfg.LogLevel
	if opts.LogLevel != "" {
		levelName = opts.LogLevel
	}

	level, _ := logger.ParseLogLevel(levelName)
	log := logger.New(zap.NewAtomicLevelAt(level), con)
	logger.SetLogger(log)
	ctx = logger.ToContext(ctx, log)

	if actor, actorErr := common.DetectActor(); actorErr == nil {
		logger.InfoKV(ctx, "Alarm console session started",
			"hostname", actor.Hostname, "username", actor.Username)
	} else {
		logger.WarnKV(ctx, "Could not detect session actor", "error", actorErr)
	}

	for _, line := range banner {
		con.Print(line)
	}

	c := core.New(&core.Options{
		QueueCapacity: cfg.QueueCapacity,
		Tick:          cfg.Tick,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error { return c.RunDispatcher(groupCtx) })
	group.Go(func() error { return c.RunStarter(groupCtx) })
	group.Go(func() error { return c.RunChanger(groupCtx) })
	group.Go(func() error { return c.RunSuspender(groupCtx) })
	group.Go(func() error { return c.RunCanceller(groupCtx) })
	group.Go(func() error { return c.RunViewer(groupCtx) })

	// Release every blocked worker once the run winds down.
	go func() {
		<-groupCtx.Done()
		c.Shutdown()
	}()

	// The blocking terminal read stays outside the errgroup so a
	// signal-driven shutdown never waits on a keystroke.
	lines := make(chan string)

	go func() {
		defer close(lines)

		for {
			line, readErr := con.ReadLine()
			if readErr != nil {
				return
			}

			select {
			case lines <- line:
			case <-groupCtx.Done():
				return
			}
		}
	}()

	group.Go(func() error { return inputLoop(groupCtx, c, con, lines, cancel) })

	err = group.Wait()

	cancel()
	c.WaitDisplays()

	con.Print("Exiting alarm system...")

	return err
}

// inputLoop is the producer: it parses user lines and enqueues the
// resulting request records, logging each insertion with its ring slot.
func inputLoop(
	ctx context.Context,
	c *core.Core,
	con *console.Console,
	lines <-chan string,
	cancel context.CancelFunc,
) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				// End of input behaves like quit.
				cancel()

				return nil
			}

			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			if line == "quit" || line == "exit" {
				cancel()

				return nil
			}

			a, err := parse.Command(line, time.Now())
			if err != nil {
				con.Print("Error: " + err.Error())

				continue
			}

			index, err := c.Submit(a)
			if err != nil {
				if errors.Is(err, queue.ErrClosed) {
					return nil
				}

				return fmt.Errorf("enqueue request: %w", err)
			}

			logger.Infof(ctx,
				"Alarm Thread has Inserted %s Request(%d) at %d: %d into Circular_Buffer Index: %d",
				a.Kind, a.ID, time.Now().Unix(), a.Timestamp.Unix(), index)
		}
	}
}
