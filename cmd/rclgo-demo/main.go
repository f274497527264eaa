// Command rclgo-demo drives an Executor against the simulated middleware
// (internal/simmw): a timer tick and a published topic message both
// dispatch through one spin loop until interrupted.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/loopwire/rclgo"
	"github.com/loopwire/rclgo/internal/dispatch"
	"github.com/loopwire/rclgo/internal/handle"
	"github.com/loopwire/rclgo/internal/logging"
	"github.com/loopwire/rclgo/internal/simmw"
	"github.com/loopwire/rclgo/internal/spin"
)

var (
	capacity     int
	timeout      time.Duration
	semanticsArg string
	tickInterval time.Duration
)

func main() {
	root := &cobra.Command{
		Use:           "rclgo-demo",
		Short:         "Run a deterministic rclgo executor against the simulated middleware",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	root.Flags().IntVar(&capacity, "capacity", rclgo.DefaultCapacity, "fixed handle-table capacity")
	root.Flags().DurationVar(&timeout, "timeout", rclgo.DefaultTimeout, "per-cycle wait-set timeout")
	root.Flags().StringVar(&semanticsArg, "semantics", "rclcpp", "dispatch semantics: rclcpp or let")
	root.Flags().DurationVar(&tickInterval, "tick", 500*time.Millisecond, "demo timer period")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rclgo-demo:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	semantics, err := parseSemantics(semanticsArg)
	if err != nil {
		return err
	}

	logger := logging.Default()

	executor := rclgo.NewExecutor()
	opts := rclgo.DefaultExecutorOptions(simmw.NewAllocator())
	opts.Capacity = capacity
	opts.Timeout = timeout
	opts.Semantics = semantics
	opts.Logger = logger
	opts.Observer = rclgo.NewMetrics()

	ctx := simmw.NewContext()
	if err := executor.Init(ctx, opts); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer executor.Fini()

	tickCount := 0
	timer, err := simmw.NewTimer(tickInterval, func() error {
		tickCount++
		logger.Infof("tick %d", tickCount)
		return nil
	})
	if err != nil {
		return fmt.Errorf("create timer: %w", err)
	}
	defer timer.Close()

	if err := executor.AddTimer(timer); err != nil {
		return fmt.Errorf("add timer: %w", err)
	}

	pub, sub, err := simmw.NewTopic(rclgo.DefaultQueueDepth)
	if err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	var msgBuf string
	if err := executor.AddSubscription(sub, &msgBuf, func(msg interface{}) {
		logger.Infof("received: %v", msg)
	}, handle.OnNewData); err != nil {
		return fmt.Errorf("add subscription: %w", err)
	}
	if err := pub.Publish("hello from rclgo-demo"); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Infof("shutdown signal received")
		ctx.Shutdown()
	}()

	logger.Infof("spinning: capacity=%d timeout=%s semantics=%s", capacity, timeout, semantics)
	if err := spin.Spin(executor); err != nil {
		return fmt.Errorf("spin: %w", err)
	}
	return nil
}

func parseSemantics(s string) (dispatch.Semantics, error) {
	switch s {
	case "rclcpp", "":
		return dispatch.RclcppLike, nil
	case "let":
		return dispatch.LET, nil
	default:
		return dispatch.RclcppLike, fmt.Errorf("unknown semantics %q (want rclcpp or let)", s)
	}
}
