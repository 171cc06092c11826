package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Iron-Ham/clusterexec/internal/capacity"
	"github.com/Iron-Ham/clusterexec/internal/config"
	"github.com/Iron-Ham/clusterexec/internal/coordinator"
	"github.com/Iron-Ham/clusterexec/internal/event"
	"github.com/Iron-Ham/clusterexec/internal/logging"
	"github.com/Iron-Ham/clusterexec/internal/metrics"
	"github.com/Iron-Ham/clusterexec/internal/overseer"
	"github.com/Iron-Ham/clusterexec/internal/task"
)

const metricsShutdownTimeout = 5 * time.Second

var errNoCapacity = errors.New("no overseers could be placed; add processors or lower coordinator.*_reserved_processors")

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the demo workload on the configured cluster",
	Long: `Run spawns overseers on the configured in-process cluster, enqueues
demo.tasks evaluations of the Rastrigin function and waits until every task
has completed. A summary is printed when the run ends.

Press Ctrl+C to stop early; overseers are terminated either way.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Int("tasks", 0, "number of tasks to enqueue (overrides demo.tasks)")
	runCmd.Flags().Int("fail-every", 0, "fail every Nth computation (overrides demo.fail_every)")
	runCmd.Flags().Bool("metrics", false, "serve Prometheus metrics while running")
	_ = viper.BindPFlag("demo.tasks", runCmd.Flags().Lookup("tasks"))
	_ = viper.BindPFlag("demo.fail_every", runCmd.Flags().Lookup("fail-every"))
	_ = viper.BindPFlag("metrics.enabled", runCmd.Flags().Lookup("metrics"))
}

// tally accumulates completed records for the run summary.
type tally struct {
	mu        sync.Mutex
	want      int
	succeeded int
	failed    int
	best      float64
	done      chan struct{}
}

func newTally(want int) *tally {
	t := &tally{want: want, best: math.Inf(1), done: make(chan struct{})}
	if want == 0 {
		close(t.done)
	}
	return t
}

func (t *tally) record(rec *task.Record[[]float64, float64]) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if rec.Status == task.StatusDone && rec.Result != nil {
		t.succeeded++
		t.best = math.Min(t.best, *rec.Result)
	} else {
		t.failed++
	}
	if t.succeeded+t.failed == t.want {
		close(t.done)
	}
}

func (t *tally) snapshot() (succeeded, failed int, best float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.succeeded, t.failed, t.best
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bus := event.NewBus()
	bus.OnPanic(func(eventType string, recovered any, stack []byte) {
		logger.Error("event handler panicked", "event_type", eventType, "panic", fmt.Sprint(recovered), "stack", string(stack))
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(cfg.Metrics.Namespace, reg, logger.WithComponent("metrics"))
	collector.Attach(bus)
	defer collector.Detach()

	rt, err := newRuntime(cfg, bus, logger.WithComponent("cluster"))
	if err != nil {
		return err
	}
	defer rt.Shutdown()
	rt.Handle(overseer.Role, overseer.NewSupervisor(
		demoCompute(cfg.Demo),
		overseer.WithLogger(logger.WithComponent("overseer")),
	).Behavior())

	results := newTally(cfg.Demo.Tasks)
	c, err := coordinator.New[[]float64, float64](rt,
		coordinator.ExecutorFuncs[[]float64, float64]{Completed: results.record},
		coordinator.WithLogger(logger.WithComponent("coordinator")),
		coordinator.WithBus(bus),
		coordinator.WithPlanner(newPlanner(cfg)),
		coordinator.WithTerminateOverseers(cfg.Coordinator.TerminateOverseersOnExit),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	workCtx, workDone := context.WithCancel(gctx)

	start := time.Now()
	g.Go(func() error {
		defer workDone()
		return runWorkload(workCtx, c, cfg, results)
	})
	if cfg.Metrics.Enabled {
		g.Go(func() error {
			return serveMetrics(workCtx, cfg.Metrics.ListenAddr, reg, logger)
		})
	}
	runErr := g.Wait()
	elapsed := time.Since(start)

	succeeded, failed, best := results.snapshot()
	printRunSummary(cmd.OutOrStdout(), runSummary{
		coordinator: c.ID(),
		placement:   placementOf(c),
		tasks:       cfg.Demo.Tasks,
		succeeded:   succeeded,
		failed:      failed,
		late:        c.Stats().Late,
		elapsed:     elapsed,
		best:        best,
	})

	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// runWorkload drives one coordinator from Start until every task completed
// or ctx is cancelled, then terminates it.
func runWorkload(ctx context.Context, c *coordinator.Coordinator[[]float64, float64], cfg *config.Config, results *tally) error {
	if err := c.Start(ctx); err != nil {
		return err
	}
	if len(c.Overseers()) == 0 && cfg.Demo.Tasks > 0 {
		_ = c.Terminate()
		_ = c.Wait()
		return errNoCapacity
	}
	for _, params := range demoParams(cfg.Demo, cfg.Demo.Tasks) {
		c.Enqueue(params)
	}
	if err := c.Initialize(); err != nil {
		return err
	}
	if err := c.Resume(); err != nil {
		return err
	}

	select {
	case <-results.done:
	case <-c.Done():
		return c.Wait()
	case <-ctx.Done():
	}

	// Terminate only fails once the loop has already stopped.
	_ = c.Terminate()
	err := c.Wait()
	if err == nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// serveMetrics exposes reg on /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *logging.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

func placementOf(c *coordinator.Coordinator[[]float64, float64]) capacity.Placement {
	addrs := c.Overseers()
	placement := make(capacity.Placement, len(addrs))
	for i, addr := range addrs {
		placement[i] = addr.Node
	}
	return placement
}

type runSummary struct {
	coordinator string
	placement   capacity.Placement
	tasks       int
	succeeded   int
	failed      int
	late        int64
	elapsed     time.Duration
	best        float64
}

func printRunSummary(w io.Writer, s runSummary) {
	failed := successStyle.Render("0")
	if s.failed > 0 {
		failed = errorStyle.Render(fmt.Sprint(s.failed))
	}
	best := mutedStyle.Render("n/a")
	if s.succeeded > 0 {
		best = valueStyle.Render(fmt.Sprintf("%.4f", s.best))
	}
	overseers := fmt.Sprintf("%d (%s)", len(s.placement), s.placement)
	if len(s.placement) == 0 {
		overseers = warningStyle.Render("0 (no spare capacity)")
	}

	lines := []string{
		titleStyle.Render("Run summary"),
		row("Coordinator", s.coordinator),
		row("Overseers", overseers),
		row("Tasks", fmt.Sprint(s.tasks)),
		row("Succeeded", fmt.Sprint(s.succeeded)),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Failed"), failed),
		row("Late", fmt.Sprint(s.late)),
		row("Elapsed", s.elapsed.Round(time.Millisecond).String()),
		lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("Best value"), best),
	}
	fmt.Fprintln(w, boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}
