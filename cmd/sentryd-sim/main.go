// Command sentryd-sim drives an in-process Engine against a synthetic
// stream of hook calls, standing in for the kernel LSM hooks a real
// deployment would wire to internal/hooks.Adapter. It exists to
// exercise the Stall Table, Stall Engine, caches, and Delivery Surface
// end to end without a kernel module.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"go.uber.org/automaxprocs/maxprocs"
	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/sentryd"
	"github.com/ehrlich-b/sentryd/internal/config"
	"github.com/ehrlich-b/sentryd/internal/delivery"
	"github.com/ehrlich-b/sentryd/internal/event"
	"github.com/ehrlich-b/sentryd/internal/hooks"
	"github.com/ehrlich-b/sentryd/internal/logging"
	"github.com/ehrlich-b/sentryd/internal/table"
)

func main() {
	var (
		shards      = flag.Int("shards", 16, "Stall Table shard count (power of two)")
		stallMS     = flag.Int("stall-timeout-ms", 1000, "initial stall timeout in milliseconds")
		continueMS  = flag.Int("continue-timeout-ms", 2000, "initial continuation timeout in milliseconds")
		denyTimeout = flag.Bool("deny-on-timeout", false, "fail closed instead of fail open on timeout")
		tasks       = flag.Int("tasks", 8, "number of simulated concurrent tasks")
		denyRate    = flag.Float64("deny-rate", 0.1, "fraction of decisions the simulated agent denies")
		pinCPU      = flag.Bool("pin-cpu", false, "pin each simulated task goroutine to a distinct CPU")
		useRing     = flag.Bool("ring", false, "drive decisions through a Delivery Surface + io_uring Ring over a socketpair instead of draining the Surface in-process")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	// Ambient daemon tuning: respect a cgroup CPU quota and memory limit
	// the way a real mediation daemon running under systemd or a
	// container scheduler would be expected to.
	if _, err := maxprocs.Set(maxprocs.Logger(logger.Infof)); err != nil {
		logger.Warn("failed to set GOMAXPROCS from cgroup", "error", err)
	}
	if _, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(0.9),
		memlimit.WithProvider(memlimit.FromCgroup),
	); err != nil {
		logger.Warn("failed to set GOMEMLIMIT from cgroup", "error", err)
	}

	cfg := config.Default()
	cfg.StallTimeout = time.Duration(*stallMS) * time.Millisecond
	cfg.ContinueTimeout = time.Duration(*continueMS) * time.Millisecond
	cfg.DenyOnTimeout = *denyTimeout

	tblCfg := table.DefaultConfig()
	tblCfg.Shards = *shards

	engine := sentryd.New(
		sentryd.WithConfig(cfg),
		sentryd.WithTableConfig(tblCfg),
	)

	logger.Info("engine started", "shards", *shards, "stall_timeout", cfg.StallTimeout, "continue_timeout", cfg.ContinueTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var agent *sentryd.FakeAgent
	var ringCleanup func()
	if *useRing {
		cleanup, err := runRingPath(ctx, engine, *denyRate, logger)
		if err != nil {
			logger.Warn("failed to start ring path, falling back to in-process agent", "error", err)
			agent = sentryd.NewFakeAgent(engine, randomVerdictAgent(*denyRate))
			go agent.Run(ctx, 32)
		} else {
			ringCleanup = cleanup
			logger.Info("driving decisions over a Delivery Surface + io_uring Ring socketpair")
		}
	} else {
		agent = sentryd.NewFakeAgent(engine, randomVerdictAgent(*denyRate))
		go agent.Run(ctx, 32)
	}

	for i := 0; i < *tasks; i++ {
		cpu := -1
		if *pinCPU {
			cpu = i
		}
		go simulateTask(ctx, engine, uint32(i+1), cpu)
	}

	fmt.Printf("sentryd-sim running with %d simulated tasks, %d shards\n", *tasks, *shards)
	fmt.Printf("Send SIGUSR1 (kill -USR1 %d) to dump goroutine stacks\n", os.Getpid())
	fmt.Println("Press Ctrl+C to stop...")

	stackDumpCh := make(chan os.Signal, 1)
	signal.Notify(stackDumpCh, syscall.SIGUSR1)
	go func() {
		for range stackDumpCh {
			buf := make([]byte, 1<<20)
			n := runtime.Stack(buf, true)
			fmt.Fprintf(os.Stderr, "\n=== GOROUTINE STACK DUMP ===\n%s\n", buf[:n])
			pprof.Lookup("goroutine").WriteTo(os.Stderr, 2)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")
	cancel()
	engine.Shutdown()
	if agent != nil {
		agent.Stop()
	}
	if ringCleanup != nil {
		ringCleanup()
	}

	snap := engine.Metrics.Snapshot()
	logger.Info("final metrics",
		"stalls", snap.StallsStarted, "allowed", snap.Allowed, "denied", snap.Denied,
		"timed_out", snap.TimedOut, "p50_ns", snap.LatencyP50Ns, "p99_ns", snap.LatencyP99Ns)
}

// runRingPath stands up a real character-device-like transport for the
// Delivery Surface: a socketpair where one end is bound to an
// io_uring Ring driving the Surface, and the other end is read and
// written directly by a raw-bytes agent loop, the way an out-of-tree
// decision process would talk to the real control device. It returns
// a cleanup func that closes both ends of the socketpair.
func runRingPath(ctx context.Context, engine *sentryd.Engine, denyRate float64, logger *logging.Logger) (func(), error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_SEQPACKET, 0)
	if err != nil {
		return nil, fmt.Errorf("sentryd-sim: socketpair: %w", err)
	}
	serverFd, agentFd := fds[0], fds[1]

	ring, err := delivery.NewRing(serverFd, 64)
	if err != nil {
		unix.Close(serverFd)
		unix.Close(agentFd)
		return nil, fmt.Errorf("sentryd-sim: new ring: %w", err)
	}

	server := delivery.NewRingServer(engine.Surface, ring, 1<<16)
	go func() {
		if err := server.Run(ctx, 32); err != nil && ctx.Err() == nil {
			logger.Warn("ring server stopped", "error", err)
		}
	}()

	go runRingAgent(ctx, agentFd, denyRate, logger)

	return func() {
		ring.Close()
		unix.Close(serverFd)
		unix.Close(agentFd)
	}, nil
}

// runRingAgent is the far end of the ring socketpair: it reads raw
// wire-encoded event batches, applies the same random-verdict policy
// as the in-process FakeAgent, and writes encoded responses back —
// entirely through syscalls on agentFd, with no dependency on the
// engine's in-process Surface.
func runRingAgent(ctx context.Context, agentFd int, denyRate float64, logger *logging.Logger) {
	policy := randomVerdictAgent(denyRate)
	buf := make([]byte, 1<<16)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := unix.Read(agentFd, buf)
		if err != nil {
			if ctx.Err() == nil {
				logger.Warn("ring agent read failed", "error", err)
			}
			return
		}
		if n == 0 {
			continue
		}

		var responses []byte
		rest := buf[:n]
		for len(rest) >= delivery.HeaderLen {
			h, err := delivery.DecodeHeader(rest)
			if err != nil {
				break
			}
			verdict := policy(h)
			verdict.RequestID = h.RequestID
			responses = append(responses, delivery.EncodeResponse(verdict)...)
			rest = rest[delivery.HeaderLen+int(h.PayloadLen):]
		}

		if len(responses) > 0 {
			if _, err := unix.Write(agentFd, responses); err != nil && ctx.Err() == nil {
				logger.Warn("ring agent write failed", "error", err)
			}
		}
	}
}

// randomVerdictAgent returns a FakeAgent decision policy that denies
// roughly denyRate of decisions and allows the rest, standing in for an
// external agent with an imperfect policy model.
func randomVerdictAgent(denyRate float64) func(delivery.DecodedHeader) delivery.WireResponse {
	return func(delivery.DecodedHeader) delivery.WireResponse {
		if rand.Float64() < denyRate {
			return delivery.WireResponse{Response: delivery.WireDeny}
		}
		return delivery.WireResponse{Response: delivery.WireAllow}
	}
}

// simulateTask repeatedly fires a mix of hook calls for a fake task,
// standing in for the kernel's per-task execution stream. When cpu >= 0
// the goroutine's OS thread is pinned to that CPU — useful for showing
// the Stall Table's sharding actually reduces contention under
// concurrent load.
func simulateTask(ctx context.Context, e *sentryd.Engine, tid uint32, cpu int) {
	if cpu >= 0 {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		var set unix.CPUSet
		set.Zero()
		set.Set(cpu)
		if err := unix.SchedSetaffinity(0, &set); err != nil {
			logging.Warn("failed to pin simulated task to cpu", "tid", tid, "cpu", cpu, "error", err)
		}
	}

	pgid := tid // each simulated task is its own group leader
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		switch rand.Intn(4) {
		case 0:
			e.Hooks.Exec(tid, pgid, 1, uint64(tid), []byte("/usr/bin/sim"), ctx.Done())
		case 1:
			e.Hooks.Unlink(tid, pgid, event.Unlink, 2, hooks.FileRegular, []byte("/tmp/sim-file"), false, ctx.Done())
		case 2:
			e.Hooks.Open(tid, pgid, 3, uint64(tid)+1000, openPayload(), ctx.Done())
		case 3:
			e.Hooks.Close(tid, pgid, 4, openPayload(), ctx.Done())
		}

		time.Sleep(time.Duration(20+rand.Intn(80)) * time.Millisecond)
	}
}

func openPayload() event.OpenClosePayload {
	return event.OpenClosePayload{
		Path:      []byte("/tmp/sim-file"),
		Writable:  true,
		IsRegular: true,
	}
}
