package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jobala/vmsim/config"
	"github.com/jobala/vmsim/memory"
	"github.com/jobala/vmsim/threads"
	"github.com/jobala/vmsim/util"
)

func main() {
	cfgPath := flag.String("config", "", "path to a JSON config file")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	logger, err := util.NewLogger(cfg.LogLevel, os.Stdout)
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn(err.Error())
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("simulation failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	swap, err := memory.OpenSwapFile(cfg.SwapfilePath, cfg.PageSize, logger)
	if err != nil {
		return err
	}
	defer swap.Close()

	sched := threads.NewScheduler(logger)
	mmu := memory.NewMMU(memory.NewFrameTable(cfg.Frames, cfg.PageSize), swap, sched, cfg.ReferenceSweep, logger)

	for range cfg.Tasks {
		task := sched.NewTask()
		mmu.NewPageTable(task, cfg.PagesPerTask)
		sched.NewThread(task)
	}

	stats := runWorkload(cfg, sched, mmu, logger)
	logger.Info("simulation done",
		"references", cfg.References,
		"hits", stats[memory.Hit],
		"faults", stats[memory.Faulted],
		"waits", stats[memory.Waiting],
		"failures", stats[memory.Failed],
		"out_of_memory", stats[memory.OutOfMemory],
	)

	if cfg.DumpPath != "" {
		return mmu.Dump(cfg.DumpPath)
	}
	return nil
}

// runWorkload round-robins the threads over a fixed reference string. Every
// third reference is a write. A fault already hands the processor on inside
// the MMU, so the next reference goes to whoever it dispatched.
func runWorkload(cfg *config.Config, sched *threads.Scheduler, mmu *memory.MMU, logger *slog.Logger) map[memory.Outcome]int {
	stats := map[memory.Outcome]int{}
	rescheduled := false

	for i := range cfg.References {
		var thread *threads.Thread
		if rescheduled {
			thread = sched.Running()
		}
		if thread == nil {
			thread = sched.Dispatch()
		}
		if thread == nil {
			logger.Warn("no runnable thread", "reference", i)
			break
		}

		number := (i*7 + thread.ID()*3) % cfg.PagesPerTask
		kind := memory.Read
		if i%3 == 0 {
			kind = memory.Write
		}

		out, err := mmu.Refer(thread, number, kind)
		stats[out]++
		if err != nil {
			logger.Debug("reference not served", "thread", thread, "page", number, "outcome", out, "err", err)
		}
		rescheduled = out == memory.Faulted || out == memory.Failed || out == memory.OutOfMemory
	}

	return stats
}
