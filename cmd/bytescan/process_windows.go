//go:build windows

package main

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/zhuweiyou/bytescan"
)

// userSpaceEnd bounds process scans to the x64 user address space.
const userSpaceEnd bytescan.Address = 0x7FFFFFFFFFFF

func targetPIDs(cfg config) ([]uint32, error) {
	var pids []uint32
	if cfg.pid > 0 {
		pids = append(pids, uint32(cfg.pid))
	}
	if cfg.process != "" {
		found, err := bytescan.FindProcessesByName(cfg.process)
		if err != nil {
			return nil, err
		}
		pids = append(pids, found...)
	}
	return pids, nil
}

func scanProcesses(ctx context.Context, cfg config, patterns []string, opts []bytescan.Option) ([]fileReport, error) {
	pids, err := targetPIDs(cfg)
	if err != nil {
		return nil, err
	}

	reports := make([]fileReport, len(pids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.jobs, 1))
	for i, pid := range pids {
		g.Go(func() error {
			r, err := scanProcess(gctx, pid, patterns, cfg.single, opts)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func scanProcess(ctx context.Context, pid uint32, patterns []string, single bool, opts []bytescan.Option) (fileReport, error) {
	scanner, err := bytescan.NewScanner(pid, opts...)
	if err != nil {
		return fileReport{}, fmt.Errorf("pid %d: %w", pid, err)
	}
	defer scanner.Close()

	r := fileReport{File: fmt.Sprintf("pid %d", pid), Results: make([]patternResult, len(patterns))}
	for i, p := range patterns {
		addrs := []uint64{}
		err := scanner.Scan(ctx, bytescan.ScanOptions{
			Pattern:    p,
			First:      single,
			MinAddress: 0,
			MaxAddress: userSpaceEnd,
			Handler: func(m bytescan.Match) bool {
				addrs = append(addrs, uint64(m.Address))
				return true
			},
		})
		if err != nil {
			return fileReport{}, fmt.Errorf("pid %d: %w", pid, err)
		}
		r.Results[i] = patternResult{Pattern: p, Offsets: addrs}
	}
	return r, nil
}
