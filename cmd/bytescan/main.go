// Command bytescan searches files or, on Windows, the memory of running
// processes for byte patterns.
//
//	bytescan -f core.dump -p "48 8B 05 ?? ?? ?? ??" -p "E8 ?? ?? ?? ?? 90"
//	bytescan -process WeChatAppEx.exe -s -p "48 8B 05 ?? ?? ?? ??"
//
// Process matches are reported as absolute addresses.
//
// Exit codes: 1 invalid pattern, 2 file or process error, 3 a pattern was
// not found.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zhuweiyou/bytescan"
	"github.com/zhuweiyou/bytescan/internal/source"
)

const (
	exitOK = iota
	exitInvalidPattern
	exitFileError
	exitNotFound
)

type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ", ") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type config struct {
	files    listFlag
	patterns listFlag
	process  string
	pid      int
	single   bool
	naked    bool
	json     bool
	text     bool
	workers  int
	jobs     int
	verbose  int
}

// fileReport is the outcome of one file.
type fileReport struct {
	File    string          `json:"file"`
	Results []patternResult `json:"results"`
}

type patternResult struct {
	Pattern string   `json:"pattern"`
	Offsets []uint64 `json:"offsets"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var cfg config
	fs := flag.NewFlagSet("bytescan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Var(&cfg.files, "f", "file to scan (repeatable)")
	fs.Var(&cfg.patterns, "p", "pattern to scan for (repeatable)")
	fs.StringVar(&cfg.process, "process", "", "scan every running process with this executable name (windows)")
	fs.IntVar(&cfg.pid, "pid", 0, "scan the process with this ID (windows)")
	fs.BoolVar(&cfg.single, "s", false, "report only the first match of each pattern")
	fs.BoolVar(&cfg.naked, "n", false, "print bare offsets")
	fs.BoolVar(&cfg.json, "j", false, "print a JSON report")
	fs.BoolVar(&cfg.text, "t", false, "treat patterns as text, '?' matching any byte")
	fs.IntVar(&cfg.workers, "workers", 0, "scan workers per file (0 = one per CPU)")
	fs.IntVar(&cfg.jobs, "jobs", 4, "files scanned at once")
	fs.IntVar(&cfg.verbose, "v", 0, "log verbosity (0 warn, 1 info, 2 debug)")

	if err := fs.Parse(args); err != nil {
		return exitInvalidPattern
	}
	processMode := cfg.process != "" || cfg.pid > 0
	if (len(cfg.files) == 0 && !processMode) || len(cfg.patterns) == 0 {
		fs.Usage()
		return exitOK
	}

	logger := bytescan.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel(cfg.verbose)}))

	patterns := make([]string, len(cfg.patterns))
	for i, p := range cfg.patterns {
		if cfg.text {
			p = bytescan.StringToPattern(p, 0)
		}
		if p == "" || !bytescan.ValidPattern(p) {
			fmt.Fprintf(stdout, "Pattern '%s' invalid\n", cfg.patterns[i])
			return exitInvalidPattern
		}
		patterns[i] = p
	}

	opts := []bytescan.Option{bytescan.WithLogger(logger)}
	if cfg.workers > 0 {
		opts = append(opts, bytescan.WithWorkers(cfg.workers))
	}

	reports := make([]fileReport, len(cfg.files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.jobs, 1))
	for i, file := range cfg.files {
		g.Go(func() error {
			r, err := scanFile(gctx, file, patterns, cfg.single, opts)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("scan failed", "error", err)
		fmt.Fprintln(stdout, err)
		return exitFileError
	}

	if processMode {
		procs, err := scanProcesses(ctx, cfg, patterns, opts)
		if err != nil {
			logger.Error("process scan failed", "error", err)
			fmt.Fprintln(stdout, err)
			return exitFileError
		}
		reports = append(reports, procs...)
	}

	return report(stdout, cfg, reports)
}

func logLevel(v int) slog.Level {
	switch {
	case v >= 2:
		return slog.LevelDebug
	case v == 1:
		return slog.LevelInfo
	}
	return slog.LevelWarn
}

func scanFile(ctx context.Context, path string, patterns []string, single bool, opts []bytescan.Option) (fileReport, error) {
	src, err := source.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileReport{}, fmt.Errorf("file '%s' does not exist", path)
		}
		return fileReport{}, err
	}
	defer src.Close()

	mem := bytescan.NewMemory(src.Data())
	state := bytescan.NewState(mem, opts...)
	for _, p := range patterns {
		b := state.PatternBuilder().SetPattern(p)
		if single {
			b.StopOnFirstMatch()
		}
		if err := state.Add(b); err != nil {
			return fileReport{}, err
		}
	}
	if _, err := bytescan.Scan(ctx, state); err != nil {
		return fileReport{}, err
	}

	rebase := bytescan.Rebase(mem.Base, 0)
	r := fileReport{File: path, Results: make([]patternResult, len(patterns))}
	for i, p := range patterns {
		offsets := []uint64{}
		for _, addr := range state.Result(p).All() {
			offsets = append(offsets, uint64(rebase(nil, addr)))
		}
		r.Results[i] = patternResult{Pattern: p, Offsets: offsets}
	}
	return r, nil
}

func report(w io.Writer, cfg config, reports []fileReport) int {
	code := exitOK
	for _, r := range reports {
		for _, res := range r.Results {
			if len(res.Offsets) == 0 {
				code = exitNotFound
			}
		}
	}

	if cfg.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return exitFileError
		}
		return code
	}

	for _, r := range reports {
		for _, res := range r.Results {
			if len(res.Offsets) == 0 {
				if !cfg.naked {
					fmt.Fprintf(w, "pattern '%s' not found in '%s'\n", res.Pattern, r.File)
				}
				continue
			}
			if !cfg.naked {
				fmt.Fprintf(w, "%s: %s\n", r.File, res.Pattern)
			}
			for _, off := range res.Offsets {
				fmt.Fprintf(w, "0x%016X\n", off)
			}
		}
	}
	return code
}
