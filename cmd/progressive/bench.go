package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/progressive/internal/demo"
	"github.com/vango-dev/progressive/internal/errors"
	"github.com/vango-dev/progressive/pkg/render"
	"github.com/vango-dev/progressive/pkg/server"
	"github.com/vango-dev/progressive/pkg/vdom"
)

type benchReport struct {
	Run      runInfo      `json:"run"`
	Workload workloadInfo `json:"workload"`
	Buffered modeInfo     `json:"buffered"`
	Stream   modeInfo     `json:"stream"`
	Pool     poolInfo     `json:"pool"`
}

type runInfo struct {
	Timestamp string `json:"timestamp"`
	Go        string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	CPUCount  int    `json:"cpu_count"`
	Version   string `json:"version"`
}

type workloadInfo struct {
	Tree       string `json:"tree"`
	Depth      int    `json:"depth"`
	Breadth    int    `json:"breadth"`
	Count      int    `json:"count"`
	Iterations int    `json:"iterations"`
	Checksum   string `json:"checksum"`
}

type modeInfo struct {
	LatencyMS    latencyInfo `json:"latency_ms"`
	FirstChunkMS latencyInfo `json:"first_chunk_ms"`
	Bytes        int64       `json:"bytes"`
	Chunks       int         `json:"chunks"`
}

type latencyInfo struct {
	Min float64 `json:"min"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
	Max float64 `json:"max"`
}

type poolInfo struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

func (c *cli) benchCmd() *cobra.Command {
	var (
		p          demo.Params
		iterations int
		jsonOutput string
	)

	cmd := &cobra.Command{
		Use:   "bench TREE",
		Short: "Compare buffered and streamed rendering",
		Long: `Render a tree repeatedly in buffered and in streaming mode and report
latency percentiles. For streams the time to the first chunk is reported
separately, since that is what a client waits for before it can start
parsing.

Examples:
  progressive bench recursive --depth=5 --breadth=4
  progressive bench wide --count=10000 --iterations=50 --json=report.json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: demo.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations < 1 {
				return errors.Newf(errors.CategoryCLI, "--iterations must be at least 1")
			}
			cfg, err := c.load(cmd, map[string]string{
				"render.checksum": "checksum",
			})
			if err != nil {
				return err
			}
			node, err := demo.Tree(args[0], p)
			if err != nil {
				return err
			}

			renderer := server.NewRenderer(cfg, c.logger())
			report, err := runBench(cmd.Context(), renderer, node, iterations)
			if err != nil {
				return err
			}
			report.Workload = workloadInfo{
				Tree:       args[0],
				Depth:      p.Depth,
				Breadth:    p.Breadth,
				Count:      p.Count,
				Iterations: iterations,
				Checksum:   cfg.Render.Checksum,
			}

			if jsonOutput != "" {
				return writeJSON(c.stdout, jsonOutput, report)
			}
			writeSummary(c.stdout, report)
			return nil
		},
	}

	treeFlags(cmd.Flags(), &p.Depth, &p.Breadth, &p.Count)
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 20, "Renders per mode")
	cmd.Flags().String("checksum", "", "Checksum algorithm: adler32 or xxhash")
	cmd.Flags().StringVar(&jsonOutput, "json", "", "Write a JSON report to this path ('-' for stdout)")

	return cmd
}

func runBench(ctx context.Context, renderer *render.Renderer, node *vdom.VNode, iterations int) (benchReport, error) {
	report := benchReport{
		Run: runInfo{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Go:        runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			CPUCount:  runtime.NumCPU(),
			Version:   version,
		},
	}

	buffered := make([]time.Duration, 0, iterations)
	for i := 0; i < iterations; i++ {
		start := time.Now()
		html, err := renderer.RenderToStringContext(ctx, node, false)
		if err != nil {
			return report, err
		}
		buffered = append(buffered, time.Since(start))
		report.Buffered.Bytes = int64(len(html))
		report.Buffered.Chunks = 1
	}
	report.Buffered.LatencyMS = latencies(buffered)
	report.Buffered.FirstChunkMS = report.Buffered.LatencyMS

	total := make([]time.Duration, 0, iterations)
	first := make([]time.Duration, 0, iterations)
	for i := 0; i < iterations; i++ {
		start := time.Now()
		s, err := renderer.RenderStream(ctx, node)
		if err != nil {
			return report, err
		}
		if _, _, err := s.Next(); err != nil {
			s.Close()
			return report, err
		}
		first = append(first, time.Since(start))
		if _, err := s.WriteTo(io.Discard); err != nil {
			s.Close()
			return report, err
		}
		total = append(total, time.Since(start))
		report.Stream.Chunks, report.Stream.Bytes = s.Stats()
		s.Close()
	}
	report.Stream.LatencyMS = latencies(total)
	report.Stream.FirstChunkMS = latencies(first)

	stats := renderer.Pool().Stats()
	report.Pool = poolInfo{Hits: stats.Hits, Misses: stats.Misses}
	return report, nil
}

func latencies(samples []time.Duration) latencyInfo {
	if len(samples) == 0 {
		return latencyInfo{}
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return latencyInfo{
		Min: ms(sorted[0]),
		P50: ms(percentile(sorted, 0.50)),
		P95: ms(percentile(sorted, 0.95)),
		P99: ms(percentile(sorted, 0.99)),
		Max: ms(sorted[len(sorted)-1]),
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	idx := int(math.Ceil(float64(len(sorted))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func writeSummary(w io.Writer, report benchReport) {
	fmt.Fprintln(w, "=== Render Benchmark ===")
	fmt.Fprintf(w, "Tree: %s (depth %d, breadth %d, count %d)\n",
		report.Workload.Tree, report.Workload.Depth, report.Workload.Breadth, report.Workload.Count)
	fmt.Fprintf(w, "Iterations: %d per mode\n", report.Workload.Iterations)
	fmt.Fprintf(w, "Checksum: %s\n", report.Workload.Checksum)
	fmt.Fprintln(w)

	writeLatency(w, "Buffered (full render)", report.Buffered.LatencyMS)
	fmt.Fprintf(w, "  bytes: %d\n", report.Buffered.Bytes)
	fmt.Fprintln(w)

	writeLatency(w, "Stream (first chunk)", report.Stream.FirstChunkMS)
	writeLatency(w, "Stream (all chunks)", report.Stream.LatencyMS)
	fmt.Fprintf(w, "  chunks: %d\n", report.Stream.Chunks)
	fmt.Fprintf(w, "  bytes:  %d\n", report.Stream.Bytes)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Pool: %d hits, %d misses\n", report.Pool.Hits, report.Pool.Misses)
}

func writeLatency(w io.Writer, title string, l latencyInfo) {
	fmt.Fprintf(w, "%s:\n", title)
	fmt.Fprintf(w, "  min: %.3f ms\n", l.Min)
	fmt.Fprintf(w, "  p50: %.3f ms\n", l.P50)
	fmt.Fprintf(w, "  p95: %.3f ms\n", l.P95)
	fmt.Fprintf(w, "  p99: %.3f ms\n", l.P99)
	fmt.Fprintf(w, "  max: %.3f ms\n", l.Max)
}

func writeJSON(stdout io.Writer, path string, report benchReport) error {
	out := stdout
	if path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
