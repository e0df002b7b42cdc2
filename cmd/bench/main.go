// Bench is a benchmarking tool for measuring CHD build performance, query
// throughput, and memory usage.
//
// Usage:
//
//	go run ./cmd/bench -keys 1000000 -load 0.99
//
// Flags:
//
//	-keys      Number of keys to hash (default: 1,000,000)
//	-load      Load factor, clamped to [0.5, 0.99] (default: 0.99)
//	-seed      Seed for the hash seed generator (default: 1)
//	-workers   Number of query goroutines (default: GOMAXPROCS)
//	-queries   Number of timed queries per goroutine (default: 1,000,000)
package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	mrand "math/rand/v2"
	"os"
	"path/filepath"
	"runtime"
	"runtime/metrics"
	"runtime/pprof"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spaolacci/murmur3"
	"github.com/tamirms/chd"
	"github.com/tamirms/chd/internal/jenkins"
	"golang.org/x/sync/errgroup"
)

// getMaxRSS returns the maximum resident set size in bytes.
// Uses getrusage(RUSAGE_SELF) which tracks peak RSS since process start.
func getMaxRSS() uint64 {
	var rusage syscall.Rusage
	if err := syscall.Getrusage(syscall.RUSAGE_SELF, &rusage); err != nil {
		return 0
	}
	// On macOS, MaxRss is in bytes. On Linux, it's in kilobytes.
	maxRSS := uint64(rusage.Maxrss)
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

// peakTracker samples heap and RSS every 10ms until stopped.
type peakTracker struct {
	heap atomic.Uint64
	rss  atomic.Uint64
	done chan struct{}
}

func startPeakTracker(baseHeap, baseRSS uint64) *peakTracker {
	p := &peakTracker{done: make(chan struct{})}
	p.heap.Store(baseHeap)
	p.rss.Store(baseRSS)
	go func() {
		samples := []metrics.Sample{{Name: "/memory/classes/heap/objects:bytes"}}
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				metrics.Read(samples)
				storeMax(&p.heap, samples[0].Value.Uint64())
				storeMax(&p.rss, getMaxRSS())
			}
		}
	}()
	return p
}

func (p *peakTracker) stop() { close(p.done) }

func storeMax(v *atomic.Uint64, x uint64) {
	for {
		old := v.Load()
		if x <= old || v.CompareAndSwap(old, x) {
			return
		}
	}
}

func main() {
	keysFlag := flag.Int("keys", 1_000_000, "number of keys")
	loadFlag := flag.Float64("load", 0.99, "load factor")
	seedFlag := flag.Uint64("seed", 1, "seed for the hash seed generator")
	workersFlag := flag.Int("workers", runtime.GOMAXPROCS(0), "number of query goroutines")
	queriesFlag := flag.Int("queries", 1_000_000, "timed queries per goroutine")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to file (build phase only)")
	memprofile := flag.String("memprofile", "", "write memory profile to file (build phase only)")
	flag.Parse()

	if err := run(*keysFlag, *loadFlag, *seedFlag, *workersFlag, *queriesFlag, *cpuprofile, *memprofile); err != nil {
		fmt.Fprintf(os.Stderr, "bench: %v\n", err)
		os.Exit(1)
	}
}

func run(numKeys int, load float64, seed uint64, workers, numQueries int, cpuprofile, memprofile string) error {
	if numKeys <= 0 || workers <= 0 {
		return fmt.Errorf("keys and workers must be positive")
	}

	fmt.Println("Generating keys...")
	keys := make([][]byte, numKeys)
	for i := range keys {
		keys[i] = make([]byte, 32)
		_, _ = rand.Read(keys[i]) // crypto/rand.Read error is fatal system issue; ignore for benchmark
	}

	fmt.Println("Hashing keys...")
	hashStart := time.Now()
	for _, k := range keys {
		jenkins.Hash(0x1234, k)
	}
	jenkinsDuration := time.Since(hashStart)

	hashStart = time.Now()
	for _, k := range keys {
		murmur3.Sum128WithSeed(k, 0x1234)
	}
	murmurDuration := time.Since(hashStart)

	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	var baseline runtime.MemStats
	runtime.ReadMemStats(&baseline)
	baselineRSS := getMaxRSS()
	peaks := startPeakTracker(baseline.Alloc, baselineRSS)

	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer func() { _ = f.Close() }()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
	}

	fmt.Println("Building function...")
	buildStart := time.Now()
	fn, err := chd.BuildKeys(context.Background(), keys, chd.WithLoadFactor(load), chd.WithSeed(seed))
	buildDuration := time.Since(buildStart)

	if cpuprofile != "" {
		pprof.StopCPUProfile()
	}
	if memprofile != "" {
		f, err := os.Create(memprofile)
		if err != nil {
			fmt.Printf("could not create memory profile: %v\n", err)
		} else {
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				fmt.Printf("could not write memory profile: %v\n", err)
			}
			_ = f.Close()
		}
	}

	peaks.stop()
	var final runtime.MemStats
	runtime.ReadMemStats(&final)
	storeMax(&peaks.heap, final.Alloc)
	storeMax(&peaks.rss, getMaxRSS())
	peakHeapMem := peaks.heap.Load() - baseline.Alloc
	peakRSSMem := peaks.rss.Load() - baselineRSS

	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "chd-bench-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()
	path := filepath.Join(tmpDir, "bench.chd")
	if err := chd.WriteFile(path, fn); err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	fn, err = chd.ReadFile(path)
	if err != nil {
		return err
	}

	fmt.Println("Verifying...")
	if err := verify(fn, keys, workers); err != nil {
		return err
	}

	queryOrder := mrand.Perm(numKeys)
	fmt.Println("Warming up queries...")
	for i := range 10000 {
		fn.Hash(keys[queryOrder[i%numKeys]])
	}

	fmt.Println("Benchmarking queries...")
	queryStart := time.Now()
	for i := range numQueries {
		fn.Hash(keys[queryOrder[i%numKeys]])
	}
	queryDuration := time.Since(queryStart)
	avgLatency := float64(queryDuration.Nanoseconds()) / float64(numQueries)

	parallelStart := time.Now()
	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			for i := range numQueries {
				fn.Hash(keys[queryOrder[(i+w*7919)%numKeys]])
			}
			return nil
		})
	}
	_ = g.Wait()
	parallelDuration := time.Since(parallelStart)
	parallelRate := float64(workers*numQueries) / parallelDuration.Seconds() / 1_000_000

	st := fn.Stats()
	bitsPerKey := float64(info.Size()*8) / float64(numKeys)

	fmt.Printf("\n")
	fmt.Printf("╔═════════════════════╦════════════════╗\n")
	fmt.Printf("║ Metric              ║ Value          ║\n")
	fmt.Printf("╠═════════════════════╬════════════════╣\n")
	fmt.Printf("║ Keys                ║ %14d ║\n", numKeys)
	fmt.Printf("║ Range (n)           ║ %14d ║\n", st.MaxValue)
	fmt.Printf("║ Buckets             ║ %14d ║\n", st.NumBuckets)
	fmt.Printf("║ Bits per key        ║ %6.3f bits/key║\n", bitsPerKey)
	fmt.Printf("║   - Codes           ║ %6.3f bits/key║\n", float64(st.CodeBits)/float64(numKeys))
	fmt.Printf("║ Query latency       ║ %6.1f ns      ║\n", avgLatency)
	fmt.Printf("║ Parallel queries    ║ %6.2f M/sec   ║\n", parallelRate)
	fmt.Printf("║ Build time          ║ %6.2f sec     ║\n", buildDuration.Seconds())
	fmt.Printf("║ Build throughput    ║ %6.2f M/sec   ║\n", float64(numKeys)/buildDuration.Seconds()/1_000_000)
	fmt.Printf("║ Jenkins hash time   ║ %6.3f sec     ║\n", jenkinsDuration.Seconds())
	fmt.Printf("║ Murmur3 hash time   ║ %6.3f sec     ║\n", murmurDuration.Seconds())
	fmt.Printf("║ Peak heap memory    ║ %6.1f MB      ║\n", float64(peakHeapMem)/1_000_000)
	fmt.Printf("║ Peak RSS memory     ║ %6.1f MB      ║\n", float64(peakRSSMem)/1_000_000)
	fmt.Printf("╚═════════════════════╩════════════════╝\n")
	return nil
}

// verify checks in parallel that every key hashes to a distinct value.
func verify(fn *chd.Function, keys [][]byte, workers int) error {
	seen := make([]atomic.Bool, fn.MaxValue())
	var g errgroup.Group
	for w := range workers {
		g.Go(func() error {
			for i := w; i < len(keys); i += workers {
				v := fn.Hash(keys[i])
				if v >= fn.MaxValue() {
					return fmt.Errorf("key %d hashed to %d, outside [0, %d)", i, v, fn.MaxValue())
				}
				if seen[v].Swap(true) {
					return fmt.Errorf("key %d collides at %d", i, v)
				}
			}
			return nil
		})
	}
	return g.Wait()
}
