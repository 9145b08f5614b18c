package bench

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/thought-machine/oamap/src/oamap"
)

// A Result describes the outcome of a workload.
type Result struct {
	KeyType   string
	Workers   []WorkerResult
	Ops       int
	Duration  time.Duration
	SharedLen int
	// RSS is the resident set size of this process once the workload finished, or zero if it
	// couldn't be determined.
	RSS uint64
}

// A WorkerResult describes the outcome of one worker.
type WorkerResult struct {
	Worker int
	Ops    int
	Stats  oamap.Stats
}

// OpsPerSecond returns the overall throughput of the workload.
func (r *Result) OpsPerSecond() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return float64(r.Ops) / r.Duration.Seconds()
}

func (r *Result) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s operations on %s keys in %s (%s/s) across %d workers\n",
		humanize.Comma(int64(r.Ops)), r.KeyType, r.Duration.Round(time.Millisecond),
		humanize.Comma(int64(r.OpsPerSecond())), len(r.Workers))
	for _, w := range r.Workers {
		fmt.Fprintf(&sb, "  worker %d: %s entries in %s buckets, %d tombstones, max probe %d\n",
			w.Worker, humanize.Comma(int64(w.Stats.Len)), humanize.Comma(int64(w.Stats.Buckets)), w.Stats.Tombstones, w.Stats.MaxProbe)
	}
	fmt.Fprintf(&sb, "Shared map: %s entries\n", humanize.Comma(int64(r.SharedLen)))
	if r.RSS > 0 {
		fmt.Fprintf(&sb, "RSS: %s\n", humanize.IBytes(r.RSS))
	}
	return sb.String()
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// Dump returns a detailed dump of every field of the result.
func (r *Result) Dump() string {
	return dumpConfig.Sdump(r)
}

// rss returns the resident set size of this process.
func rss() uint64 {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warning("Can't inspect own process: %s", err)
		return 0
	}
	info, err := p.MemoryInfo()
	if err != nil {
		log.Warning("Can't get memory info: %s", err)
		return 0
	}
	return info.RSS
}
