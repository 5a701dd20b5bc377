package render

import (
	"fmt"
	"io"
	"os"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/jmorel/vibecut/pkg/util"
)

// WriteReport prints a post-render summary: output, frame throughput, and
// the process's memory high-water mark when the platform exposes one.
func WriteReport(w io.Writer, res *Result) {
	fmt.Fprintf(w, "output:   %s\n", res.OutputPath)
	fmt.Fprintf(w, "frames:   %d (%dx%d)\n", res.Frames, res.Width, res.Height)
	fmt.Fprintf(w, "elapsed:  %s\n", util.FormatDuration(res.Elapsed))
	if res.Elapsed > 0 {
		fmt.Fprintf(w, "speed:    %.1f frames/s\n", float64(res.Frames)/res.Elapsed.Seconds())
	}
	if rss, ok := peakRSS(); ok {
		fmt.Fprintf(w, "peak rss: %.1f MiB\n", float64(rss)/(1024*1024))
	}
}

// peakRSS reads this process's resident set high-water mark, falling back
// to the current RSS where the kernel does not report a peak.
func peakRSS() (uint64, bool) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, false
	}
	info, err := p.MemoryInfo()
	if err != nil || info == nil {
		return 0, false
	}
	if info.HWM > 0 {
		return info.HWM, true
	}
	if info.RSS > 0 {
		return info.RSS, true
	}
	return 0, false
}
