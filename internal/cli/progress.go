package cli

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/schollz/progressbar/v3"
)

// IngestProgress renders one bar over every namespace being ingested.
// OnBatch may be called from concurrent ingestion goroutines.
type IngestProgress struct {
	bar       *progressbar.ProgressBar
	committed map[string]int
	mu        sync.Mutex
}

// NewIngestProgress creates a bar sized to the total chunk count.
func NewIngestProgress(w io.Writer, total int) *IngestProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Embedding regulations...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return &IngestProgress{
		bar:       bar,
		committed: make(map[string]int),
	}
}

// OnBatch records that namespace now has committed of its chunks stored.
func (p *IngestProgress) OnBatch(namespace string, committed, _ int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delta := committed - p.committed[namespace]
	p.committed[namespace] = committed
	if delta <= 0 {
		return
	}
	p.bar.Describe(fmt.Sprintf("[cyan][bold]Embedding %s...[reset]", namespace))
	if err := p.bar.Add(delta); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Committed reports the chunks committed so far across namespaces.
func (p *IngestProgress) Committed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.committed {
		total += n
	}
	return total
}
