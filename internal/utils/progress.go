package utils

import (
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Progress wraps a terminal progress bar for multi-file batches.
type Progress struct {
	bar     *progressbar.ProgressBar
	current int
	mu      sync.Mutex
	start   time.Time
}

// NewProgress creates a bar sized for total items.
func NewProgress(total int, description string) *Progress {
	return &Progress{
		bar: progressbar.NewOptions(total,
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowBytes(false),
			progressbar.OptionSetWidth(15),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		),
		start: time.Now(),
	}
}

// Increment advances the bar by one item.
func (p *Progress) Increment() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current++
	_ = p.bar.Add(1)
}

// Finish completes the bar and prints the elapsed time.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
	fmt.Printf("\nProcessed %d file(s) in %s\n", p.current, FormatDuration(time.Since(p.start)))
}
