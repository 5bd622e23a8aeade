package reporter

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/pencode/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	out        io.Writer
	barOut     io.Writer
	progress   *progressbar.ProgressBar
	maxPercent float32
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	bold       *color.Color
}

// NewTerminalReporter creates a terminal reporter printing sections to
// stdout and the progress bar to stderr.
func NewTerminalReporter() *TerminalReporter {
	return NewTerminalReporterWithWriters(os.Stdout, os.Stderr)
}

// NewTerminalReporterWithWriters creates a terminal reporter with custom writers.
func NewTerminalReporterWithWriters(out, barOut io.Writer) *TerminalReporter {
	return &TerminalReporter{
		out:    out,
		barOut: barOut,
		cyan:   color.New(color.FgCyan, color.Bold),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow, color.Bold),
		red:    color.New(color.FgRed, color.Bold),
		bold:   color.New(color.Bold),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) section(title string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.section("BATCH")
	_, _ = fmt.Fprintf(r.out, "  Processing %d files -> %s\n", info.TotalFiles, r.bold.Sprint(info.OutputDir))
	for i, name := range info.FileList {
		_, _ = fmt.Fprintf(r.out, "  %d. %s\n", i+1, name)
	}
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	_, _ = fmt.Fprintf(r.out, "\nFile %s of %d\n", r.bold.Sprint(context.CurrentFile), context.TotalFiles)
	r.printLabel(7, "Input:", context.InputFile)
	r.printLabel(7, "Output:", context.OutputFile)
}

func (r *TerminalReporter) EncodingConfig(summary EncodingConfigSummary) {
	r.section("ENCODING")
	const w = 11
	r.printLabel(w, "Codec:", summary.Codec)
	r.printLabel(w, "Resolution:", summary.Resolution)
	r.printLabel(w, "Preset:", summary.Preset)
	r.printLabel(w, "CRF:", summary.CRF)
	r.printLabel(w, "Profile:", summary.Profile)
	r.printLabel(w, "Level:", summary.Level)
	r.printLabel(w, "Maxrate:", summary.Maxrate)
	r.printLabel(w, "Bufsize:", summary.Bufsize)
}

func (r *TerminalReporter) EncodingStarted(totalFrames uint64) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.barOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Encoding [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) EncodingProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		return
	}

	clamped := progress.Percent
	if clamped > 100 {
		clamped = 100
	}
	if clamped < 0 {
		clamped = 0
	}

	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := fmt.Sprintf("speed %.1fx, fps %.1f, eta %s",
		progress.Speed, progress.FPS, util.FormatDurationFromSecs(int64(progress.ETA.Seconds())))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) EncodingComplete(summary EncodingOutcome) {
	r.finishProgress()
	reduction := util.CalculateSizeReduction(summary.OriginalSize, summary.EncodedSize)

	r.section("RESULTS")
	_, _ = fmt.Fprintf(r.out, "  %s %s -> %s\n",
		r.bold.Sprint("Size:"),
		util.FormatBytes(summary.OriginalSize),
		util.FormatBytes(summary.EncodedSize))
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Reduction:"), r.bold.Sprintf("%.1f%%", reduction))
	_, _ = fmt.Fprintf(r.out, "  %s %d min\n", r.bold.Sprint("Time:"), util.WholeMinutes(summary.TotalTime))
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputFile))
}

func (r *TerminalReporter) Warning(message string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

// Error clears any progress bar before printing, so the failure is not
// drawn under a stale bar.
func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.red.Fprintf(r.out, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.out, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.out, "  Context: %s\n", err.Context)
	}
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.finishProgress()
	reduction := util.CalculateSizeReduction(summary.TotalOriginalSize, summary.TotalEncodedSize)

	r.section("BATCH SUMMARY")
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	_, _ = fmt.Fprintf(r.out, "  Size: %s -> %s (%.1f%% reduction)\n",
		util.FormatBytes(summary.TotalOriginalSize), util.FormatBytes(summary.TotalEncodedSize), reduction)
	_, _ = fmt.Fprintf(r.out, "  Time: %s\n", util.FormatDurationFromSecs(int64(summary.TotalDuration.Seconds())))

	for _, result := range summary.FileResults {
		_, _ = fmt.Fprintf(r.out, "  - %s (%.1f%% reduction, %d min)\n",
			result.Filename, result.Reduction, util.WholeMinutes(result.Elapsed))
	}
}
