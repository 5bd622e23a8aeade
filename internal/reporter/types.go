// Package reporter provides progress reporting interfaces and implementations.
package reporter

import "time"

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	TotalFiles int
	FileList   []string
	OutputDir  string
}

// FileProgressContext contains current file index within a batch.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
	InputFile   string
	OutputFile  string
}

// EncodingConfigSummary contains the resolved encoder settings for one file.
type EncodingConfigSummary struct {
	Codec      string
	Resolution string
	Preset     string
	CRF        string
	Profile    string
	Level      string
	Maxrate    string
	Bufsize    string
}

// ProgressSnapshot contains encoding progress information.
type ProgressSnapshot struct {
	CurrentFrame uint64
	TotalFrames  uint64
	Percent      float32
	Speed        float32
	FPS          float32
	ETA          time.Duration
	Bitrate      string
}

// ReporterError contains error information.
type ReporterError struct {
	Title   string
	Message string
	Context string
}

// EncodingOutcome contains final encoding results.
type EncodingOutcome struct {
	InputFile    string
	OutputFile   string
	OriginalSize uint64
	EncodedSize  uint64
	TotalTime    time.Duration
}

// FileResult is one row of the batch summary.
type FileResult struct {
	Filename  string
	Reduction float64
	Elapsed   time.Duration
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	SuccessfulCount   int
	TotalFiles        int
	TotalOriginalSize uint64
	TotalEncodedSize  uint64
	TotalDuration     time.Duration
	FileResults       []FileResult
}
