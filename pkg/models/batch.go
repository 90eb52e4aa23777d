package models

import "time"

// FileStatus summarizes the outcome of one file's batch.
type FileStatus string

const (
	FilePassed FileStatus = "passed"
	FileFailed FileStatus = "failed"
	// FileMixed means at least one statement succeeded and at least one failed.
	FileMixed FileStatus = "mixed"
)

// FileResult holds the ordered per-statement results for one SQL file.
// Error is set for file-level failures (security violation, unreadable file,
// lost connection); such files carry no statement results beyond the point
// of failure.
type FileResult struct {
	Path     string            `json:"file"`
	Results  []ExecutionResult `json:"results"`
	Error    string            `json:"error,omitempty"`
	Duration time.Duration     `json:"-"`
}

// Status derives the file outcome from its results.
func (f *FileResult) Status() FileStatus {
	if f.Error != "" {
		return FileFailed
	}
	failed := 0
	for _, r := range f.Results {
		if r.Failed() {
			failed++
		}
	}
	switch {
	case failed == 0:
		return FilePassed
	case failed == len(f.Results):
		return FileFailed
	default:
		return FileMixed
	}
}

// BatchSummary aggregates the results of a multi-file run.
type BatchSummary struct {
	FilesProcessed int          `json:"files_processed"`
	FilesPassed    int          `json:"files_passed"`
	FilesFailed    int          `json:"files_failed"`
	FilesMixed     int          `json:"files_mixed"`
	Files          []FileResult `json:"files"`
}

// Add records one file's outcome in the summary.
func (s *BatchSummary) Add(fr FileResult) {
	s.FilesProcessed++
	switch fr.Status() {
	case FilePassed:
		s.FilesPassed++
	case FileMixed:
		s.FilesMixed++
	default:
		s.FilesFailed++
	}
	s.Files = append(s.Files, fr)
}

// Ok reports whether every file passed.
func (s *BatchSummary) Ok() bool {
	return s.FilesFailed == 0 && s.FilesMixed == 0
}
