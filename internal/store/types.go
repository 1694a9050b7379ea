package store

import "time"

// Run is one lint run over a set of documents.
type Run struct {
	ID              int64
	StartedAt       time.Time
	Language        string
	Analyzer        string
	Failed          bool
	DocumentCount   int
	DiagnosticCount int
}

// DocumentRecord is the outcome of one document within a run. Status is
// "clean", "skipped", or "failed".
type DocumentRecord struct {
	ID              int64
	RunID           int64
	Path            string
	Status          string
	DiagnosticCount int
}

// DiagnosticRecord is one mapped diagnostic within a document record.
type DiagnosticRecord struct {
	ID         int64
	DocumentID int64
	Line       int
	Col        int
	Severity   string
	Code       string
	Message    string
	SourceLine string
}
