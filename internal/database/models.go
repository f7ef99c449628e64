package database

// Run holds metadata about one pipeline run.
type Run struct {
	ID             int64
	StartedAt      string
	FinishedAt     *string
	SourcesOK      int
	SourcesFailed  int
	ItemsSeen      int
	ItemsKept      int
	DigestMarkdown string
}

// Stats contains aggregate database statistics.
type Stats struct {
	Runs         int
	Articles     int
	Translations int
	LastRun      *string
}
