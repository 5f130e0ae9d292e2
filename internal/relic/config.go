package relic

import "io"

// Config tunes a Searcher. The zero value is usable but never yields; use
// DefaultConfig.
type Config struct {
	// CheckpointEvery is the number of branch visits between cooperative
	// checkpoints (context check, progress hook, scheduler yield). Zero
	// disables checkpoints.
	CheckpointEvery int
	// OnProgress, when set, is called at every checkpoint and after each vessel.
	OnProgress func(Progress)
	// Vocabulary classifies extra effects. Nil derives one from the candidates.
	Vocabulary Vocabulary
	// Log receives [tag] lines describing the search phases. Nil is silent.
	Log io.Writer
}

// DefaultConfig returns the tuning used by the commands.
func DefaultConfig() Config {
	return Config{CheckpointEvery: 50000}
}

// Progress is a snapshot of a running search.
type Progress struct {
	VesselsDone  int
	VesselsTotal int
	Visits       int64
	Results      int
}
