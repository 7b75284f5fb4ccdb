package tui

import (
	"coverTonic/artwork"
	"coverTonic/batch"
)

type RowResolvedMsg struct {
	Outcome batch.Outcome
}

type RunCompleteMsg struct {
	Summary batch.Summary
	Stats   artwork.Stats
}
