package engine

import (
	"github.com/Veraticus/spice-health/internal/service"
)

// Store is everything the engine reads and writes.
type Store interface {
	service.RecordStore
	service.ScoreHistoryStore
}
