// Package recognizer matches a query encoding against the registered set.
package recognizer

import (
	"github.com/nccpresi/attendance-backend/internal/constants"
	"github.com/nccpresi/attendance-backend/internal/registry"
)

// UnknownName is reported when no registered face is close enough.
const UnknownName = "Unknown"

// Snapshotter provides a consistent view of the registered encodings.
type Snapshotter interface {
	Snapshot() (encodings [][]float32, names, regNos []string)
}

// Result is the outcome of a single match attempt.
type Result struct {
	Name    string
	RegNo   string
	Matched bool
}

type Recognizer struct {
	store     Snapshotter
	tolerance float64
}

// New creates a recognizer over the given store. A non-positive tolerance
// falls back to the default.
func New(store Snapshotter, tolerance float64) *Recognizer {
	if tolerance <= 0 {
		tolerance = constants.DefaultMatchTolerance
	}
	return &Recognizer{store: store, tolerance: tolerance}
}

// Match finds the registered encoding nearest to the query. Ties keep the
// earliest registration. The nearest candidate only counts as a match when
// its distance is within tolerance; otherwise the result is Unknown.
func (r *Recognizer) Match(query []float32) Result {
	encodings, names, regNos := r.store.Snapshot()
	if len(encodings) == 0 {
		return Result{Name: UnknownName}
	}

	best := 0
	bestDist := registry.EuclideanDistance(query, encodings[0])
	for i := 1; i < len(encodings); i++ {
		if d := registry.EuclideanDistance(query, encodings[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}

	if bestDist > r.tolerance {
		return Result{Name: UnknownName}
	}
	return Result{Name: names[best], RegNo: regNos[best], Matched: true}
}
