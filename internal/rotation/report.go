package rotation

import (
	"time"

	"github.com/google/uuid"
)

// Rotation records one event advanced by a run.
type Rotation struct {
	EventID  uuid.UUID `json:"event_id"`
	MosqueID uuid.UUID `json:"mosque_id"`
	Title    string    `json:"title"`
	From     time.Time `json:"from"`
	To       time.Time `json:"to"`
	Steps    int       `json:"steps"` // Periods advanced; >1 after missed runs
}

// Failure records an event that could not be rotated in this run.
type Failure struct {
	EventID uuid.UUID `json:"event_id"`
	Err     error     `json:"-"`
	Reason  string    `json:"reason"`
}

// Report is the outcome of a run. Partial success is the normal case.
type Report struct {
	Now         time.Time   `json:"now"`
	Rotated     []Rotation  `json:"rotated"`
	SeriesEnded []uuid.UUID `json:"series_ended"`
	Skipped     []uuid.UUID `json:"skipped"` // Already advanced by a concurrent run
	Failed      []Failure   `json:"failed"`
}

// Quiet reports whether the run neither rotated nor failed anything.
func (r *Report) Quiet() bool {
	return len(r.Rotated) == 0 && len(r.Failed) == 0
}

func (r *Report) fail(id uuid.UUID, err error) {
	r.Failed = append(r.Failed, Failure{EventID: id, Err: err, Reason: err.Error()})
}
