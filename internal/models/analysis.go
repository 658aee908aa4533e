// Package models defines data structures for the analyses listing.
package models

// Status is an analysis status as reported by the listing service.
// Values outside the known set are kept verbatim.
type Status string

const (
	StatusSubmitted Status = "Submitted"
	StatusRunning   Status = "Running"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
	StatusCanceled  Status = "Canceled"
)

// Analysis is one job instance as received from the listing source.
// It is treated as an immutable snapshot: nothing in this module mutates it.
type Analysis struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	AppName         string    `json:"app_name"`
	Status          Status    `json:"status"`
	Batch           bool      `json:"batch"`                      // high-throughput container for sub-analyses
	InteractiveURLs []string  `json:"interactive_urls,omitempty"` // VICE session endpoints
	Owner           string    `json:"username"`
	AppDisabled     bool      `json:"app_disabled"`
	StartDate       Timestamp `json:"startdate"`
	EndDate         Timestamp `json:"enddate"`
}

// HasInteractiveURLs reports whether the analysis exposes at least one session URL.
func (a *Analysis) HasInteractiveURLs() bool {
	return len(a.InteractiveURLs) > 0
}

// Listing is one page of analyses returned by the listing service.
type Listing struct {
	Analyses []Analysis `json:"analyses"`
	Total    int        `json:"total"`
}

// IDs returns the analysis IDs in listing order.
func (l *Listing) IDs() []string {
	if l == nil {
		return nil
	}
	ids := make([]string, 0, len(l.Analyses))
	for _, a := range l.Analyses {
		ids = append(ids, a.ID)
	}
	return ids
}

// Find returns the analysis with the given ID.
func (l *Listing) Find(id string) (Analysis, bool) {
	if l == nil {
		return Analysis{}, false
	}
	for _, a := range l.Analyses {
		if a.ID == id {
			return a, true
		}
	}
	return Analysis{}, false
}
