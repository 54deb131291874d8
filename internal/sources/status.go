package sources

import (
	"time"

	"github.com/blackwell-systems/laborwatch/internal/store"
)

// Source labels recorded with stored observations.
const (
	SourceFRED = "fred"
	SourceCSV  = "csv"
	SourceAPI  = "api"
	SourceCLI  = "cli"
	SourceSeed = "seed"
)

// Descriptor names an observation source and whether it is usable.
type Descriptor struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

// Descriptors lists the known sources. FRED is configured only with an API
// key; the others need no setup.
func Descriptors(fredConfigured bool) []Descriptor {
	return []Descriptor{
		{Name: SourceFRED, Configured: fredConfigured},
		{Name: SourceCSV, Configured: true},
		{Name: SourceAPI, Configured: true},
		{Name: SourceCLI, Configured: true},
		{Name: SourceSeed, Configured: true},
	}
}

// Configured reports whether the client has an API key.
func (c *FREDClient) Configured() bool {
	return c.apiKey != ""
}

// Status is a source's configuration joined with what it has stored.
// Active means the store holds at least one observation from it.
type Status struct {
	Descriptor
	Active       bool       `json:"active"`
	Observations int        `json:"observations"`
	LastObserved *time.Time `json:"lastObserved,omitempty"`
}

// Statuses joins descriptors with per-source counts. Labels found in the
// store but not described (custom or unlabeled rows) are appended as
// configured, in count order.
func Statuses(described []Descriptor, counts []store.SourceCount) []Status {
	bySource := make(map[string]store.SourceCount, len(counts))
	for _, c := range counts {
		bySource[c.Source] = c
	}

	out := make([]Status, 0, len(described)+len(counts))
	known := make(map[string]bool, len(described))
	for _, d := range described {
		known[d.Name] = true
		out = append(out, status(d, bySource[d.Name]))
	}
	for _, c := range counts {
		if !known[c.Source] {
			out = append(out, status(Descriptor{Name: c.Source, Configured: true}, c))
		}
	}
	return out
}

func status(d Descriptor, c store.SourceCount) Status {
	s := Status{Descriptor: d, Observations: c.Count, Active: c.Count > 0}
	if c.Count > 0 {
		latest := c.Latest
		s.LastObserved = &latest
	}
	return s
}
