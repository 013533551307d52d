// Package mission tracks planet scans and anomaly pickups.
package mission

import (
	"math"

	"github.com/opd-ai/go-orrery/pkg/entity"
	"github.com/opd-ai/go-orrery/pkg/event"
	"github.com/opd-ai/go-orrery/pkg/physics"
)

// Params tunes scanning and pickups.
type Params struct {
	ScanDuration    float64 // seconds of continuous presence to finish a scan
	DecayRate       float64 // progress lost per second outside the radius
	MinScanRadius   float64
	ScanRadiusScale float64
	ScanBonus       int
	PickupRadius    float64
	PickupBonus     int
}

// DefaultParams returns the standard mission tuning.
func DefaultParams() Params {
	return Params{
		ScanDuration:    3.0,
		DecayRate:       0.15,
		MinScanRadius:   18,
		ScanRadiusScale: 10,
		ScanBonus:       100,
		PickupRadius:    8,
		PickupBonus:     25,
	}
}

// Status is a planet's scan state.
type Status int

const (
	Unscanned Status = iota
	Scanning
	Completed
)

func (s Status) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Completed:
		return "completed"
	default:
		return "unscanned"
	}
}

// PlanetScan is one planet's row in the mission table.
type PlanetScan struct {
	Name      string
	Progress  float64
	Completed bool
	Order     int // 1-based completion order, 0 while incomplete
}

// Status derives the state from progress and the completion flag.
func (p PlanetScan) Status() Status {
	switch {
	case p.Completed:
		return Completed
	case p.Progress > 0:
		return Scanning
	default:
		return Unscanned
	}
}

// Result summarizes what changed during one Update.
type Result struct {
	Scanned   []string
	Collected []*entity.Anomaly
	Points    int
}

// progressEpsilon absorbs rounding when the tick lengths sum to exactly
// ScanDuration.
const progressEpsilon = 1e-9

// Tracker holds mission state indexed by planet index. It is not safe for
// concurrent use.
type Tracker struct {
	params    Params
	scans     []PlanetScan
	score     int
	collected int
	completed int
	allDone   bool
	bus       *event.Bus
}

// NewTracker creates a table with one row per planet. bus may be nil.
func NewTracker(planets []*entity.Body, params Params, bus *event.Bus) *Tracker {
	scans := make([]PlanetScan, len(planets))
	for i, p := range planets {
		scans[i] = PlanetScan{Name: p.Name}
	}
	return &Tracker{params: params, scans: scans, bus: bus}
}

// ScanRadius returns the scan radius for a body of the given radius.
func (t *Tracker) ScanRadius(radius float64) float64 {
	return math.Max(t.params.MinScanRadius, radius*t.params.ScanRadiusScale)
}

// Update advances scans for every incomplete planet and collects anomalies
// within pickup range of ship.
func (t *Tracker) Update(deltaTime float64, ship physics.Vector3, planets []*entity.Body, anomalies []*entity.Anomaly) Result {
	var res Result

	for _, p := range planets {
		if p.Index < 0 || p.Index >= len(t.scans) {
			continue
		}
		scan := &t.scans[p.Index]
		if scan.Completed {
			continue
		}

		zone := physics.Sphere{Center: p.WorldPosition(), Radius: t.ScanRadius(p.Radius)}
		if zone.Contains(ship) {
			scan.Progress = math.Min(1, scan.Progress+deltaTime/t.params.ScanDuration)
			if scan.Progress >= 1-progressEpsilon {
				t.complete(p.Index)
				res.Scanned = append(res.Scanned, scan.Name)
				res.Points += t.params.ScanBonus
			}
		} else {
			scan.Progress = physics.Clamp01(scan.Progress - deltaTime*t.params.DecayRate)
		}
	}

	for _, a := range anomalies {
		if !a.Alive() || !physics.WithinStrict(a.GetPosition(), ship, t.params.PickupRadius) {
			continue
		}
		a.Collect()
		t.collected++
		t.score += t.params.PickupBonus
		res.Collected = append(res.Collected, a)
		res.Points += t.params.PickupBonus
		t.publish(event.NewCollectEvent(t, uint64(a.GetID()), a.PlanetName, t.collected, t.score))
	}

	if !t.allDone && len(t.scans) > 0 && t.completed == len(t.scans) {
		t.allDone = true
		t.publish(event.NewScanEvent(event.AllScansCompleted, t, -1, "", t.score))
	}

	return res
}

func (t *Tracker) complete(index int) {
	scan := &t.scans[index]
	scan.Progress = 1
	scan.Completed = true
	t.completed++
	scan.Order = t.completed
	t.score += t.params.ScanBonus
	t.publish(event.NewScanEvent(event.ScanCompleted, t, index, scan.Name, t.score))
}

func (t *Tracker) publish(e event.Event) {
	if t.bus != nil {
		t.bus.Publish(e)
	}
}

// Score returns the cumulative score.
func (t *Tracker) Score() int {
	return t.score
}

// Collected returns the number of anomalies picked up.
func (t *Tracker) Collected() int {
	return t.collected
}

// CompletedCount returns how many planets are fully scanned.
func (t *Tracker) CompletedCount() int {
	return t.completed
}

// AllCompleted reports whether every planet has been scanned.
func (t *Tracker) AllCompleted() bool {
	return t.allDone
}

// Scan returns the row for a planet index.
func (t *Tracker) Scan(index int) (PlanetScan, bool) {
	if index < 0 || index >= len(t.scans) {
		return PlanetScan{}, false
	}
	return t.scans[index], true
}

// Scans returns a copy of the mission table.
func (t *Tracker) Scans() []PlanetScan {
	out := make([]PlanetScan, len(t.scans))
	copy(out, t.scans)
	return out
}
