package model

import (
	"math"
	"sort"
)

// Time is a fixed-point timestamp: thousandths of a FloatTime unit.
type Time int64

// FloatTime is the real-valued counterpart of Time (seconds on the music timeline).
type FloatTime float64

const TimeInFloatTime Time = 1000

func (t Time) Add(o Time) Time { return t + o }
func (t Time) Sub(o Time) Time { return t - o }

func (t Time) Float() FloatTime { return FloatTime(t) / FloatTime(TimeInFloatTime) }

func FloatToTime(f FloatTime) Time {
	return Time(math.Round(float64(f) * float64(TimeInFloatTime)))
}

func (t Time) Abs() Time {
	if t < 0 {
		return -t
	}
	return t
}

func clampTime(t, lo, hi Time) Time {
	return max(lo, min(hi, t))
}

// BeatTime is a musical duration in sixteenths of a beat.
type BeatTime struct {
	Units int64 `json:"units"`
}

const beatUnits = 16

var (
	BeatWhole     = BeatTime{Units: beatUnits}
	BeatHalf      = BeatTime{Units: beatUnits / 2}
	BeatQuarter   = BeatTime{Units: beatUnits / 4}
	BeatEighth    = BeatTime{Units: beatUnits / 8}
	BeatSixteenth = BeatTime{Units: 1}
)

func Beats(n int64) BeatTime { return BeatTime{Units: n * beatUnits} }

// AsSecs converts the duration into seconds given the length of a single beat.
func (b BeatTime) AsSecs(beatTime FloatTime) FloatTime {
	return FloatTime(b.Units) / beatUnits * beatTime
}

func (b BeatTime) AsTime(beatTime FloatTime) Time { return FloatToTime(b.AsSecs(beatTime)) }

// ParseBeatFraction maps the names used in config and flags ("1", "1/2", "1/4", ...).
func ParseBeatFraction(s string) (BeatTime, bool) {
	switch s {
	case "1", "whole":
		return BeatWhole, true
	case "1/2", "half":
		return BeatHalf, true
	case "1/4", "quarter":
		return BeatQuarter, true
	case "1/8", "eighth":
		return BeatEighth, true
	case "1/16", "sixteenth":
		return BeatSixteenth, true
	}
	return BeatTime{}, false
}

type TimingPoint struct {
	// Time from which this timing applies.
	Time Time `json:"time"`
	// BeatTime is the length of one beat in seconds.
	BeatTime FloatTime `json:"beatTime"`
}

// Timing points are kept sorted by time.
type Timing struct {
	Points []TimingPoint `json:"points"`
}

func NewTiming(bpm FloatTime) Timing {
	return Timing{Points: []TimingPoint{{Time: 0, BeatTime: 60 / bpm}}}
}

var fallbackTiming = TimingPoint{Time: 0, BeatTime: 60.0 / 150.0}

// Get returns the timing point governing t. Times before the first point use the first point.
func (tm Timing) Get(t Time) TimingPoint {
	if len(tm.Points) == 0 {
		return fallbackTiming
	}
	i := sort.Search(len(tm.Points), func(i int) bool { return tm.Points[i].Time > t })
	if i == 0 {
		return tm.Points[0]
	}
	return tm.Points[i-1]
}

// Insert adds a point keeping the list sorted; a point at an existing time replaces it.
func (tm *Timing) Insert(p TimingPoint) {
	i := sort.Search(len(tm.Points), func(i int) bool { return tm.Points[i].Time >= p.Time })
	if i < len(tm.Points) && tm.Points[i].Time == p.Time {
		tm.Points[i] = p
		return
	}
	tm.Points = append(tm.Points, TimingPoint{})
	copy(tm.Points[i+1:], tm.Points[i:])
	tm.Points[i] = p
}

// SnapToBeat rounds t to the nearest multiple of snap counted from its timing point.
func (tm Timing) SnapToBeat(t Time, snap BeatTime) Time {
	point := tm.Get(t)
	step := snap.AsSecs(point.BeatTime)
	if step <= 0 {
		return t
	}
	delta := (t - point.Time).Float()
	delta = FloatTime(math.Round(float64(delta/step))) * step
	return point.Time + FloatToTime(delta)
}

// BeatDuration is the length of one beat at t as a Time.
func (tm Timing) BeatDuration(t Time) Time {
	return FloatToTime(tm.Get(t).BeatTime)
}

func (tm Timing) clone() Timing {
	if tm.Points == nil {
		return Timing{}
	}
	return Timing{Points: append([]TimingPoint(nil), tm.Points...)}
}
