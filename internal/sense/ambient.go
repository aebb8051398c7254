package sense

import "github.com/talgya/microcosm/internal/world"

// Channel is the sensory channel an ambient event travels on.
type Channel uint8

const (
	ChannelSound Channel = iota
	ChannelVisual
	ChannelSmell
	ChannelEnvironmental
)

// ChannelName returns a human-readable channel name.
func ChannelName(c Channel) string {
	switch c {
	case ChannelSound:
		return "sound"
	case ChannelVisual:
		return "visual"
	case ChannelSmell:
		return "smell"
	case ChannelEnvironmental:
		return "environmental"
	default:
		return "unknown"
	}
}

// AmbientEvent is a transient stimulus radiating from a position for one
// tick: a shout, a plume of smoke, the smell of cooking, a cold snap.
type AmbientEvent struct {
	Pos       world.Coord
	Radius    int     // Hexes the event carries beyond its origin
	Intensity float64 // 0 (barely there) to 1 (unmissable)
	Channel   Channel
	Label     string
	SourceID  uint64 // Emitting agent or building, 0 for the environment
}

// DetectionProbability returns the chance an observer at the given
// distance notices the event on a non-visual channel. Inside the event's
// own radius a full-intensity event is certain; beyond it the chance
// falls off linearly with distance.
func (ev AmbientEvent) DetectionProbability(distance, senseRadius int) float64 {
	reach := ev.Radius + senseRadius
	if reach <= 0 || distance > reach {
		return 0
	}
	if distance <= ev.Radius {
		return ev.Intensity
	}
	falloff := 1.0 - float64(distance-ev.Radius)/float64(senseRadius+1)
	if falloff < 0 {
		falloff = 0
	}
	return ev.Intensity * falloff
}
