package sense

import (
	"github.com/talgya/microcosm/internal/entropy"
	"github.com/talgya/microcosm/internal/world"
)

// Perception is the agent-specific filtered view of an observation
// window: what this particular agent actually noticed this tick. It is
// built inside the agent's own decision call and is private to it.
type Perception struct {
	Tick    uint64
	Center  world.Coord
	Objects []Object
	Events  []AmbientEvent
}

// Perceive filters a frozen observation into what one agent detects.
//
// Objects pass a detection-difficulty threshold against the observer's
// acuity plus a line-of-sight check; anything adjacent is always
// noticed. Visual ambient events require line of sight; sound, smell,
// and environmental events are detected probabilistically by distance
// and intensity, drawn from the observer's private random stream.
func Perceive(obs *Observation, m *world.Map, acuity float64, rng *entropy.Source) Perception {
	per := Perception{Tick: obs.Tick, Center: obs.Center}

	for _, obj := range obs.Nearby {
		if obj.Distance <= 1 {
			per.Objects = append(per.Objects, obj)
			continue
		}
		if obj.Difficulty > acuity {
			continue
		}
		if !m.LineOfSight(obs.Center, obj.Pos) {
			continue
		}
		per.Objects = append(per.Objects, obj)
	}

	for _, ev := range obs.Ambient {
		d := world.Distance(obs.Center, ev.Pos)
		if ev.Channel == ChannelVisual {
			if m.LineOfSight(obs.Center, ev.Pos) && ev.Intensity > 0 {
				per.Events = append(per.Events, ev)
			}
			continue
		}
		p := ev.DetectionProbability(d, obs.Radius)
		if p >= 1 || (p > 0 && rng.Float() < p) {
			per.Events = append(per.Events, ev)
		}
	}

	return per
}

// FindObject returns the first detected object with the given ID.
func (p *Perception) FindObject(id uint64) (Object, bool) {
	for _, obj := range p.Objects {
		if obj.ID == id {
			return obj, true
		}
	}
	return Object{}, false
}

// ObjectsOfKind returns detected objects of one kind, nearest first.
func (p *Perception) ObjectsOfKind(kind Kind) []Object {
	var out []Object
	for _, obj := range p.Objects {
		if obj.Kind == kind {
			out = append(out, obj)
		}
	}
	return out
}
