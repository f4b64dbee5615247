package impulse

import "time"

// Profile holds the duration of the main stages of the last internal step. It is only
// filled when World.DoProfiling is set.
type Profile struct {
	Broadphase             time.Duration
	Narrowphase            time.Duration
	MakeContactConstraints time.Duration
	Solve                  time.Duration
	Integrate              time.Duration
}

func (p *Profile) Reset() {
	p.Broadphase = 0
	p.Narrowphase = 0
	p.MakeContactConstraints = 0
	p.Solve = 0
	p.Integrate = 0
}

func (p *Profile) Total() time.Duration {
	return p.Broadphase + p.Narrowphase + p.MakeContactConstraints + p.Solve + p.Integrate
}
