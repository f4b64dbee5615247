package impulse

type mutationKind int

const (
	mutAddBody mutationKind = iota
	mutRemoveBody
	mutAddConstraint
	mutRemoveConstraint
)

type mutation struct {
	kind       mutationKind
	body       *Body
	constraint Constraint
}

// Commands queues structural changes to a world. Queued changes are applied in call
// order when the current or next step completes, or by FlushCommands.
type Commands struct {
	world *World
}

// Commands returns a queue bound to w.
func (w *World) Commands() *Commands {
	return &Commands{world: w}
}

func (cmd *Commands) AddBody(b *Body) *Commands {
	cmd.world.enqueue(mutation{kind: mutAddBody, body: b})
	return cmd
}

func (cmd *Commands) RemoveBody(b *Body) *Commands {
	cmd.world.enqueue(mutation{kind: mutRemoveBody, body: b})
	return cmd
}

func (cmd *Commands) AddConstraint(c Constraint) *Commands {
	cmd.world.enqueue(mutation{kind: mutAddConstraint, constraint: c})
	return cmd
}

func (cmd *Commands) RemoveConstraint(c Constraint) *Commands {
	cmd.world.enqueue(mutation{kind: mutRemoveConstraint, constraint: c})
	return cmd
}

// Pending is the number of queued changes.
func (cmd *Commands) Pending() int {
	return len(cmd.world.pending)
}

func (w *World) enqueue(m mutation) {
	w.pending = append(w.pending, m)
}

// FlushCommands applies queued changes now. It does nothing while the world is
// stepping.
func (w *World) FlushCommands() {
	if w.locked || len(w.pending) == 0 {
		return
	}
	// Changes applied here may queue more through event listeners.
	for len(w.pending) > 0 {
		batch := w.pending
		w.pending = nil
		w.Logger.Debugf("applying %d queued world changes", len(batch))
		for _, m := range batch {
			switch m.kind {
			case mutAddBody:
				w.AddBody(m.body)
			case mutRemoveBody:
				w.RemoveBody(m.body)
			case mutAddConstraint:
				w.AddConstraint(m.constraint)
			case mutRemoveConstraint:
				w.RemoveConstraint(m.constraint)
			}
		}
	}
}
