package impulse

import (
	"math"

	"github.com/gekko3d/impulse/geom"
	"github.com/go-gl/mathgl/mgl64"
)

// Solver consumes the equations of one step and applies the resulting velocity
// changes to the bodies.
type Solver interface {
	AddEquation(eq Equation)
	RemoveEquation(eq Equation)
	RemoveAllEquations()
	// Solve returns the number of iterations performed.
	Solve(dt float64, world *World) int
}

// GSSolver is a projected Gauss-Seidel solver.
type GSSolver struct {
	Iterations int
	// Tolerance stops iterating once the summed multiplier change falls below it.
	Tolerance float64

	equations []Equation

	invCs  []float64
	bs     []float64
	lambda []float64
}

func NewGSSolver() *GSSolver {
	return &GSSolver{Iterations: 10, Tolerance: 1e-7}
}

// AddEquation queues eq for the next solve. Disabled equations are ignored.
func (s *GSSolver) AddEquation(eq Equation) {
	if eq.Base().Enabled {
		s.equations = append(s.equations, eq)
	}
}

func (s *GSSolver) RemoveEquation(eq Equation) {
	for i, other := range s.equations {
		if other == eq {
			s.equations = append(s.equations[:i], s.equations[i+1:]...)
			return
		}
	}
}

func (s *GSSolver) RemoveAllEquations() {
	clear(s.equations)
	s.equations = s.equations[:0]
}

func (s *GSSolver) NumEquations() int {
	return len(s.equations)
}

func (s *GSSolver) Solve(dt float64, world *World) int {
	n := len(s.equations)
	if n == 0 {
		return 0
	}
	h := dt
	bodies := world.Bodies
	tolSquared := s.Tolerance * s.Tolerance

	for _, b := range bodies {
		b.UpdateSolveMassProperties()
	}

	s.invCs = resizeFloats(s.invCs, n)
	s.bs = resizeFloats(s.bs, n)
	s.lambda = resizeFloats(s.lambda, n)

	for i, eq := range s.equations {
		s.lambda[i] = 0
		s.bs[i] = eq.ComputeB(h)
		s.invCs[i] = 1.0 / eq.Base().computeC()
	}

	for _, b := range bodies {
		b.vlambda = mgl64.Vec3{}
		b.wlambda = mgl64.Vec3{}
	}

	var iter int
	for iter = 0; iter < s.Iterations; iter++ {
		deltalambdaTot := 0.0
		for j, eq := range s.equations {
			c := eq.Base()
			lambdaj := s.lambda[j]
			gWlambda := c.computeGWlambda()
			deltalambda := s.invCs[j] * (s.bs[j] - gWlambda - c.eps*lambdaj)

			switch {
			case lambdaj+deltalambda < c.MinForce:
				deltalambda = c.MinForce - lambdaj
			case lambdaj+deltalambda > c.MaxForce:
				deltalambda = c.MaxForce - lambdaj
			}
			s.lambda[j] += deltalambda
			deltalambdaTot += math.Abs(deltalambda)
			c.addToWlambda(deltalambda)
		}
		if deltalambdaTot*deltalambdaTot < tolSquared {
			break
		}
	}

	for _, b := range bodies {
		b.Velocity = b.Velocity.Add(geom.MulElem(b.vlambda, b.LinearFactor))
		b.AngularVelocity = b.AngularVelocity.Add(geom.MulElem(b.wlambda, b.AngularFactor))
	}

	invH := 1.0 / h
	for i, eq := range s.equations {
		eq.Base().Multiplier = s.lambda[i] * invH
	}
	return iter
}

func resizeFloats(s []float64, n int) []float64 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]float64, n)
}
