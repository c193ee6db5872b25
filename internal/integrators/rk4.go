package integrators

import "dipctl/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta scheme. A single scratch
// vector is reused across steps for the intermediate evaluation points; the
// stage derivatives come back fresh from Derive, so they need no staging
// buffers of their own.
type RK4 struct {
	mid dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	if len(r.mid) != n {
		r.mid = make(dynamo.State, n)
	}

	k1 := dyn.Derive(x, u, t)

	for i := 0; i < n; i++ {
		r.mid[i] = x[i] + dt*0.5*k1[i]
	}
	k2 := dyn.Derive(r.mid, u, t+dt*0.5)

	for i := 0; i < n; i++ {
		r.mid[i] = x[i] + dt*0.5*k2[i]
	}
	k3 := dyn.Derive(r.mid, u, t+dt*0.5)

	for i := 0; i < n; i++ {
		r.mid[i] = x[i] + dt*k3[i]
	}
	k4 := dyn.Derive(r.mid, u, t+dt)

	next := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		next[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}

	return next
}
