// Package smc implements the sliding-mode control family for the double
// inverted pendulum cart: classical, adaptive-gain, super-twisting and a
// hybrid blend of the last two.
//
// Every law is a pure function of (state, memory, time): mutable controller
// state (adaptive gains, the super-twisting integral) lives in an explicit
// [Memory] value that is returned updated each step, never in hidden fields.
// The [Runner] adapter threads Memory through a rollout and satisfies
// [dynamo.Controller] for the simulator.
//
// The model-based feedforward term is optional. When a plant model is
// available the equivalent-control estimator cancels nominal dynamics; when
// it is absent, near-uncontrollable, or numerically singular, the term
// degrades to zero, never to an error.
package smc
