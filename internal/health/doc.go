// Package health computes the Financial Health Score: a 0-1000 composite made
// of three pillars (Trajectory, Behavior, Position) with two sub-factors each.
//
// Everything in this package is a pure function of its arguments. Callers
// assemble an Input from storage, pass the current time explicitly where it
// matters, and persist the Result themselves.
package health
