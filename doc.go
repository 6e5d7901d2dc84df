// Package lsra implements a linear-scan register allocator (LSRA) for a
// just-in-time compiler backend. Given a lowered IR — a CFG of basic blocks
// whose instructions already carry register requirements but not physical
// register assignments — Allocate assigns every live value a register or a
// stack home, and inserts the moves needed to reconcile register choices
// across control-flow edges.
//
// The package does not build IR, does not know about calling conventions
// beyond what TargetABI tells it, and does not emit machine code: all three
// are external collaborators, described by the interfaces in api.go.
//
// The algorithm follows the classic linear-scan shape (Poletto & Sarkar;
// Wimmer & Franz) augmented with an ordered register-selection heuristic
// tower and a block-boundary move resolver, in the style of production JIT
// register allocators.
package lsra
