// Package oscvar implements change-tracked OSC-addressable variables:
// a generic leaf Var[T] plus the Node capability (handle/send/mark
// changed) that both leaves and composite structs (control.State,
// control.Params) expose uniformly.
package oscvar

// Node is the uniform capability a leaf Var[T] or a composite struct
// built from several Vars exposes to the engine: dispatch an incoming
// OSC message, flush any locally-changed values outward, and force a
// full resync.
type Node interface {
	// HandleOSC attempts to apply args to the variable(s) addressed by
	// addr, returning true if something matched (and mutated only on
	// an actual value change).
	HandleOSC(addr string, args []interface{}) bool
	// SendChanged calls send for every variable whose value changed
	// locally since the last call, then clears that variable's
	// outgoing flag.
	SendChanged(send func(addr string, args []interface{}))
	// SetChanged marks every variable as having changed outgoing,
	// used to force a full resync (e.g. after an edit-slot swap).
	SetChanged()
}

// Codec converts a Go value to and from OSC argument lists.
type Codec[T any] interface {
	Encode(v T) []interface{}
	Decode(args []interface{}) (T, bool)
}

// Var is a single OSC-addressable, change-tracked variable. It is not
// safe for concurrent use on its own — callers coordinate access
// through the single StreamingParams mutex, per the system's
// concurrency model.
type Var[T comparable] struct {
	Address string

	value           T
	changedOutgoing bool
	changedIncoming bool
	codec           Codec[T]
}

// NewVar returns a Var bound to address, holding initial, and flagged
// as changed outgoing so the first broadcast always includes it.
func NewVar[T comparable](address string, initial T, codec Codec[T]) *Var[T] {
	return &Var[T]{
		Address:         address,
		value:           initial,
		changedOutgoing: true,
		codec:           codec,
	}
}

// Get returns the current value.
func (v *Var[T]) Get() T { return v.value }

// Set writes newVal, flagging it changed-outgoing only if it differs
// from the current value.
func (v *Var[T]) Set(newVal T) {
	if newVal != v.value {
		v.value = newVal
		v.changedOutgoing = true
	}
}

// ChangedIncoming reports whether the most recent HandleOSC call
// changed this variable's value, for side-effect handlers that react
// to specific variables (fps, beat_multiplier, active_slot, ...).
func (v *Var[T]) ChangedIncoming() bool { return v.changedIncoming }

// SetHandled clears the incoming-change flag once a side-effect
// handler has consumed it.
func (v *Var[T]) SetHandled() { v.changedIncoming = false }

// HandleOSC implements Node.
func (v *Var[T]) HandleOSC(addr string, args []interface{}) bool {
	if addr != v.Address {
		return false
	}
	newVal, ok := v.codec.Decode(args)
	if !ok {
		return false
	}
	if newVal != v.value {
		v.value = newVal
		v.changedIncoming = true
	}
	return true
}

// SendChanged implements Node.
func (v *Var[T]) SendChanged(send func(addr string, args []interface{})) {
	if v.changedOutgoing {
		send(v.Address, v.codec.Encode(v.value))
		v.changedOutgoing = false
	}
}

// SetChanged implements Node.
func (v *Var[T]) SetChanged() {
	v.changedOutgoing = true
}
