// Copyright 2022 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package m68k

// PendingCall is a one-shot callback scheduled on the interrupt manager.
type PendingCall struct {
	next         *PendingCall
	atCycleCount uint64
	canceled     bool
	completed    bool
	fn           func() error
}

// Cancel prevents the callback from firing.
func (p *PendingCall) Cancel() {
	p.canceled = true
}

// Completed reports whether the callback has fired.
func (p *PendingCall) Completed() bool {
	return p.completed
}

// InterruptManager maintains a time-ordered queue of one-shot callbacks
// keyed by cycle count. Emulators call OnCycleStart at the top of every
// cycle; callbacks whose target count has been reached fire in order.
type InterruptManager struct {
	cycleCount uint64
	head       *PendingCall
}

// NewInterruptManager creates an empty interrupt manager.
func NewInterruptManager() *InterruptManager {
	return &InterruptManager{}
}

// Add schedules fn to run after the given number of cycles from now.
func (im *InterruptManager) Add(afterCycles uint64, fn func() error) *PendingCall {
	c := &PendingCall{atCycleCount: im.cycleCount + afterCycles, fn: fn}
	if im.head == nil || c.atCycleCount < im.head.atCycleCount {
		c.next = im.head
		im.head = c
		return c
	}
	prev := im.head
	for prev.next != nil && prev.next.atCycleCount < c.atCycleCount {
		prev = prev.next
	}
	c.next = prev.next
	prev.next = c
	return c
}

// OnCycleStart advances the cycle counter and fires all due callbacks. An
// error from a callback (including ErrTerminate) propagates to the caller.
func (im *InterruptManager) OnCycleStart() error {
	im.cycleCount++
	for im.head != nil && im.head.atCycleCount <= im.cycleCount {
		c := im.head
		im.head = c.next
		if !c.canceled {
			if err := c.fn(); err != nil {
				c.completed = true
				return err
			}
		}
		c.completed = true
	}
	return nil
}

// Cycles returns the number of cycles elapsed.
func (im *InterruptManager) Cycles() uint64 {
	return im.cycleCount
}
