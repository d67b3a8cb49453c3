// Package game implements the aim and typing session controllers.
//
// A session owns its state and its timers. Time only moves through Advance, so
// the presentation layer decides the frame rate and tests drive a fake clock.
package game

import "github.com/verte-zerg/tuidrill/internal/model"

// Observer receives the side effects a session cannot perform itself.
type Observer interface {
	// InputCapture asks the presentation to grab or release the pointer/keyboard.
	InputCapture(on bool)
	// Shot fires on every validated shot or correct keystroke.
	Shot()
	// SessionEnded carries the final result once per finished session.
	SessionEnded(result model.Result)
	// Exited fires when the player leaves the session.
	Exited()
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) InputCapture(bool)         {}
func (NopObserver) Shot()                     {}
func (NopObserver) SessionEnded(model.Result) {}
func (NopObserver) Exited()                   {}

// ObserverFuncs adapts optional callbacks to Observer.
type ObserverFuncs struct {
	OnInputCapture func(on bool)
	OnShot         func()
	OnEnded        func(result model.Result)
	OnExit         func()
}

func (o ObserverFuncs) InputCapture(on bool) {
	if o.OnInputCapture != nil {
		o.OnInputCapture(on)
	}
}

func (o ObserverFuncs) Shot() {
	if o.OnShot != nil {
		o.OnShot()
	}
}

func (o ObserverFuncs) SessionEnded(result model.Result) {
	if o.OnEnded != nil {
		o.OnEnded(result)
	}
}

func (o ObserverFuncs) Exited() {
	if o.OnExit != nil {
		o.OnExit()
	}
}
