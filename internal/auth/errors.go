package auth

import "errors"

// ErrNoActor is returned when an authorization check is asked for without an actor.
var ErrNoActor = errors.New("no actor")
