package auth

// Actor identifies who issued a write. Server-side consumers (the charge
// bridge, the ship fan-out, scheduled jobs) act as the system actor; writes
// arriving over the API carry an authenticated user id. Modelled as an
// explicit type rather than a magic string so a user literally named
// "system" can never collide with the sentinel.
type Actor struct {
	id     string
	system bool
}

// SystemActor is the identity for writes originating from server-side
// consumers rather than a signed-in user.
var SystemActor = Actor{system: true}

// AuthenticatedActor wraps a real user identity.
func AuthenticatedActor(id string) Actor {
	if id == "" {
		return SystemActor
	}
	return Actor{id: id}
}

// IsSystem reports whether the actor is the system sentinel.
func (a Actor) IsSystem() bool { return a.system }

// String renders the actor for audit storage. The system sentinel renders
// as the literal "system", matching what consuming surfaces display.
func (a Actor) String() string {
	if a.system {
		return "system"
	}
	return a.id
}

// ActorFromField interprets a bookkeeping field value from a write payload.
// Absent or empty values mean the write came from a server-side consumer.
func ActorFromField(raw string) Actor {
	if raw == "" {
		return SystemActor
	}
	return Actor{id: raw}
}
