package models

// PresenceStatus is the ephemeral per-user node in the Realtime Database.
// Connected clients set it to online on connect and register an onDisconnect
// write back to offline; this subsystem only ever reads it.
type PresenceStatus struct {
	State       string `json:"state"` // "online" or "offline"
	LastChanged int64  `json:"last_changed,omitempty"`
}

const (
	PresenceOnline  = "online"
	PresenceOffline = "offline"
)

// PresenceSnapshot is a sparse view of the node as it appears in event
// payloads: a nil field was simply not present in that part of the payload.
type PresenceSnapshot struct {
	State       *string `json:"state"`
	LastChanged *int64  `json:"last_changed"`
}

// ReferenceEvent is the JSON payload of a Realtime Database "ref written"
// CloudEvent: Data holds the value before the write and Delta the change.
// Delta is a sparse diff that omits unchanged children, so a heartbeat
// rewrite of last_changed arrives without a state field.
type ReferenceEvent struct {
	Data  *PresenceSnapshot `json:"data"`
	Delta *PresenceSnapshot `json:"delta"`
}

// After resolves the node value after the write by patching Data with
// Delta, field-wise. A nil Delta means the node was deleted.
func (e ReferenceEvent) After() *PresenceStatus {
	if e.Delta == nil {
		return nil
	}
	var after PresenceStatus
	for _, snap := range []*PresenceSnapshot{e.Data, e.Delta} {
		if snap == nil {
			continue
		}
		if snap.State != nil {
			after.State = *snap.State
		}
		if snap.LastChanged != nil {
			after.LastChanged = *snap.LastChanged
		}
	}
	return &after
}
