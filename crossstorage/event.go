package crossstorage

// Event names a renewal lifecycle broadcast.  Independent of the
// command/response protocol, the hub's host rebroadcasts these to every
// attached frame; requesters re-synchronize all fields before dispatching
// their callbacks.
type Event string

const (
	EventRenewing Event = "access_renewing"
	EventRenewed  Event = "access_renewed"
	EventDenied   Event = "access_denied"
)

// DeniedData carries the reason attached to an EventDenied broadcast.
type DeniedData struct {
	Error string `json:"error"`
}
