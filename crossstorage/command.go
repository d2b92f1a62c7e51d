package crossstorage

// Command names one readable session record field.  A Hub answers exactly
// these and stays silent on anything else, so the protocol can grow without
// breaking older requesters.
type Command string

const (
	CommandAccessToken        Command = "ACCESS_TOKEN"
	CommandAccessTokenPayload Command = "ACCESS_TOKEN_PAYLOAD"
	CommandUser               Command = "USER"
	CommandRefreshToken       Command = "REFRESH_TOKEN"
	CommandStateKey           Command = "STATE_KEY"
	CommandLastConnection     Command = "LAST_CONNECTION"
)

// Commands returns the full command set, one per session record field.
func Commands() []Command {
	return []Command{
		CommandAccessToken,
		CommandAccessTokenPayload,
		CommandUser,
		CommandRefreshToken,
		CommandStateKey,
		CommandLastConnection,
	}
}
