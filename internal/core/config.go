package core

// BridgeConfig is the read-only bridge configuration surface the command
// layer consumes.
type BridgeConfig interface {
	GetCommandPrefix() string
	// MatrixLoginAllowed reports whether the login flow may run inside
	// Matrix rooms.
	MatrixLoginAllowed() bool
	// PublicLoginEnabled reports whether an out-of-band login website is
	// configured.
	PublicLoginEnabled() bool
	// PublicLoginURL builds the out-of-band login link for a user.
	PublicLoginURL(userID string) string
}

// HomeserverConfig is the appservice-facing configuration surface.
type HomeserverConfig interface {
	GetAddress() string
	GetDomain() string
	GetASToken() string
	GetHSToken() string
	BotMXID() string
}
