package installer

// InstallState accumulates the wizard's answers as environment variable
// assignments, keyed by variable name.
type InstallState struct {
	EnvVars map[string]string
}

func NewInstallState() *InstallState {
	return &InstallState{EnvVars: map[string]string{}}
}
