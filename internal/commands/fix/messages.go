package fix

// fixAppliedMsg reports the outcome of applying one issue's fix
type fixAppliedMsg struct {
	index      int
	message    string
	backupPath string
	err        error
}
