package fix

// Status represents the current state of the fix browser
type Status int

const (
	// StatusBrowsing is the default state, paging through issues
	StatusBrowsing Status = iota
	// StatusApplying is set while a fix is being written to disk
	StatusApplying
	// StatusError is set when the browser cannot continue
	StatusError
)
