// Package git supplies diff text from a local repository. A diff is
// treated exactly like file content downstream: opaque text the model is
// trusted to interpret.
package git

// ChangeType represents the type of change to a file
type ChangeType string

const (
	// ChangeTypeAdded represents a file that was added
	ChangeTypeAdded ChangeType = "added"
	// ChangeTypeModified represents a file that was modified
	ChangeTypeModified ChangeType = "modified"
	// ChangeTypeDeleted represents a file that was deleted
	ChangeTypeDeleted ChangeType = "deleted"
)

// ChangedFile is one file's change between two revisions, carrying its
// unified patch text.
type ChangedFile struct {
	Path       string     `json:"path"`
	OldPath    string     `json:"old_path,omitempty"`
	ChangeType ChangeType `json:"change_type"`
	Patch      string     `json:"patch,omitempty"`
}
