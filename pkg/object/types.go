package object

// Hash is a 64-character hex-encoded SHA-256 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// Valid reports whether t is one of the known object types.
func (t ObjectType) Valid() bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit:
		return true
	}
	return false
}

const (
	// Tree mode constants compatible with Git's canonical mode strings.
	TreeModeDir  = "40000"
	TreeModeFile = "100644"
)

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// TreeEntry is one entry in a tree object. Hash points at a blob when
// Type is TypeBlob and at a subtree when Type is TypeTree.
type TreeEntry struct {
	Mode string
	Type ObjectType
	Hash Hash
	Name string
}

// IsDir reports whether the entry refers to a subtree.
func (e TreeEntry) IsDir() bool {
	return e.Type == TypeTree
}

// TreeObj holds a sorted list of tree entries.
type TreeObj struct {
	Entries []TreeEntry // sorted by Name
}

// Signature identifies who made a commit and when.
type Signature struct {
	Name     string
	Email    string
	When     int64  // unix seconds
	Timezone string // e.g. "+0100"
}

// CommitObj represents a commit pointing to a tree with metadata. History
// is linear: a commit has at most one parent.
type CommitObj struct {
	TreeHash Hash
	Parent   Hash // empty for the first commit on a branch
	Author   Signature
	Message  string
}
