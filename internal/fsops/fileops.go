package fsops

// FileOps abstracts filesystem mutations
// Enables mocking in tests to prove dry-run never touches the filesystem
type FileOps interface {
	Rename(src, dst string) error
	CopyFile(src, dst string) error
	Remove(path string) error
	MkdirAll(path string) error
}
