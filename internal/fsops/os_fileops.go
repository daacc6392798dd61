package fsops

import (
	"fmt"
	"io"
	"os"
)

// OSFileOps implements FileOps using real os package calls
type OSFileOps struct{}

func (OSFileOps) Rename(src, dst string) error {
	return os.Rename(src, dst)
}

// CopyFile copies src to dst, overwriting any existing file at dst.
// The destination inherits the source's permission bits.
func (OSFileOps) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

func (OSFileOps) Remove(path string) error {
	return os.Remove(path)
}

func (OSFileOps) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}
