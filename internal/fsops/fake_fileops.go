package fsops

// FakeFileOps implements FileOps for testing
// Records all calls without performing actual mutations. FailPaths injects
// per-path failures so partial-failure handling can be exercised.
type FakeFileOps struct {
	Calls     []string
	FailPaths map[string]error
}

func (f *FakeFileOps) Rename(src, dst string) error {
	if err := f.FailPaths[src]; err != nil {
		return err
	}
	f.Calls = append(f.Calls, "mv:"+src+"->"+dst)
	return nil
}

func (f *FakeFileOps) CopyFile(src, dst string) error {
	if err := f.FailPaths[src]; err != nil {
		return err
	}
	f.Calls = append(f.Calls, "cp:"+src+"->"+dst)
	return nil
}

func (f *FakeFileOps) Remove(path string) error {
	if err := f.FailPaths[path]; err != nil {
		return err
	}
	f.Calls = append(f.Calls, "rm:"+path)
	return nil
}

func (f *FakeFileOps) MkdirAll(path string) error {
	if err := f.FailPaths[path]; err != nil {
		return err
	}
	f.Calls = append(f.Calls, "mkdir:"+path)
	return nil
}
