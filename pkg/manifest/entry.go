package manifest

type Kind uint8

const (
	KindFile Kind = iota
	KindDirectory
)

func (k Kind) String() string {
	if k == KindDirectory {
		return "directory"
	}
	return "file"
}

// Entry is the expected state of one path. Hash is only meaningful for
// files; directories may still declare a size.
type Entry struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	Size uint64 `json:"size" yaml:"size"`
	Hash string `json:"hash,omitempty" yaml:"hash,omitempty"`
}

func File(size uint64, hash string) Entry {
	return Entry{Kind: KindFile, Size: size, Hash: hash}
}

func Directory(size uint64) Entry {
	return Entry{Kind: KindDirectory, Size: size}
}

func (e Entry) IsDir() bool {
	return e.Kind == KindDirectory
}
