// Copyright © 2018 One Concern

package cafs

import "github.com/oneconcern/gitlib/pkg/cafs/status"

// Kind tags the type of a stored object
type Kind string

// Supported object kinds
const (
	KindBlob   Kind = "blob"
	KindTree   Kind = "tree"
	KindCommit Kind = "commit"
	KindTag    Kind = "tag"
)

// Kinds lists all supported object kinds
func Kinds() []Kind {
	return []Kind{KindBlob, KindTree, KindCommit, KindTag}
}

// ParseKind validates a kind name
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", status.ErrUnknownKind.WrapMessage(s)
	}
	return k, nil
}

// Valid kind?
func (k Kind) Valid() bool {
	switch k {
	case KindBlob, KindTree, KindCommit, KindTag:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}
