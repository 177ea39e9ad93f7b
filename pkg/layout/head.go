// Copyright © 2018 One Concern

package layout

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/oneconcern/gitlib/pkg/cafs"
	"github.com/oneconcern/gitlib/pkg/layout/status"
)

const (
	symrefPrefix = "ref: "
	headsPrefix  = "refs/heads/"
	tagsPrefix   = "refs/tags/"
)

// Head is the content of the HEAD file: either a symbolic reference or a detached object key
type Head struct {
	Ref string   `json:"ref,omitempty" yaml:"ref,omitempty"`
	Key cafs.Key `json:"-" yaml:"-"`
}

// Detached is true when HEAD points directly at an object
func (h Head) Detached() bool {
	return h.Ref == ""
}

// Branch returns the short branch name for a symbolic HEAD pointing to refs/heads
func (h Head) Branch() string {
	return strings.TrimPrefix(h.Ref, headsPrefix)
}

func (h Head) String() string {
	if h.Detached() {
		return h.Key.String()
	}
	return h.Ref
}

// Marshal renders the HEAD file content
func (h Head) Marshal() []byte {
	if h.Detached() {
		return []byte(h.Key.String() + "\n")
	}
	return []byte(symrefPrefix + h.Ref + "\n")
}

// ParseHead reads the content of a HEAD file
func ParseHead(data []byte) (Head, error) {
	line := string(bytes.TrimRight(data, "\r\n"))
	if strings.ContainsAny(line, "\r\n") {
		return Head{}, status.ErrInvalidLayout.WrapMessage("HEAD spans several lines")
	}

	if strings.HasPrefix(line, symrefPrefix) {
		ref := strings.TrimSpace(strings.TrimPrefix(line, symrefPrefix))
		if err := checkRefName(ref); err != nil {
			return Head{}, status.ErrInvalidLayout.WrapMessage("HEAD: " + err.Error())
		}
		return Head{Ref: ref}, nil
	}

	key, err := cafs.KeyFromString(line)
	if err != nil {
		return Head{}, status.ErrInvalidLayout.WrapMessage(fmt.Sprintf("HEAD: %v", err))
	}
	return Head{Key: key}, nil
}

// headFor resolves a user supplied target: a full ref, a branch name or an object key
func headFor(target string) (Head, error) {
	if key, err := cafs.KeyFromString(target); err == nil {
		return Head{Key: key}, nil
	}

	ref := target
	if !strings.HasPrefix(ref, "refs/") {
		ref = headsPrefix + ref
	}
	if err := checkRefName(ref); err != nil {
		return Head{}, status.ErrInvalidOption.WrapMessage(err.Error())
	}
	return Head{Ref: ref}, nil
}

// checkRefName enforces a conservative subset of git's reference naming rules
func checkRefName(ref string) error {
	if !strings.HasPrefix(ref, headsPrefix) && !strings.HasPrefix(ref, tagsPrefix) {
		return fmt.Errorf("reference %q is neither a branch nor a tag", ref)
	}
	if strings.HasSuffix(ref, "/") || strings.HasSuffix(ref, ".lock") || strings.HasSuffix(ref, ".") {
		return fmt.Errorf("invalid reference name %q", ref)
	}
	if strings.Contains(ref, "..") || strings.Contains(ref, "//") || strings.Contains(ref, "@{") {
		return fmt.Errorf("invalid reference name %q", ref)
	}
	if path.Clean(ref) != ref {
		return fmt.Errorf("invalid reference name %q", ref)
	}
	for _, r := range ref {
		if r <= ' ' || r == 0x7f || strings.ContainsRune(`~^:?*[\`, r) {
			return fmt.Errorf("invalid character %q in reference name %q", r, ref)
		}
	}
	for _, component := range strings.Split(ref, "/") {
		if strings.HasPrefix(component, ".") {
			return fmt.Errorf("invalid reference name %q", ref)
		}
	}
	return nil
}

// checkBranchName validates a short branch name
func checkBranchName(name string) error {
	if name == "" {
		return status.ErrInvalidOption.WrapMessage("empty branch name")
	}
	if strings.HasPrefix(name, "-") {
		return status.ErrInvalidOption.WrapMessage(fmt.Sprintf("branch name %q starts with a dash", name))
	}
	if err := checkRefName(headsPrefix + name); err != nil {
		return status.ErrInvalidOption.WrapMessage(err.Error())
	}
	return nil
}
