package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/oneconcern/gitlib/pkg/cafs"
)

// minPrefix is the shortest abbreviated key accepted on the command line
const minPrefix = 4

func openObjects(ctx context.Context) (cafs.Fs, error) {
	repo, err := openRepo(ctx)
	if err != nil {
		return nil, err
	}
	return repo.Objects()
}

// resolveKey accepts a full key or an unambiguous prefix of a stored key
func resolveKey(ctx context.Context, objects cafs.Fs, arg string) (cafs.Key, error) {
	if len(arg) == cafs.KeySizeHex {
		return cafs.KeyFromString(arg)
	}
	if len(arg) < minPrefix {
		return cafs.Key{}, fmt.Errorf("object name %q is too short", arg)
	}

	keys, err := objects.Keys(ctx)
	if err != nil {
		return cafs.Key{}, err
	}
	prefix := strings.ToLower(arg)
	var matches []cafs.Key
	for _, key := range keys {
		if strings.HasPrefix(key.String(), prefix) {
			matches = append(matches, key)
		}
	}
	switch len(matches) {
	case 0:
		return cafs.Key{}, fmt.Errorf("no object matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		return cafs.Key{}, fmt.Errorf("object name %q is ambiguous: %d candidates", arg, len(matches))
	}
}

func sortKeys(keys []cafs.Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
