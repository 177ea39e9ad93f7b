// Copyright © 2018 One Concern

package cafs

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// KeySize for 512 bits hashes
	KeySize = 64

	// KeySizeHex for hex representation of a key
	KeySizeHex = 2 * KeySize

	// fanOut is the number of hex characters used to name the first-level directory
	fanOut = 2
)

// Key type for CAFS keys
type Key [KeySize]byte

// NewKey creates a new key from data
func NewKey(data []byte) (Key, error) {
	var k Key
	if len(data) != KeySize {
		return Key{}, &BadKeySize{Key: data}
	}
	copy(k[:], data)
	return k, nil
}

// MustNewKey creates a new key from data but panics if there is an error
func MustNewKey(data []byte) Key {
	k, e := NewKey(data)
	if e != nil {
		panic(e.Error())
	}
	return k
}

// KeyFromString parses the hex representation of a key
func KeyFromString(str string) (Key, error) {
	if len(str) != KeySizeHex {
		return Key{}, &BadKeySize{Key: []byte(str)}
	}
	b, err := hex.DecodeString(strings.ToLower(str))
	if err != nil {
		return Key{}, fmt.Errorf("invalid key %q: %w", str, err)
	}
	return NewKey(b)
}

// KeyFromPath parses a storage path ("xx/yyyy...") back into a key.
//
// Only the exact path written for a key is accepted.
func KeyFromPath(pth string) (Key, error) {
	if len(pth) != KeySizeHex+1 || pth[fanOut] != '/' {
		return Key{}, fmt.Errorf("%q is not an object path", pth)
	}
	k, err := KeyFromString(pth[:fanOut] + pth[fanOut+1:])
	if err != nil {
		return Key{}, err
	}
	if k.Path() != pth {
		return Key{}, fmt.Errorf("%q is not an object path", pth)
	}
	return k, nil
}

func (k Key) String() string {
	return hex.EncodeToString(k[:])
}

// Path is the location of the object in the backend store
func (k Key) Path() string {
	s := k.String()
	return s[:fanOut] + "/" + s[fanOut:]
}

// IsZero tells if this key is the zero value
func (k Key) IsZero() bool {
	return k == Key{}
}

// BadKeySize is an error that's returned when the key to create has an invalid size.
type BadKeySize struct {
	Key []byte
}

func (b *BadKeySize) Error() string {
	return fmt.Sprintf("%x has invalid size of %d, expected %d", b.Key, len(b.Key), KeySize)
}
