package binarydict

import (
	"errors"

	"github.com/tkng/akaza/dictkey"
)

var (
	// ErrInvalidInput reports a reading or candidate holding a reserved byte.
	ErrInvalidInput = dictkey.ErrInvalidInput

	// ErrNotReady is returned by queries and Save before Build or Load.
	ErrNotReady = errors.New("binarydict: dictionary is neither built nor loaded")
	// ErrIO wraps failures to read or write a dictionary file.
	ErrIO = errors.New("binarydict: i/o error")
	// ErrBuild wraps failures to encode the trie, such as dawg.ErrTooLarge.
	ErrBuild = errors.New("binarydict: build failed")
)
