package domain

import "errors"

var (
	ErrNotFound         = errors.New("digest not found in tree")
	ErrEmptyLeaves      = errors.New("empty leaf sequence")
	ErrInvalidRecord    = errors.New("invalid evidence record")
	ErrUnknownAlgorithm = errors.New("unknown digest algorithm")
	ErrRecordNotFound   = errors.New("evidence record not found")
	ErrChainConflict    = errors.New("evidence record chain was modified concurrently")
)
