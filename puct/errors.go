package puct

import "github.com/pkg/errors"

// ErrNoRoot is returned by operations that require an established root
// node when none has been set up yet.
var ErrNoRoot = errors.New("puct: no root established")

// ErrEmptyPolicy is returned when the oracle's policy vector does not
// cover the node's action space.
var ErrEmptyPolicy = errors.New("puct: oracle policy vector shorter than action space")
