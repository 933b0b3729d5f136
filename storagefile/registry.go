package storagefile

import (
	"context"
	"fmt"

	"github.com/dot5enko/storagefile/rawfile"
	"github.com/dot5enko/storagefile/storageconfig"
	"github.com/dot5enko/storagefile/storageerr"
	"github.com/google/uuid"
)

// LiveObject is whatever a recovery handler hands back once it has turned
// a decoded config payload into a running object (a page device, a
// volume, ...). This package only needs to manage its lifetime; it never
// looks inside one.
type LiveObject interface {
	UUID() uuid.UUID
	Close() error
}

// RecoveryFunc turns a decoded config payload plus the raw file it lives
// in into a LiveObject. slotAbsOffset is the absolute file offset of the
// slot the config came from, needed to resolve any self-relative field
// the payload carries (a page device's Page0Offset, a volume's Name).
type RecoveryFunc func(ctx context.Context, slotAbsOffset int64, config any, file rawfile.RawBlockFile, runtimeOptions any) (LiveObject, error)

var recoveryFuncs = map[storageconfig.Tag]RecoveryFunc{}

// RegisterRecovery binds a tag to the function that knows how to bring a
// decoded config of that kind to life. Called from each object package's
// init(), so importing pagedevice or volume is what makes their kind
// recoverable.
func RegisterRecovery(tag storageconfig.Tag, fn RecoveryFunc) {
	recoveryFuncs[tag] = fn
}

func recoveryFuncFor(tag storageconfig.Tag) (RecoveryFunc, error) {
	fn, ok := recoveryFuncs[tag]
	if !ok {
		return nil, fmt.Errorf("%w: no recovery handler registered for tag %s", storageerr.ErrInvalidArgument, tag)
	}
	return fn, nil
}
