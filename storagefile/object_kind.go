package storagefile

import (
	"reflect"

	"github.com/dot5enko/storagefile/storageconfig"
)

// objectKind binds a config payload's Go type to its wire tag and decode
// function. New object kinds register themselves here via
// registerObjectKind, the same additive-registry shape the rest of this
// module uses for tag dispatch instead of a type switch that would need
// editing every time a new kind is added.
type objectKind struct {
	tag    storageconfig.Tag
	decode func([]byte) (any, error)
}

var objectKinds = map[reflect.Type]objectKind{}

func registerObjectKind[T any](tag storageconfig.Tag, decode func([]byte) (any, error)) {
	var zero T
	objectKinds[reflect.TypeOf(zero)] = objectKind{tag: tag, decode: decode}
}

func init() {
	registerObjectKind[storageconfig.PackedPageDeviceConfig](storageconfig.TagPageDevice, func(p []byte) (any, error) {
		return storageconfig.DecodePageDeviceConfig(p)
	})
	registerObjectKind[storageconfig.PackedVolumeConfig](storageconfig.TagVolume, func(p []byte) (any, error) {
		return storageconfig.DecodeVolumeConfig(p), nil
	})
}
