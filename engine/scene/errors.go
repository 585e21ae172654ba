package scene

import "errors"

// ErrSphereIndexOutOfRange is returned by index based sphere mutations when the index does not
// address an existing sphere. The scene is left unchanged.
var ErrSphereIndexOutOfRange = errors.New("scene: sphere index out of range")
