// Package featuredetect records which optional device features an application actually uses.
//
// Applications often hand the feature structs they got from the driver straight back to
// vkCreateDevice. A capture tool that replays such a trace demands every feature the capture
// device had. The Detector watches the create infos and commands the application submits, and
// the Adjust* functions then turn off feature bits and extensions that were never exercised.
//
// Check functions should only be called after the Vulkan call they shadow succeeded. Extension
// entry points are not tracked here; extensions are tracked through the extension list instead.
package featuredetect

import (
	"sync"
	"sync/atomic"

	"github.com/dolthub/swiss"
)

// Scope says which feature struct a feature name belongs to
type Scope int

const (
	Core10 Scope = iota
	Core11
	Core12
	Core13
)

var scopeNames = map[Scope]string{
	Core10: "VkPhysicalDeviceFeatures",
	Core11: "VkPhysicalDeviceVulkan11Features",
	Core12: "VkPhysicalDeviceVulkan12Features",
	Core13: "VkPhysicalDeviceVulkan13Features",
}

func (s Scope) String() string {
	return scopeNames[s]
}

type usage struct {
	scope Scope
	name  string
}

// Detector is safe for concurrent use. It must not be copied after first use.
type Detector struct {
	lock sync.Mutex
	used *swiss.Map[usage, struct{}]

	// Extensions that are detected through a feature struct or an enum value rather than
	// through their entry points
	ShaderAtomicInt64      atomic.Bool
	ShaderImageAtomicInt64 atomic.Bool
	FilterCubic            atomic.Bool
}

func New() *Detector {
	return &Detector{used: swiss.NewMap[usage, struct{}](64)}
}

// Use marks a feature as used. Names are the Vulkan member names, e.g. "logicOp".
func (d *Detector) Use(scope Scope, name string) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.used.Put(usage{scope: scope, name: name}, struct{}{})
}

func (d *Detector) Used(scope Scope, name string) bool {
	d.lock.Lock()
	defer d.lock.Unlock()

	return d.used.Has(usage{scope: scope, name: name})
}

// Reset forgets everything seen so far
func (d *Detector) Reset() {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.used.Clear()
	d.ShaderAtomicInt64.Store(false)
	d.ShaderImageAtomicInt64.Store(false)
	d.FilterCubic.Store(false)
}
