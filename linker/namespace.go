package linker

import (
	"strconv"
	"strings"
	"sync"

	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/wasm-capabilities/errors"
)

// Version is a semantic version attached to a namespace.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// ParseVersion parses "0.2.0" or "0.2". It reports false on malformed input.
func ParseVersion(s string) (Version, bool) {
	if s == "" {
		return Version{}, false
	}

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, false
	}

	var nums [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Version{}, false
		}
		nums[i] = uint32(n)
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, true
}

// Compatible reports whether v satisfies an import requesting want:
// same major, and v not older than want.
func (v Version) Compatible(want Version) bool {
	if v.Major != want.Major {
		return false
	}
	if v.Minor != want.Minor {
		return v.Minor > want.Minor
	}
	return v.Patch >= want.Patch
}

// String returns "major.minor.patch".
func (v Version) String() string {
	return strconv.FormatUint(uint64(v.Major), 10) + "." +
		strconv.FormatUint(uint64(v.Minor), 10) + "." +
		strconv.FormatUint(uint64(v.Patch), 10)
}

// FuncDef is one host function definition within a namespace.
type FuncDef struct {
	Name        string
	Handler     api.GoModuleFunc
	ParamTypes  []api.ValueType
	ResultTypes []api.ValueType
}

// Namespace is one guest-visible interface, e.g. "wippy:caps/kv@0.1.0".
// A namespace maps to a single wazero host module at instantiation time.
type Namespace struct {
	name    string
	version *Version
	funcs   map[string]*FuncDef
	order   []string
	mu      sync.RWMutex
}

func newNamespace(name string, version *Version) *Namespace {
	return &Namespace{
		name:    name,
		version: version,
		funcs:   make(map[string]*FuncDef),
	}
}

// Name returns the unversioned namespace name, e.g. "wippy:caps/kv".
func (ns *Namespace) Name() string {
	return ns.name
}

// Version returns the namespace version, or nil if unversioned.
func (ns *Namespace) Version() *Version {
	return ns.version
}

// FullPath returns the versioned path, e.g. "wippy:caps/kv@0.1.0".
func (ns *Namespace) FullPath() string {
	if ns.version == nil {
		return ns.name
	}
	return ns.name + "@" + ns.version.String()
}

// DefineFunc adds a host function to the namespace. A second definition
// under the same name is a collision in the guest-visible namespace and is
// rejected.
func (ns *Namespace) DefineFunc(name string, fn api.GoModuleFunc, params, results []api.ValueType) error {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if _, exists := ns.funcs[name]; exists {
		return errors.DuplicateName(ns.FullPath(), name)
	}

	ns.funcs[name] = &FuncDef{
		Name:        name,
		Handler:     fn,
		ParamTypes:  params,
		ResultTypes: results,
	}
	ns.order = append(ns.order, name)
	return nil
}

// Func returns the definition for name, or nil.
func (ns *Namespace) Func(name string) *FuncDef {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return ns.funcs[name]
}

// FuncNames returns function names in definition order.
func (ns *Namespace) FuncNames() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	out := make([]string, len(ns.order))
	copy(out, ns.order)
	return out
}

// splitPath separates "ns:pkg/iface@0.1.0" into name and version.
func splitPath(path string) (name string, version *Version, ok bool) {
	name, verStr, found := strings.Cut(path, "@")
	if name == "" {
		return "", nil, false
	}
	if !found {
		return name, nil, true
	}
	v, ok := ParseVersion(verStr)
	if !ok {
		return "", nil, false
	}
	return name, &v, true
}

// splitFuncPath separates "ns:pkg/iface@0.1.0#func" into namespace path and
// function name.
func splitFuncPath(path string) (nsPath, funcName string, ok bool) {
	nsPath, funcName, found := strings.Cut(path, "#")
	if !found || nsPath == "" || funcName == "" {
		return "", "", false
	}
	return nsPath, funcName, true
}
