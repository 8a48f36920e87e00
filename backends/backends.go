// Package backends defines the contract a code-generation backend must
// implement to be driven by the map compiler (package compiler).
//
// A backend has two halves: the ModuleEmitter, which owns variables and the
// instruction stream, and the RegionManager, which decides how emitted code is
// grouped into regions (basic blocks) and whether adjacent regions may be
// merged. An interpreted backend may not need regions at all; declining every
// merge is always valid, see NoRegionMerging.
//
// To simplify error handling, all backend functions are expected to throw
// (panic) with a stack trace in case of errors. See package
// github.com/gomlx/exceptions. The compiler converts the panic to an error at
// its CompileMap boundary.
package backends

import (
	"os"
	"strings"

	"github.com/gomlx/exceptions"
)

// Backend is the API a code-generation target implements.
//
// A Backend instance is exclusively owned by one in-flight compilation: none of
// its methods are safe for concurrent use.
type Backend interface {
	// Name returns the short name of the backend, e.g. "irtext".
	Name() string

	// Description is a longer description of the Backend that can be used to pretty-print.
	Description() string

	// Module returns the backend's module emitter, which node lowering uses to
	// create variables and emit instructions.
	Module() ModuleEmitter

	// RegionManager is the region bookkeeping and merge policy.
	RegionManager

	// Finalize releases all the associated resources immediately, and makes the backend invalid.
	Finalize()
}

// Constructor takes a config string (optionally empty) and returns a Backend.
type Constructor func(config string) Backend

var (
	registeredConstructors = make(map[string]Constructor)
	firstRegistered        string
)

// Register a backend constructor under the given name. The constructor receives
// the configuration string passed to NewWithConfig.
//
// To be safe, call Register during initialization of a package.
func Register(name string, constructor Constructor) {
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = constructor
}

// DefaultConfig is the backend configuration to use if ConfigEnvVar is not set.
var DefaultConfig string

// ConfigEnvVar is the environment variable with the default backend
// configuration to use.
//
// The format of config is "<backend_name>:<backend_configuration>".
// "<backend_name>" is the name of a registered backend (e.g. "irtext") and
// "<backend_configuration>" is backend specific.
const ConfigEnvVar = "ELL_BACKEND"

// New returns a new Backend built from the default configuration.
//
// The default is:
//
//  1. The environment variable ELL_BACKEND is used as the configuration if defined.
//  2. Next the variable DefaultConfig is used as the configuration if defined.
//  3. The first registered backend is used with an empty configuration.
//
// It panics if no backend was registered.
func New() Backend {
	config, found := os.LookupEnv(ConfigEnvVar)
	if found {
		return NewWithConfig(config)
	}
	if DefaultConfig != "" {
		return NewWithConfig(DefaultConfig)
	}
	return NewWithConfig("")
}

// NewWithConfig builds a Backend from a "<backend_name>:<backend_configuration>"
// string. An empty backend name selects the first registered backend.
func NewWithConfig(config string) Backend {
	if len(registeredConstructors) == 0 {
		exceptions.Panicf(`no registered backends -- maybe import the default one with import _ "github.com/SuFu123/ELL/backends/irtext"?`)
	}
	backendName := firstRegistered
	backendConfig := config
	if idx := strings.Index(config, ":"); idx != -1 {
		backendName = config[:idx]
		backendConfig = config[idx+1:]
	}
	if backendName == "" {
		backendName = firstRegistered
	}
	constructor, found := registeredConstructors[backendName]
	if !found {
		exceptions.Panicf("can't find backend %q for configuration %q given", backendName, config)
	}
	return constructor(backendConfig)
}
