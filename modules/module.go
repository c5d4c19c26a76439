/**
 * Copyright (c) 2019, The GraphQL Modules Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package modules implements a module dependency-resolution and lazy composition engine. A Module
// is a named composition unit owning artifact fragments (type definitions, resolvers, providers,
// directives) and declaring imports of other modules. The engine discovers the transitive import
// closure, collapses import cycles into merged modules, lazily aggregates per-module artifacts
// with fine-grained invalidation when the module graph is rewritten, and builds one composed
// context per (session, module) pair with lifecycle hooks dispatched through the module's
// injector.
package modules

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dsalazarm/graphql-modules/inject"
	"github.com/dsalazarm/graphql-modules/kv"

	"github.com/google/uuid"
)

// Provider is a dependency-injection provider definition passed through to the module's injector.
// The built-in injector accepts inject.ValueProvider and inject.FactoryProvider.
type Provider = interface{}

// Injector is the dependency-injection capability consumed by the engine. The inject package
// supplies the built-in implementation.
type Injector = inject.Injector

// Store is the key-value cache capability exposed to context builders. The kv package supplies
// the built-in implementations.
type Store = kv.Store

// InjectorFactory builds the injector instance backing a module. The default is inject.New.
type InjectorFactory func() Injector

// ModuleConfig is the construction-time configuration of a Module. The struct is shared between
// a module and every instance derived from it with ForRoot; only the supplied configuration value
// is per instance.
type ModuleConfig struct {
	// Name uniquely identifies the module. A random name is generated when empty. Names must not
	// contain "+", which is reserved for merged module names.
	Name string

	// TypeDefs are the module's own schema definition documents.
	TypeDefs Value[[]string]

	// Resolvers are the module's own resolvers. Field and subscription entries are wrapped by
	// the resolver guard so they run against the module's composed session context.
	Resolvers Value[ResolverMap]

	// Imports declares the modules this module depends on, in override order for context merging.
	Imports Value[[]ModuleRef]

	// Providers are handed to the module's injector.
	Providers Value[[]Provider]

	// ResolversComposition maps "Type.field" paths to middleware chains applied over everything
	// visible to this module.
	ResolversComposition Value[ResolversComposition]

	// SchemaDirectives and DirectiveResolvers are aggregated and forwarded to the schema
	// compiler.
	SchemaDirectives   Value[SchemaDirectives]
	DirectiveResolvers Value[DirectiveResolvers]

	// ExtraSchemas are pre-built schemas folded into the module's schema by the SchemaMerger.
	ExtraSchemas Value[[]Schema]

	// ResolverValidationOptions tune the compiler's resolver checks.
	ResolverValidationOptions Value[ResolverValidationOptions]

	// Context is the module's own context contribution, literal or built per session.
	Context ContextValue

	// Logger receives engine diagnostics. Defaults to NoopLogger.
	Logger Logger

	// Cache is the key-value store exposed through SessionInfo. Defaults to a fresh in-memory
	// store per module instance.
	Cache Store

	// Middleware observes the computed artifacts after schema compilation and may override some
	// of them.
	Middleware Middleware

	// ConfigRequired excludes the module from discovery until a configuration is bound with
	// ForRoot. Direct artifact access without one fails with ModuleConfigRequired.
	ConfigRequired bool

	// DisableCircularImportsMerge turns import cycles from a merge into a fatal error.
	DisableCircularImportsMerge bool

	// DisableCircularImportsWarning silences the cycle warning emitted through Logger.
	DisableCircularImportsWarning bool

	// InjectorFactory, SchemaCompiler, SchemaMerger and Composer replace the built-in
	// collaborator implementations.
	InjectorFactory InjectorFactory
	SchemaCompiler  SchemaCompiler
	SchemaMerger    SchemaMerger
	Composer        Composer
}

// Module is a named composition unit. It is immutable after construction except for its derived
// artifact cache and session table; cycle merging produces new Module instances instead of
// mutating existing ones.
type Module struct {
	name   string
	config *ModuleConfig

	// suppliedConfig is the per-instance configuration bound by ForRoot.
	suppliedConfig    interface{}
	hasSuppliedConfig bool

	// memberNames lists every name this module stands for when it is the product of cycle
	// merging: the direct members plus any alias those members carried from earlier merges. nil
	// for ordinary modules.
	memberNames []string

	// memberModules holds the module instances memberNames came from. They adopt the resolved
	// modules map so their guards and derived options land on this merged instance instead of
	// re-rooting their own graph.
	memberModules []*Module

	// mergedOwn, mergedImports and mergedContexts replace the config-derived own fragments for
	// merged modules.
	mergedOwn      *ownFragments
	mergedImports  []ModuleRef
	mergedContexts []ContextValue

	cacheStore Store

	cache *cacheRecord

	// ownMu guards the once-per-instance own-fragment resolution.
	ownMu  sync.Mutex
	own    *ownFragments
	ownErr error

	// mapMu guards currentMap, the ModulesMap this module most recently computed artifacts
	// against. Importers overwrite it when they pull this module's artifacts under a newer map.
	mapMu      sync.Mutex
	currentMap *ModulesMap

	// sessionsMu guards sessions, the session-to-composed-context table.
	sessionsMu sync.Mutex
	sessions   map[interface{}]*contextEntry
}

// NewModule builds a Module from config. A nil config yields an anonymous module with no
// fragments.
func NewModule(config *ModuleConfig) (*Module, error) {
	if config == nil {
		config = &ModuleConfig{}
	}

	name := config.Name
	if len(name) == 0 {
		name = uuid.New().String()
	} else if strings.Contains(name, mergedNameSeparator) {
		return nil, NewError(
			fmt.Sprintf("module name %q must not contain %q, which is reserved for merged module names",
				name, mergedNameSeparator),
			ModuleName(name))
	}

	return newModule(name, config), nil
}

// MustNewModule builds a Module from config and panics on error.
func MustNewModule(config *ModuleConfig) *Module {
	module, err := NewModule(config)
	if err != nil {
		panic(err)
	}
	return module
}

func newModule(name string, config *ModuleConfig) *Module {
	cacheStore := config.Cache
	if cacheStore == nil {
		cacheStore = kv.NewInMemory()
	}
	return &Module{
		name:       name,
		config:     config,
		cacheStore: cacheStore,
		cache:      newCacheRecord(),
		sessions:   make(map[interface{}]*contextEntry),
	}
}

// ForRoot returns a new module instance sharing this module's configuration but bound to the
// supplied per-instance configuration value. The new instance has its own artifact cache and
// session table.
func (m *Module) ForRoot(config interface{}) *Module {
	root := newModule(m.name, m.config)
	root.suppliedConfig = config
	root.hasSuppliedConfig = true
	return root
}

// Name returns the module's unique name. For merged modules this is the members' names joined
// with "+" in discovery order.
func (m *Module) Name() string {
	return m.name
}

// Config returns the configuration value bound with ForRoot, or nil.
func (m *Module) Config() interface{} {
	return m.suppliedConfig
}

// HasConfig reports whether a configuration value was bound with ForRoot (even a nil one).
func (m *Module) HasConfig() bool {
	return m.hasSuppliedConfig
}

// MergedFrom returns every module name this instance replaced through cycle merging, in
// discovery order, or nil for ordinary modules.
func (m *Module) MergedFrom() []string {
	if m.memberNames == nil {
		return nil
	}
	names := make([]string, len(m.memberNames))
	copy(names, m.memberNames)
	return names
}

// Cache returns the module's key-value store.
func (m *Module) Cache() Store {
	return m.cacheStore
}

func (m *Module) configRequiredButMissing() bool {
	return m.config.ConfigRequired && !m.hasSuppliedConfig
}

// ensureUsable fails when the module requires a configuration that was never supplied.
func (m *Module) ensureUsable() error {
	if m.configRequiredButMissing() {
		return NewModuleConfigRequiredError(m.name)
	}
	return nil
}

//===----------------------------------------------------------------------------------------====//
// Collaborator accessors
//===----------------------------------------------------------------------------------------====//

func (m *Module) logger() Logger {
	if m.config.Logger != nil {
		return m.config.Logger
	}
	return NoopLogger
}

func (m *Module) injectorFactory() InjectorFactory {
	if m.config.InjectorFactory != nil {
		return m.config.InjectorFactory
	}
	return func() Injector {
		return inject.New()
	}
}

func (m *Module) schemaCompiler() SchemaCompiler {
	if m.config.SchemaCompiler != nil {
		return m.config.SchemaCompiler
	}
	return defaultSchemaCompiler
}

func (m *Module) schemaMerger() SchemaMerger {
	if m.config.SchemaMerger != nil {
		return m.config.SchemaMerger
	}
	return defaultSchemaMerger
}

func (m *Module) composer() Composer {
	if m.config.Composer != nil {
		return m.config.Composer
	}
	return defaultComposer
}

//===----------------------------------------------------------------------------------------====//
// Imports and map resolution
//===----------------------------------------------------------------------------------------====//

// declaredImports returns the module's import references: the configured ones for ordinary
// modules, the combined self-filtered ones for merged modules.
func (m *Module) declaredImports() ([]ModuleRef, error) {
	if m.memberNames != nil {
		return m.mergedImports, nil
	}
	own, err := m.resolveOwn()
	if err != nil {
		return nil, err
	}
	return own.imports, nil
}

// resolvedImports resolves the declared imports to canonical module instances under mm, in
// declared order. References to modules that discovery excluded for lack of a required
// configuration are silently dropped; references resolving to m itself are dropped as well (a
// merged module's combined import list may still name an alias of itself through a by-name
// reference added after the merge). A by-name reference with no binding in mm is fatal.
func (m *Module) resolvedImports(mm *ModulesMap) ([]*Module, error) {
	refs, err := m.declaredImports()
	if err != nil {
		return nil, err
	}

	var imports []*Module
	for _, ref := range refs {
		if ref.byValue() && ref.module == nil {
			return nil, NewDependencyModuleUndefinedError(m.name)
		}

		target, ok := mm.Get(ref.refName())
		if !ok {
			if ref.byValue() && ref.module.configRequiredButMissing() {
				continue
			}
			return nil, NewDependencyModuleNotFoundError(ref.refName(), m.name, mm.Names())
		}

		if target == m {
			continue
		}
		imports = append(imports, target)
	}
	return imports, nil
}

// adoptMap records mm as the map this module's artifacts are computed against.
func (m *Module) adoptMap(mm *ModulesMap) {
	m.mapMu.Lock()
	m.currentMap = mm
	m.mapMu.Unlock()
}

// adoptMapIfUnset records mm unless the module already computes against some map. Modules pulled
// as imports adopt their importer's map this way, so later direct access (a resolver guard, a
// context build) stays in the graph that computed them instead of re-rooting discovery.
func (m *Module) adoptMapIfUnset(mm *ModulesMap) {
	m.mapMu.Lock()
	if m.currentMap == nil {
		m.currentMap = mm
	}
	m.mapMu.Unlock()
}

func (m *Module) currentMapSnapshot() *ModulesMap {
	m.mapMu.Lock()
	defer m.mapMu.Unlock()
	return m.currentMap
}

// modulesMap returns the resolved modules map rooted at m, running discovery and cycle
// resolution on first use.
func (m *Module) modulesMap() (*ModulesMap, error) {
	if mm := m.currentMapSnapshot(); mm != nil {
		return mm, nil
	}

	discovered, err := discoverModules(m)
	if err != nil {
		return nil, err
	}
	resolved, err := resolveCycles(discovered, m)
	if err != nil {
		return nil, err
	}

	m.mapMu.Lock()
	if m.currentMap == nil {
		m.currentMap = resolved
	}
	mm := m.currentMap
	m.mapMu.Unlock()

	// Merged-away members adopt the installed map. Without this a member's resolver guard would
	// re-root discovery from the member and land on a parallel merged instance.
	for _, module := range mm.Modules() {
		for _, member := range module.memberModules {
			member.adoptMap(mm)
		}
	}
	return mm, nil
}

// prepare is the common entry for artifact access: it rejects unusable modules, resolves the
// modules map and returns the canonical instance for m under it (m itself, or the merged module
// that replaced it).
func (m *Module) prepare() (*ModulesMap, *Module, error) {
	if err := m.ensureUsable(); err != nil {
		return nil, nil, err
	}

	mm, err := m.modulesMap()
	if err != nil {
		return nil, nil, err
	}

	canonical := m
	if c, ok := mm.Get(m.name); ok {
		canonical = c
	}
	canonical.adoptMap(mm)
	return mm, canonical, nil
}
