// Package decorator defines the plugin contract for lifecycle decorators and
// the registry that discovers them.
//
// A decorator hooks into either the class lifecycle (ClassDecorator:
// BeforeAll/AfterAll) or the method lifecycle (MethodDecorator:
// BeforeTest/AfterTest). Each declares a priority and an applicability
// predicate over the execution context. Ordering and filtering are the
// engine's job; the registry only answers "which decorators exist".
//
// Decorators are supplied through Discoverers. The simplest is an explicit
// provider list:
//
//	reg := decorator.NewRegistry(decorator.Providers(seed.New(), tx.New()))
//
// Plugins that prefer init-time registration use Register, in the style of
// database/sql drivers, and the host passes Registered():
//
//	func init() { decorator.Register("seed", seed.New) }
//
//	reg := decorator.NewRegistry(decorator.Registered())
//
// Discovery runs once, on first access, and the result never changes.
package decorator
