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

package modules

import (
	"fmt"
	"log"
	"runtime"
	"strings"
	"unsafe"

	"github.com/dsalazarm/graphql-modules/internal/util"

	"github.com/json-iterator/go"
)

// Op describes an operation, usually as the package and method, such as "modules.BuildContext".
type Op string

// ModuleName names the module an error is associated with.
type ModuleName string

// FieldPath names a "Type.field" resolver path an error is associated with.
type FieldPath string

// ErrKind defines the kind of error this is.
type ErrKind uint8

// Enumeration of ErrKind
const (
	ErrKindOther                     ErrKind = iota // Unclassified error. This value is not printed in the error message.
	ErrKindModuleConfigRequired                     // A module that requires a configuration was used without one.
	ErrKindDependencyModuleNotFound                 // An import names a module missing from the modules map.
	ErrKindDependencyModuleUndefined                // An import reference is nil or empty.
	ErrKindTypeDefNotFound                          // Schema compilation referenced an undeclared type.
	ErrKindSchemaNotValid                           // Schema compilation failed or the module graph is not acceptable.
	ErrKindIllegalResolverInvocation                // A guarded resolver was invoked without session or metadata.
	ErrKindContextBuilder                           // Building a per-session context failed.
	ErrKindInternal                                 // Internal error
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindOther:
		return "other error"
	case ErrKindModuleConfigRequired:
		return "module configuration required"
	case ErrKindDependencyModuleNotFound:
		return "dependency module not found"
	case ErrKindDependencyModuleUndefined:
		return "dependency module undefined"
	case ErrKindTypeDefNotFound:
		return "type definition not found"
	case ErrKindSchemaNotValid:
		return "schema not valid"
	case ErrKindIllegalResolverInvocation:
		return "illegal resolver invocation"
	case ErrKindContextBuilder:
		return "context builder error"
	case ErrKindInternal:
		return "internal error"
	}
	return "unknown error kind"
}

// An Error describes an error found while resolving a module graph, aggregating artifacts or
// building per-session contexts. It can be serialized to JSON for inclusion in a response.
//
// An Error can be built by wrapping an error value. Information (if unspecified in the arguments
// to NewError) in the wrapped value is propagated to the newly created Error. It also includes Op
// and ErrKind which show up when printing the error value, making it helpful for programmers.
type Error struct {
	// Message describes the error for debugging purposes.
	Message string

	// Module names the module the error is associated with, when one is known.
	Module ModuleName

	// Field names the "Type.field" resolver path the error is associated with, when one is known.
	Field FieldPath

	// The underlying error that triggered this one
	Err error

	// Op is the operation being performed, usually the name of the method being invoked.
	Op Op

	// Kind is the class of error
	Kind ErrKind
}

// Error implements Go error interface.
var _ error = (*Error)(nil)

// NewError builds an error value from arguments. Inspired by the design of upspin.io/errors [0].
//
// [0]: https://commandcenter.blogspot.com/2017/12/error-handling-in-upspin.html.
func NewError(message string, args ...interface{}) error {
	e := &Error{
		Message: message,
	}

	for _, arg := range args {
		switch arg := arg.(type) {
		case ModuleName:
			e.Module = arg

		case FieldPath:
			e.Field = arg

		case error:
			e.Err = arg

		case Op:
			e.Op = arg

		case ErrKind:
			e.Kind = arg

		default:
			_, file, line, _ := runtime.Caller(1)
			log.Printf("NewError: bad call from %s:%d: %v", file, line, args)
			return fmt.Errorf("unknown type %T, value %v in error call", arg, arg)
		}
	}

	// Propagate module, field or kind from underlying error when one is not provided in argument.
	if prev, ok := e.Err.(*Error); ok {
		if len(e.Module) == 0 {
			e.Module = prev.Module
		}

		if len(e.Field) == 0 {
			e.Field = prev.Field
		}

		if e.Kind == ErrKindOther {
			e.Kind = prev.Kind
		}
	}

	return e
}

// WrapError is a convenient wrapper to build an Error value from an underlying error with a
// message.
func WrapError(err error, message string) error {
	return NewError(message, err)
}

// WrapErrorf is similar to WrapError but with the format specifier.
func WrapErrorf(err error, format string, args ...interface{}) error {
	return NewError(fmt.Sprintf(format, args...), err)
}

// Error implements Go's error interface.
func (e *Error) Error() string {
	var b strings.Builder
	e.printError(&b, nil)
	return b.String()
}

func (e *Error) printError(b *strings.Builder, nextErr *Error) {
	// If the previous error was also one of ours, suppress duplications so the message won't
	// contain the same kind, module or field twice.
	initialLen := b.Len()

	// pad appends str to the buffer if the buffer already has some data.
	pad := func(str string) {
		if b.Len() == initialLen {
			return
		}
		b.WriteString(str)
	}

	if len(e.Op) > 0 {
		b.WriteString(string(e.Op))
	}

	if len(e.Message) > 0 {
		pad(": ")
		b.WriteString(e.Message)
	}

	if len(e.Module) > 0 {
		// Don't print the module if the next error already did.
		if nextErr == nil || nextErr.Module != e.Module {
			if b.Len() == initialLen {
				b.WriteString("In module ")
			} else {
				b.WriteString(" in module ")
			}
			b.WriteString(`"` + string(e.Module) + `"`)
		}
	}

	if len(e.Field) > 0 {
		// Don't print the field if the next error already did.
		if nextErr == nil || nextErr.Field != e.Field {
			if b.Len() == initialLen {
				b.WriteString("At field ")
			} else {
				b.WriteString(" at field ")
			}
			b.WriteString(string(e.Field))
		}
	}

	if e.Kind != ErrKindOther {
		// Don't print the kind if the next error has the same kind as ours.
		if nextErr == nil || nextErr.Kind != e.Kind {
			pad(": ")
			b.WriteString(e.Kind.String())
		}
	}

	if e.Err != nil {
		if prev, ok := e.Err.(*Error); ok {
			// Indent on new line if we are cascading non-empty Error.
			pad(":\n  ")
			prev.printError(b, e)
		} else {
			pad(": ")
			b.WriteString(e.Err.Error())
		}
	}
}

// MarshalJSON implements json.Marshaler.
func (e *Error) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(e)
}

// errorMarshaller implements jsoniter.ValEncoder to encode Error to JSON.
type errorMarshaller struct{}

var _ jsoniter.ValEncoder = errorMarshaller{}

// IsEmpty implements jsoniter.ValEncoder.
func (errorMarshaller) IsEmpty(ptr unsafe.Pointer) bool {
	return (*Error)(ptr) == nil
}

// Encode implements jsoniter.ValEncoder.
func (errorMarshaller) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	err := (*Error)(ptr)
	stream.WriteObjectStart()

	stream.WriteObjectField("message")
	stream.WriteString(err.Message)

	if len(err.Module) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("module")
		stream.WriteString(string(err.Module))
	}

	if len(err.Field) > 0 {
		stream.WriteMore()
		stream.WriteObjectField("field")
		stream.WriteString(string(err.Field))
	}

	if err.Kind != ErrKindOther {
		stream.WriteMore()
		stream.WriteObjectField("kind")
		stream.WriteString(err.Kind.String())
	}

	stream.WriteObjectEnd()
}

//===----------------------------------------------------------------------------------------====//
// Constructors for well-known error conditions
//===----------------------------------------------------------------------------------------====//

// NewModuleConfigRequiredError indicates that a module flagged ConfigRequired was used without a
// supplied configuration.
func NewModuleConfigRequiredError(moduleName string) error {
	return NewError(
		fmt.Sprintf("module %q requires a configuration but none was supplied; bind one with ForRoot", moduleName),
		ErrKindModuleConfigRequired, ModuleName(moduleName))
}

// NewDependencyModuleUndefinedError indicates that a module declares an import reference that is
// nil or has an empty name.
func NewDependencyModuleUndefinedError(importerName string) error {
	return NewError(
		fmt.Sprintf("module %q declares an import that resolves to nothing; was a module value left uninitialized?", importerName),
		ErrKindDependencyModuleUndefined, ModuleName(importerName))
}

// NewDependencyModuleNotFoundError indicates that an import names a module missing from the
// modules map. knownNames feeds the "Did you mean" suggestion.
func NewDependencyModuleNotFoundError(dependencyName string, importerName string, knownNames []string) error {
	message := fmt.Sprintf("module %q is imported by %q but was not found in the modules map", dependencyName, importerName)
	if suggestions := util.SuggestionList(dependencyName, knownNames); len(suggestions) > 0 {
		message = fmt.Sprintf("%s; did you mean %s?", message, util.QuotedOrList(suggestions))
	}
	return NewError(message, ErrKindDependencyModuleNotFound, ModuleName(importerName))
}

// NewIllegalResolverInvocationError indicates that a guarded resolver was invoked without the
// values it needs to look up its module context.
func NewIllegalResolverInvocationError(moduleName string, fieldPath string, reason string) error {
	return NewError(
		fmt.Sprintf("illegal invocation of resolver %q in module %q: %s", fieldPath, moduleName, reason),
		ErrKindIllegalResolverInvocation, ModuleName(moduleName), FieldPath(fieldPath))
}

// NewContextBuilderError wraps a failure during per-session context construction. Errors that
// already carry the context builder kind pass through unchanged so nested module builds never
// double-wrap.
func NewContextBuilderError(moduleName string, err error) error {
	if e, ok := err.(*Error); ok && e.Kind == ErrKindContextBuilder {
		return e
	}
	return NewError(
		fmt.Sprintf("failed to build context for module %q", moduleName),
		ErrKindContextBuilder, ModuleName(moduleName), err)
}

//===----------------------------------------------------------------------------------------====//
// Schema compilation error classification
//===----------------------------------------------------------------------------------------====//

const (
	missingTypePrefix = `Type "`
	missingTypeSuffix = `" not found in document`
)

// missingTypeName extracts the type name from a compiler message of the form
//
//	Type "X" not found in document
//
// and returns "" for any other message.
func missingTypeName(message string) string {
	if strings.HasPrefix(message, missingTypePrefix) && strings.HasSuffix(message, missingTypeSuffix) {
		name := message[len(missingTypePrefix) : len(message)-len(missingTypeSuffix)]
		if len(name) > 0 && !strings.Contains(name, `"`) {
			return name
		}
	}
	return ""
}

// classifySchemaError translates an error from the schema compiler into the more specific
// TypeDefNotFound kind when its text names a missing type, and generalizes everything else to
// SchemaNotValid. Errors already classified pass through.
func classifySchemaError(moduleName string, err error) error {
	if e, ok := err.(*Error); ok {
		switch e.Kind {
		case ErrKindTypeDefNotFound, ErrKindSchemaNotValid:
			return e
		}
	}

	if name := missingTypeName(err.Error()); name != "" {
		return NewError(
			fmt.Sprintf("schema of module %q references type %q which is not defined anywhere", moduleName, name),
			ErrKindTypeDefNotFound, ModuleName(moduleName), err)
	}

	return NewError(
		fmt.Sprintf("failed to compile schema for module %q", moduleName),
		ErrKindSchemaNotValid, ModuleName(moduleName), err)
}

func init() {
	jsoniter.RegisterTypeEncoder("modules.Error", errorMarshaller{})
}
