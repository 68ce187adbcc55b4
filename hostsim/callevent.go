package hostsim

import (
	"fmt"

	"github.com/stealthrocket/tracecheck/host"
)

// sourceLoc is a fixed "file:line:col" location.
type sourceLoc struct {
	file string
	line int
}

func (l sourceLoc) String() string { return fmt.Sprintf("%s:%d:0", l.file, l.line) }

// funcDecl is the scripted stand-in for host.FunctionDecl.
type funcDecl struct {
	name       string
	returnType host.TypeTag
}

func (d funcDecl) Name() string             { return d.name }
func (d funcDecl) ReturnType() host.TypeTag { return d.returnType }

// callEvent is the scripted stand-in for host.CallEvent. unresolved
// marks an indirect call whose target name the interpreter could not
// determine, exercising the CalleeName ok=false path.
type callEvent struct {
	calleeName string
	unresolved bool
	args       []value
	argTypes   []host.TypeTag
	resultType host.TypeTag
	returnVal  value
	loc        sourceLoc
}

func (e *callEvent) CalleeName() (string, bool) {
	if e.unresolved {
		return "", false
	}
	return e.calleeName, true
}

func (e *callEvent) Args() []host.Value {
	out := make([]host.Value, len(e.args))
	for i, a := range e.args {
		out[i] = a
	}
	return out
}

func (e *callEvent) ArgTypes() []host.TypeTag { return e.argTypes }
func (e *callEvent) ResultType() host.TypeTag { return e.resultType }
func (e *callEvent) ReturnValue() host.Value  { return e.returnVal }
func (e *callEvent) Location() host.SourceLocation { return e.loc }

var _ host.CallEvent = (*callEvent)(nil)
var _ host.FunctionDecl = funcDecl{}
var _ host.SourceLocation = sourceLoc{}
