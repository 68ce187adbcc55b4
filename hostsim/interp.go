package hostsim

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/stealthrocket/tracecheck/host"
	"github.com/stealthrocket/tracecheck/trace"
)

// Interpreter walks a Program depth-first, driving a trace.Checker with
// the PreCall/PostCall/PreStmt/PreReturn/EndFunction sequence a real
// symbolic-execution engine would, over host.MapStore states it clones at
// every BranchInstr. It never reports dead symbols, so DeadSymbols is not
// invoked.
type Interpreter struct {
	Checker *trace.Checker
	Program *Program
}

// NewInterpreter returns an Interpreter driving checker over prog.
func NewInterpreter(checker *trace.Checker, prog *Program) *Interpreter {
	return &Interpreter{Checker: checker, Program: prog}
}

// Run explores the program's entry function to completion, exercising
// every sibling branch the script contains. Branch siblings run
// concurrently over independently cloned state (see runBranch); Run
// blocks until all of them have flushed their frames.
func (in *Interpreter) Run() error {
	entry, ok := in.Program.Functions[in.Program.Entry]
	if !ok {
		return fmt.Errorf("hostsim: entry function %q not found", in.Program.Entry)
	}
	owner := funcDecl{name: entry.Name, returnType: entry.ReturnType}
	store := host.NewMapStore(outermostDepth)
	cm := newConstraints()
	_, _, _, _ = in.runPath(entry.Body, entry, owner, outermostDepth, store, cm)
	return nil
}

// outermostDepth mirrors trace's own constant of the same name: the
// depth assigned to the function the engine starts analyzing from.
const outermostDepth = 1

// runPath processes one straight-line instruction sequence belonging to
// fn, returning the state reached at the end of it, the resolved return
// value and type if a ReturnInstr was hit, and whether one was.
func (in *Interpreter) runPath(instrs []Instr, fn *Function, owner funcDecl, depth int, store *host.MapStore, cm *constraints) (*host.MapStore, value, host.TypeTag, bool) {
	for _, instr := range instrs {
		switch ins := instr.(type) {
		case CallInstr:
			store = in.runCall(ins, fn, owner, store, cm)

		case CallUserInstr:
			store = in.runUserCall(ins, fn, owner, depth, store, cm)

		case StmtInstr:
			store = in.Checker.PreStmt(store).(*host.MapStore)

		case ReturnInstr:
			var rv host.Value
			var rval value
			if !ins.IsVoid {
				rval = ins.Value.resolve()
				rv = rval
			}
			loc := sourceLoc{file: fn.File, line: ins.Line}
			store = in.Checker.PreReturn(store, owner, rv, fn.ReturnType, loc, cm).(*host.MapStore)
			store = in.Checker.EndFunction(store, owner, cm).(*host.MapStore)
			return store, rval, fn.ReturnType, true

		case BranchInstr:
			in.runBranch(ins, fn, owner, depth, store, cm)
			// A branch consumes the remainder of the function: each side
			// reaches its own EndFunction independently (see runBranch).
			// Nothing continues after it in this function's frame.
			return store, value{}, host.Void, false
		}
	}

	store = in.Checker.EndFunction(store, owner, cm).(*host.MapStore)
	return store, value{}, host.Void, false
}

// runCall drives an opaque leaf call: the callee has no scripted body of
// its own, so its return value comes directly from the instruction
// rather than from descending a stack level.
func (in *Interpreter) runCall(ins CallInstr, fn *Function, owner funcDecl, store *host.MapStore, cm *constraints) *host.MapStore {
	args := make([]value, len(ins.Args))
	argTypes := make([]host.TypeTag, len(ins.Args))
	for i, a := range ins.Args {
		args[i] = a.resolve()
		argTypes[i] = host.Int
	}

	call := &callEvent{
		calleeName: ins.Callee,
		args:       args,
		argTypes:   argTypes,
		resultType: ins.ResultType,
		loc:        sourceLoc{file: fn.File, line: ins.Line},
	}

	s := in.Checker.PreCall(store, owner, call, cm)
	call.returnVal = ins.Result.resolve()
	s = in.Checker.PostCall(s, call, cm)
	return s.(*host.MapStore)
}

// runUserCall drives a call to another scripted Function, descending a
// stack level for the callee's own PreCall-through-EndFunction sequence
// before resuming the caller's frame with PostCall. Callees reached this
// way must be branch-free: a callee whose own exploration forks would
// need its continuation run once per fork, which this reference
// interpreter does not attempt.
func (in *Interpreter) runUserCall(ins CallUserInstr, fn *Function, owner funcDecl, depth int, store *host.MapStore, cm *constraints) *host.MapStore {
	callee, ok := in.Program.Functions[ins.Callee]
	if !ok {
		panic(fmt.Sprintf("hostsim: callee %q not found", ins.Callee))
	}

	args := make([]value, len(ins.Args))
	for i, a := range ins.Args {
		args[i] = a.resolve()
	}

	call := &callEvent{
		calleeName: ins.Callee,
		args:       args,
		resultType: callee.ReturnType,
		loc:        sourceLoc{file: fn.File, line: ins.Line},
	}

	s := in.Checker.PreCall(store, owner, call, cm)

	calleeOwner := funcDecl{name: callee.Name, returnType: callee.ReturnType}
	childStore := s.(*host.MapStore).WithDepth(depth + 1)
	childFinal, retVal, retType, returned := in.runPath(callee.Body, callee, calleeOwner, depth+1, childStore, cm)
	if !returned {
		retVal = undefValue()
		retType = host.Void
	}

	call.returnVal = retVal
	call.resultType = retType

	resumed := childFinal.WithDepth(depth)
	s = in.Checker.PostCall(resumed, call, cm)
	return s.(*host.MapStore)
}

// runBranch forks exploration of the rest of fn's body into two
// independently-constrained siblings, run concurrently over cloned
// state — the interpreter's analogue of an engine enumerating both
// arms of a conditional and exploring each as its own path.
func (in *Interpreter) runBranch(b BranchInstr, fn *Function, owner funcDecl, depth int, store *host.MapStore, cm *constraints) {
	sym := symbol(b.On)

	var eg errgroup.Group

	thenStore := store.Clone().(*host.MapStore)
	thenCM := cm.clone()
	thenCM.assumeNonzero(sym, fmt.Sprintf("%s != 0", b.On))
	eg.Go(func() error {
		in.runPath(b.Then, fn, owner, depth, thenStore, thenCM)
		return nil
	})

	elseStore := store.Clone().(*host.MapStore)
	elseCM := cm.clone()
	elseCM.assumeZero(sym, fmt.Sprintf("%s == 0", b.On))
	eg.Go(func() error {
		in.runPath(b.Else, fn, owner, depth, elseStore, elseCM)
		return nil
	})

	// Both goroutines' errs are always nil (no failure mode in this
	// reference host); Wait only serves to block until both paths have
	// flushed their frames.
	_ = eg.Wait()
}
