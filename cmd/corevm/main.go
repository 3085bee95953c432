// Command corevm is a minimal host around the embedding API
// (internal/embed): it starts a Machine, registers a demo host function,
// and runs it by name from the command line. There is no source front end
// here — feeding it program text is an external collaborator's job (a
// lexer/parser/analyzer pipeline), per this core's scope; this binary
// exists to exercise the embedding surface end to end, the way the
// teacher's cmd/funxy exercises its own vm/evaluator backends.
package main

import (
	"fmt"
	"os"

	"github.com/funvibe/corevm/internal/action"
	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/config"
	"github.com/funvibe/corevm/internal/embed"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <function-name> [int args...]\n", os.Args[0])
		os.Exit(1)
	}

	profile := config.DefaultProfile
	if path := os.Getenv("COREVM_CONFIG"); path != "" {
		loaded, err := config.LoadProfile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "corevm: %v\n", err)
			os.Exit(1)
		}
		profile = loaded
	}

	m := embed.Startup(profile)
	defer m.Shutdown(true)

	m.RegisterFunction("add",
		[]*action.Param{
			{Name: "a", Class: action.ClassNormal},
			{Name: "b", Class: action.ClassNormal},
		},
		&action.Param{Name: "return", Class: action.ClassReturn},
		func(args []cell.Cell) (cell.Cell, error) {
			if len(args) != 2 {
				return cell.Cell{}, fmt.Errorf("add: expected 2 arguments, got %d", len(args))
			}
			return embed.Integer(embed.IntegerOf(args[0]) + embed.IntegerOf(args[1])), nil
		})

	name := os.Args[1]
	if _, ok := m.Function(name); !ok {
		fmt.Fprintf(os.Stderr, "corevm: no function registered under name %q\n", name)
		os.Exit(1)
	}

	args := make([]embed.Arg, 0, len(os.Args)-2)
	for _, raw := range os.Args[2:] {
		var v int64
		if _, err := fmt.Sscanf(raw, "%d", &v); err != nil {
			fmt.Fprintf(os.Stderr, "corevm: bad integer argument %q\n", raw)
			os.Exit(1)
		}
		args = append(args, embed.ValueArg(embed.Integer(v)))
	}

	result, err := m.Run(name, args...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "corevm: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(embed.IntegerOf(result))
}
