// Command gqljit-bench compiles a fixed schema+query pair once, then repeatedly executes and
// stringifies it across a configurable number of concurrent goroutines, reporting throughput and
// mean latency. It exercises the compiled-query facade and the loose executor's concurrent load
// path the same way the teacher's own benchmarks exercise its execution engine, just driven by
// flags instead of go test -bench.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/lindenhill/gqljit/ast"
	"github.com/lindenhill/gqljit/jit"
	"github.com/lindenhill/gqljit/schema"
)

// benchSchema mirrors the teacher's own apifu_test.go benchmark shape: a self-referential object
// type with a string leaf and a count-driven list of itself, deep enough to exercise nested object
// planning and list completion without an external schema file (query parsing is out of scope).
func benchSchema() *schema.Schema {
	objectType := &schema.ObjectType{Name: "Object"}
	objectType.Fields = map[string]*schema.FieldDefinition{
		"string": {
			Type: schema.NewNonNullType(schema.StringType),
			Resolve: func(schema.FieldContext) (interface{}, error) {
				return "foo", nil
			},
		},
		"objects": {
			Type: schema.NewListType(schema.NewNonNullType(objectType)),
			Arguments: map[string]*schema.InputValueDefinition{
				"count": {Type: schema.NewNonNullType(schema.IntType)},
			},
			Resolve: func(fc schema.FieldContext) (interface{}, error) {
				return make([]struct{}, fc.Arguments["count"].(int)), nil
			},
		},
	}

	s, err := schema.New(&schema.SchemaDefinition{Query: objectType})
	if err != nil {
		panic(fmt.Sprintf("error building benchmark schema: %v", err))
	}
	return s
}

// benchDocument builds the AST this module would otherwise get from parsing:
//
//	{
//	  string
//	  objects(count: 20) {
//	    string
//	    objects(count: 100) {
//	      string
//	    }
//	  }
//	}
func benchDocument() *ast.Document {
	countArg := func(n int) []*ast.Argument {
		return []*ast.Argument{{Name: &ast.Name{Name: "count"}, Value: &ast.IntValue{Value: strconv.Itoa(n)}}}
	}
	field := func(name string, args []*ast.Argument, sub *ast.SelectionSet) *ast.Field {
		return &ast.Field{Name: &ast.Name{Name: name}, Arguments: args, SelectionSet: sub}
	}
	sel := func(fields ...ast.Selection) *ast.SelectionSet {
		return &ast.SelectionSet{Selections: fields}
	}

	return &ast.Document{
		Definitions: []ast.Definition{
			&ast.OperationDefinition{
				SelectionSet: sel(
					field("string", nil, nil),
					field("objects", countArg(20), sel(
						field("string", nil, nil),
						field("objects", countArg(100), sel(
							field("string", nil, nil),
						)),
					)),
				),
			},
		},
	}
}

type options struct {
	concurrency   int
	iterations    int
	operationName string
	wireFormat    string
}

func parseFlags(args []string) (*options, error) {
	flags := pflag.NewFlagSet("gqljit-bench", pflag.ContinueOnError)
	opts := &options{}
	flags.IntVarP(&opts.concurrency, "concurrency", "c", 1, "number of goroutines concurrently executing the compiled query")
	flags.IntVarP(&opts.iterations, "iterations", "n", 10000, "total number of executions spread across all goroutines")
	flags.StringVar(&opts.operationName, "operation-name", "", "operation name to execute, if the document defines more than one")
	flags.StringVar(&opts.wireFormat, "wire-format", "json", "wire format to stringify results with: json or msgpack")
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if opts.concurrency < 1 {
		return nil, fmt.Errorf("--concurrency must be at least 1")
	}
	return opts, nil
}

// Run compiles the benchmark schema+query, executes it opts.iterations times spread across
// opts.concurrency goroutines, and writes a throughput/latency summary to w.
func Run(w io.Writer, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	compileOpts := &jit.CompileOptions{}
	switch opts.wireFormat {
	case "json":
	case "msgpack":
		compileOpts.WireFormat = jit.WireFormatMsgpack
	default:
		return fmt.Errorf("unknown --wire-format: %v", opts.wireFormat)
	}

	q, errs := jit.Compile(benchSchema(), benchDocument(), opts.operationName, compileOpts)
	if len(errs) > 0 {
		return fmt.Errorf("error compiling benchmark query: %v", errs[0].Message)
	}

	var completed int64
	var totalBytes int64
	perGoroutine := opts.iterations / opts.concurrency
	extra := opts.iterations % opts.concurrency

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < opts.concurrency; i++ {
		n := perGoroutine
		if i < extra {
			n++
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < n; j++ {
				result := q.Execute(context.Background(), nil, nil)
				buf, err := q.Stringify(result)
				if err != nil {
					logrus.WithField("error", err.Error()).Error("error stringifying benchmark result")
					continue
				}
				atomic.AddInt64(&completed, 1)
				atomic.AddInt64(&totalBytes, int64(len(buf)))
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Fprintf(w, "executions:     %d\n", completed)
	fmt.Fprintf(w, "elapsed:        %v\n", elapsed)
	if completed > 0 {
		fmt.Fprintf(w, "throughput:     %.0f executions/sec\n", float64(completed)/elapsed.Seconds())
		fmt.Fprintf(w, "mean latency:   %v\n", elapsed/time.Duration(completed))
	}
	fmt.Fprintf(w, "bytes written:  %d\n", totalBytes)
	return nil
}

func main() {
	if err := Run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
