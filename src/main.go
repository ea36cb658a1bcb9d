package main

import (
	"fmt"
	"os"
	"sync"

	"sysyc/src/compiler"
	"sysyc/src/util"
)

// run drives the compiler pipeline. Behaviour is defined by the util.Options structure.
func run(opt util.Options) error {
	w := util.NewWriter()
	defer w.Close()
	return compiler.Run(opt, &w)
}

func main() {
	opt, err := util.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Command line argument error: %s\n", err)
		os.Exit(1)
	}

	wg := sync.WaitGroup{}
	if len(opt.Out) > 0 {
		f, err := os.OpenFile(opt.Out, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func(f *os.File) {
			if err := f.Close(); err != nil {
				fmt.Println(err)
			}
		}(f)
		util.ListenWrite(opt, f, &wg)
	} else {
		util.ListenWrite(opt, nil, &wg)
	}
	defer util.Close()

	if err := run(opt); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}

	wg.Wait()
}
