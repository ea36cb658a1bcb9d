// Package compiler glues the frontend, IR generator, Koopa reader and RISC-V backend together
// into the pipeline the CLI drives.
package compiler

import (
	"fmt"

	"sysyc/src/frontend"
	"sysyc/src/irgen"
	"sysyc/src/koopa"
	"sysyc/src/riscv"
	"sysyc/src/util"
)

// Run reads source code per opt and drives it through the pipeline: frontend parse, IR
// generation, and — for -riscv/-perf — the RISC-V backend. In ModeKoopa the generated IR text is
// written through w, the program's single output sink; in the other modes w is unused and the
// backend opens its own Writer(s) against the same output channel.
func Run(opt util.Options, w *util.Writer) error {
	src, err := util.ReadSource(opt)
	if err != nil {
		return fmt.Errorf("could not read source code: %s", err)
	}

	cu, err := frontend.Parse(src)
	if err != nil {
		return fmt.Errorf("parse error: %s", err)
	}

	if opt.Mode == util.ModeKoopa {
		g := irgen.NewGenerator(w, opt.Verbose)
		defer g.Close()
		if err := cu.Func.Lower(g); err != nil {
			return fmt.Errorf("IR generation error: %s", err)
		}
		w.Flush()
		return nil
	}

	irText, err := LowerToText(cu)
	if err != nil {
		return fmt.Errorf("IR generation error: %s", err)
	}

	prog, err := koopa.Parse(irText)
	if err != nil {
		return fmt.Errorf("IR read error: %s", err)
	}

	if err := riscv.GenerateAssembler(opt, prog); err != nil {
		return fmt.Errorf("code generation error: %s", err)
	}
	return nil
}

// LowerToText lowers cu to Koopa IR and returns it as a string, for callers that need the IR
// text itself (the -riscv/-perf re-parse step, and tests) rather than a streamed Writer.
func LowerToText(cu *frontend.CompUnit) (string, error) {
	capture := util.NewCapture()
	w := capture.Writer()
	g := irgen.NewGenerator(&w, false)
	defer g.Close()
	if err := cu.Func.Lower(g); err != nil {
		return "", err
	}
	w.Close()
	return capture.String(), nil
}
