// Command duploycli is a minimal interactive inspector over a compiled
// schema set, grounded on otcli/main.go: same tracing/readline/pterm
// wiring, but browsing a duployan.Result instead of a parsed binary font.
// It is not the production build front-end (spec.md §1 places the CLI
// front-end out of the core's scope); it exists only to exercise Build.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chzyer/readline"
	"github.com/dscorbett/duployan-go"
	"github.com/dscorbett/duployan-go/schema"
	"github.com/dscorbett/duployan-go/shape"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

func tracer() tracing.Trace {
	return tracing.Select("duployan.cli")
}

func main() {
	initDisplay()

	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":    "go",
		"trace.duployan.cli": "Info",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Println("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	strokeWidth := flag.Float64("stroke-width", 70, "Stroke width for the demo build")
	flag.Parse()

	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().SetTraceLevel(tracing.LevelInfo)
	}

	pterm.Info.Println("Welcome to the Duployan compiler CLI")

	result, err := duployan.Build(demoSchemas(), duployan.BuildOptions{
		Stroke: duployan.StrokeStyle{StrokeWidth: *strokeWidth, LightLine: *strokeWidth, StrokeGap: 64},
	})
	if err != nil {
		tracer().Errorf("build failed: %s", err)
		os.Exit(2)
	}
	pterm.Info.Printfln("built %d canonical glyph(s), %d lookup(s)", len(result.Canonical), len(result.Lookups))

	repl, err := readline.New("duply > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{result: result, repl: repl}

	pterm.Info.Println("Quit with <ctrl>D")
	intp.REPL()
}

// demoSchemas is a tiny hand-built schema list standing in for the
// external schema loader (spec.md §6, "From the schema loader"), which is
// deliberately out of the core's scope; it exists only to give this REPL
// something to compile and browse.
func demoSchemas() []*schema.Schema {
	return []*schema.Schema{
		{
			Shape:       shape.NewLine(0),
			JoiningType: shape.Joining,
			Size:        1,
			SideBearing: 70,
			CodePoints:  []rune{'p'},
		},
		{
			Shape:       shape.NewLine(180),
			JoiningType: shape.Joining,
			Size:        1,
			SideBearing: 70,
			CodePoints:  []rune{'b'},
		},
	}
}

func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
