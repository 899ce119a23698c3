package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/areumfire/modelengine/internal/engine"
)

// request is the on-disk shape read from -in: the model's raw inputs plus
// its calculation/module bundle, bundled together for a single run.
type request struct {
	Inputs       engine.ModelInputs        `json:"inputs"`
	Calculations engine.CalculationsBundle `json:"calculations"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("runmodel", flag.ContinueOnError)
	inPath := fs.String("in", "", "path to the model JSON file (inputs + calculations)")
	outPath := fs.String("out", "", "path to write the result bundle JSON (default: stdout)")
	envPath := fs.String("env", "", "optional .env file to load before running")
	verbosity := fs.Int("verbosity", 3, "log verbosity: 0=verbose .. 3=run only")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *envPath != "" {
		if err := godotenv.Load(*envPath); err != nil {
			fmt.Fprintf(os.Stderr, "runmodel: loading env file %s: %v\n", *envPath, err)
			return 1
		}
	}

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "runmodel: -in is required")
		fs.Usage()
		return 2
	}

	engine.EngineVerbosity = *verbosity

	raw, err := os.ReadFile(*inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runmodel: reading %s: %v\n", *inPath, err)
		return 1
	}

	var req request
	if err := json.Unmarshal(raw, &req); err != nil {
		fmt.Fprintf(os.Stderr, "runmodel: parsing %s: %v\n", *inPath, err)
		return 1
	}

	result, err := engine.RunModel(req.Inputs, req.Calculations, engine.GetDefaultEngineConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "runmodel: %v\n", err)
		return 1
	}

	out, err := json.Marshal(result)
	if err != nil {
		fmt.Fprintf(os.Stderr, "runmodel: encoding result: %v\n", err)
		return 1
	}

	if *outPath == "" {
		fmt.Println(string(out))
		return 0
	}
	if err := os.WriteFile(*outPath, out, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "runmodel: writing %s: %v\n", *outPath, err)
		return 1
	}
	return 0
}
