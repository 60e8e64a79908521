package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/shp2pg/internal/cli"
	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(shp2pg.ExitPanic)
		}
	}()

	if os.Getenv("SHP2PG_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(shp2pg.ExitCodeForError(err))
	}
}
