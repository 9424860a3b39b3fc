// Command govm loads and runs a single JVM main class from a classpath of
// directories, invoking its main(String[]) with any trailing CLI arguments.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/cricklet/govm/pkg/vm"
)

var logger = log.New(os.Stderr, "govm: ", log.Lshortfile)

func main() {
	classpath := flag.String("cp", ".", "classpath: colon-separated list of directories to search for .class files")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		logger.Fatalf("usage: govm -cp <classpath> <main-class> [args...]")
	}
	mainClass, programArgs := args[0], args[1:]

	cm := vm.NewClassManager(nil)
	cm.SetClasspath(*classpath)
	interp := vm.NewInterpreter(cm)

	if err := interp.Execute(mainClass, programArgs); err != nil {
		logger.Printf("uncaught error running %s: %v", mainClass, err)
		os.Exit(1)
	}
}
