// Command jnisig explains host type descriptors, lists the descriptors of
// Go types and runs a demonstration session on the in-memory host.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/wippyai/go-jni/config"
)

func main() {
	var (
		desc        = flag.String("desc", "", "Descriptor to explain, e.g. (ILjava/lang/String;)[J")
		list        = flag.Bool("list", false, "List the descriptors of the built-in Go types")
		demo        = flag.Bool("demo", false, "Run a session against the in-memory host")
		cfgPath     = flag.String("config", "", "Path to jni.toml (default: search upwards from the working directory)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *interactive:
		err = runInteractive(cfg)
	case *list:
		err = listTypes(os.Stdout)
	case *demo:
		err = runDemo(os.Stdout, cfg)
	case *desc != "" || flag.NArg() > 0:
		descs := flag.Args()
		if *desc != "" {
			descs = append([]string{*desc}, descs...)
		}
		err = explainAll(os.Stdout, cfg, descs)
	default:
		fmt.Fprintln(os.Stderr, "Usage: jnisig -desc <descriptor> [descriptor...]")
		fmt.Fprintln(os.Stderr, "       jnisig -list")
		fmt.Fprintln(os.Stderr, "       jnisig -demo")
		fmt.Fprintln(os.Stderr, "       jnisig -i  (interactive mode)")
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FindAndLoad(".")
}
