// Command bindinspect reflects a WGSL shader, matches its resource
// variables against a reserved catalog and prints the resulting set
// layouts. It then builds the recipe book on a backend (host memory by
// default) to show which sets the engine fills and which the caller must
// supply.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/bindkit"
	"github.com/gogpu/bindkit/backend"
	_ "github.com/gogpu/bindkit/backend/native"
	_ "github.com/gogpu/bindkit/backend/software"
	"github.com/gogpu/bindkit/shader"
)

func main() {
	var (
		shaderPath  = flag.String("shader", "", "WGSL shader to inspect (required)")
		catalogName = flag.String("catalog", "direct", "reserved catalog: direct, bindless or full")
		catalogFile = flag.String("catalog-file", "", "TOML or YAML catalog file, overrides -catalog")
		backendName = flag.String("backend", backend.NameSoftware, "dry-run backend: software, native or auto")
		verbose     = flag.Bool("v", false, "debug logging to stderr")
	)
	flag.Parse()

	if *shaderPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *verbose {
		bindkit.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	catalog, err := loadCatalog(*catalogName, *catalogFile)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	results, err := shader.ReflectFile(*shaderPath)
	if err != nil {
		log.Fatalf("Failed to reflect: %v", err)
	}
	dev, err := openBackend(*backendName)
	if err != nil {
		log.Fatalf("backend: %v", err)
	}
	defer dev.Close()

	if err := inspect(os.Stdout, dev, catalog, results); err != nil {
		dev.Close()
		log.Fatalf("Failed to inspect: %v", err)
	}
}

func openBackend(name string) (backend.Device, error) {
	if name == "auto" {
		return backend.OpenDefault()
	}
	return backend.Open(name)
}
