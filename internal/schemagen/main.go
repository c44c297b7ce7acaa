// Command schemagen writes the configuration JSON schema, for editors that
// validate config.yaml through a yaml-language-server modeline.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/macropower/cardfont/api/v1beta1/configs"
)

var outFile = flag.String("o", "configs.v1beta1.json", "Output file for the generated schema")

func main() {
	flag.Parse()

	err := os.WriteFile(*outFile, configs.SchemaJSON, 0o600)
	if err != nil {
		log.Fatalf("write schema file: %v", err)
	}
}
