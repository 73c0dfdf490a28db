package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/tabprofile/pkg/config"
)

// ExampleDefault demonstrates the default configuration.
func ExampleDefault() {
	cfg := config.Default()

	fmt.Printf("Workers: %d\n", cfg.Profiling.Workers)
	fmt.Printf("Format: %s\n", cfg.Output.Format)
	fmt.Printf("Delimiter: %q\n", cfg.Source.Delimiter)

	// Output:
	// Workers: 1
	// Format: text
	// Delimiter: ","
}

// ExampleConfig_Validate shows how to validate a configuration
// before using it.
func ExampleConfig_Validate() {
	cfg := config.Default()
	cfg.Source.Path = "people.csv"
	cfg.Output.Format = "yaml"

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("Configuration is valid!")

	// Output:
	// Configuration is valid!
}
