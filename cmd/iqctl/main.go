// The iqctl command streams an incident investigation to the terminal.
package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/internal/iqctl"
)

func main() {
	iqctl.NewApp().Run()
}
