// The incident-iq server runs the multi-agent incident investigation
// service.
package main

import (
	_ "go.uber.org/automaxprocs"

	"github.com/Developer-atomic-amardeep/NeuralOps-Incident-IQ/internal/apiserver"
)

func main() {
	apiserver.NewApp().Run()
}
