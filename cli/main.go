package main

import (
	"ocm.software/open-component-model/bindings/go/safejson/cli/cmd"
)

func main() {
	cmd.Execute()
}
