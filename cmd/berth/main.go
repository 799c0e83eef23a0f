// Command berth resolves and validates service deployment manifests.
package main

import "github.com/cameronsjo/berth/internal/cmd"

func main() {
	cmd.Execute()
}
