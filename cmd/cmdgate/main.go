// Command cmdgate is a pre-execution security gate for agent shell commands.
package main

import "github.com/ppiankov/cmdgate/internal/cli"

func main() {
	cli.Execute()
}
