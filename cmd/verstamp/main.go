// Command verstamp writes a semantic version derived from git describe to a
// file named "version".
package main

import (
	"os"

	"github.com/jmgilman/verstamp/internal/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
