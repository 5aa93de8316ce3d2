// SPDX-License-Identifier: MPL-2.0

// sheldon is a fast, configurable shell plugin manager. It reads a declarative
// TOML configuration describing plugins, materializes their sources on disk,
// and renders a single shell script for the user's shell to source.
package main

import "github.com/kvnxiao/sheldon/cmd/sheldon"

func main() {
	cmd.Execute()
}
