// SPDX-License-Identifier: MPL-2.0

package main

import cmd "slipway-cli/cmd/slipway"

func main() {
	cmd.Execute()
}
