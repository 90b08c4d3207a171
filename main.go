// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/luadistill/luadistill/cmd/luadistill"

func main() {
	cmd.Execute()
}
