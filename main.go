// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/wasupdate/wasupdate/cmd/wasupdate"

func main() {
	cmd.Execute()
}
