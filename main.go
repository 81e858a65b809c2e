// SPDX-License-Identifier: MPL-2.0

package main

import (
	cmd "pytestci/cmd/pytestci"
)

func main() {
	cmd.Execute()
}
