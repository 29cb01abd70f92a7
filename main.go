// Copyright © 2024 The symref authors

package main

import "github.com/luthersystems/symref/cmd"

func main() {
	cmd.Execute()
}
