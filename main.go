package main

import "github.com/rbcalderon/attendance-management/cmd"

func main() {
	cmd.Execute()
}
