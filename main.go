package main

import "github.com/ridoystarlord/migraview/cmd"

func main() {
	cmd.Execute()
}
