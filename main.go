package main

import "github.com/ridoystarlord/ssc/cmd"

func main() {
	cmd.Execute()
}
