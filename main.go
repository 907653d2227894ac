package main

import "github.com/Tiliavir/trackmytime/cmd"

func main() {
	cmd.Execute()
}
