package main

import "github.com/fitdump/garmindump/cmd"

func main() {
	cmd.Execute()
}
