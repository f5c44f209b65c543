package main

import (
	"interview-capture/cmd/ivc/cmd"
)

func main() {
	cmd.Execute()
}
