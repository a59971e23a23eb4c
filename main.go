package main

import "github.com/iksnae/jarvis/cmd"

func main() {
	cmd.Execute()
}
