package main

import "github.com/derickschaefer/chartline/cmd"

func main() {
	cmd.Execute()
}
