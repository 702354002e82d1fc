package main

import "github.com/nfrund/livetone/cmd/livetone/cmd"

func main() {
	cmd.Execute()
}
