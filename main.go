package main

import "github.com/mabhi256/gclog/cmd"

func main() {
	cmd.Execute()
}
