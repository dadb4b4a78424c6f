package main

import "github.com/nattapongw/banchee/cmd"

func main() {
	cmd.Execute()
}
