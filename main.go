package main

import "github.com/datajonas82/fergetid-sub000/cmd"

func main() {
	cmd.Execute()
}
