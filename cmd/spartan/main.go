package main

import "github.com/RonGatenio/Spartanizer/cmd"

func main() {
	cmd.Execute()
}
