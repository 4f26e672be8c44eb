package main

import "github.com/unreal-companion/unreal-companion/cmd"

func main() {
	cmd.Execute()
}
