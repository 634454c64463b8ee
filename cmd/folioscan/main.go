package main

import "github.com/folioscan/folioscan/internal/cmd"

func main() {
	cmd.Execute()
}
