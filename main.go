package main

import (
	"github.com/luma/cosmogram/cmd"
)

func main() {
	cmd.Execute()
}
