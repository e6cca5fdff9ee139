package main

import "github.com/icybits-lab/Blog/cmd"

func main() {
	cmd.Execute()
}
