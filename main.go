package main

import "github.com/vibast-solutions/ms-go-signup/cmd"

func main() {
	cmd.Execute()
}
