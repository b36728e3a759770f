package main

import "github.com/vibast-solutions/ms-go-campaigns/cmd"

func main() {
	cmd.Execute()
}
