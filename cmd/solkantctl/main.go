package main

import "github.com/aryan0dhankhar/solkant/cmd/solkantctl/cmd"

func main() {
	cmd.Execute()
}
