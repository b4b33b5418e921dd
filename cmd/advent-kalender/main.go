package main

import "github.com/klabast/wb-services/advent-kalender/internal/commands"

func main() {
	commands.Execute()
}
