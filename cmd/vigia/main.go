package main

import "github.com/MauroHerreraJ/vigia/cmd/vigia/cmd"

func main() {
	cmd.Execute()
}
