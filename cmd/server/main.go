package main

import "github.com/Ren-mayday/proyecto-10-event-management-backend/cmd/server/cmd"

func main() {
	cmd.Execute()
}
