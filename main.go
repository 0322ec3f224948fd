package main

import "github.com/nccpresi/attendance-backend/cmd"

func main() {
	cmd.Execute()
}
