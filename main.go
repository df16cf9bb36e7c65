package main

import (
	cmd "github.com/millie-ai/millie/cmd/millie"
)

func main() {
	cmd.Execute()
}
