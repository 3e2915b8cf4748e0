package main

import "github.com/vitiral/rag/internal/cli"

func main() {
	cli.Execute()
}
