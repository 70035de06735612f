package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	words := os.Args[1:]
	if len(words) == 0 {
		fmt.Fprintln(os.Stderr, "usage: sample <word>...")
		os.Exit(2)
	}
	fmt.Println(strings.ToUpper(strings.Join(words, " ")))
}
