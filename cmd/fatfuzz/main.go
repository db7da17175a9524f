/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/rstms/fatfuzz/cmd/fatfuzz/cmd"

func main() {
	cmd.Execute()
}
