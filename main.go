package main

import "github.com/mitrakatalog/catalog-management/cmd"

func main() {
	cmd.Execute()
}
