/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/EduNet2023/NovoApkPesca/cmd"

func main() {
	cmd.Execute()
}
