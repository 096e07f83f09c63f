// Command colfile inspects, prints and rewrites column files.
package main

import "os"

func main() {
	os.Exit(execute(os.Args[1:]))
}
