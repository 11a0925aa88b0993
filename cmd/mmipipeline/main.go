// Command mmipipeline exists so the pipeline package has an entry point of
// its own. Running it does nothing but point the caller at the package.
package main

import "fmt"

func main() {
	fmt.Println("This program should not be run directly! Import the pipeline package for use in another program.")
}
