// Command cse validates and encrypts card data from the command line.
//
// The embedded gateway key is used unless CSE_MODULUS and CSE_EXPONENT (base64)
// or --key-file (PEM) name another one. Settings may also come from a .env file.
package main

import (
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
