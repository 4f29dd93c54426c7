package main

import (
	"fmt"
	"os"

	"github.com/alexisbeaulieu97/lambda-deploy/internal/domain/function"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if code := function.CodeOf(err); code != "" {
			fmt.Fprintf(os.Stderr, "Error [%s]: %v\n", code, err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
