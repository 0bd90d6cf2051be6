package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"gcs-extract/api/internal/ocr/types"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cli := NewCLI()
	if err := cli.Run(os.Args[1:]); err != nil {
		if errors.Is(err, types.ErrCredentials) {
			fmt.Println("Error: Google Cloud credentials not found.")
			fmt.Println("Set the GOOGLE_APPLICATION_CREDENTIALS environment variable or authenticate using `gcloud auth application-default login`.")
		}
		fmt.Printf("Script failed: %v\n", err)
		os.Exit(1)
	}
}
