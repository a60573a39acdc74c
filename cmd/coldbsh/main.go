package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/kartikbazzad/coldb/pkg/client"
)

const prompt = "coldb> "

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".coldbsh_history")
}

func main() {
	socketPath := flag.String("socket", "/tmp/coldb.sock", "Unix socket path")
	flag.Parse()

	fmt.Printf("coldb shell\n")
	fmt.Printf("Connecting to %s...\n", *socketPath)

	c := client.New(*socketPath)
	if err := c.Connect(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	fmt.Printf("Connected. Type 'exit' to leave.\n\n")

	rl := liner.NewLiner()
	defer rl.Close()
	rl.SetCtrlCAborts(true)

	histPath := historyPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			rl.ReadHistory(f)
			f.Close()
		}
	}
	defer func() {
		if histPath == "" {
			return
		}
		if f, err := os.Create(histPath); err == nil {
			rl.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		input, err := rl.Prompt(prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println()
				return
			}
			fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
			continue
		}

		line := strings.TrimSpace(input)
		if line == "" {
			continue
		}
		rl.AppendHistory(input)

		if line == "exit" || line == "quit" {
			return
		}

		resp, ok, err := c.Send(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Connection lost: %v\n", err)
			return
		}
		if !ok {
			fmt.Println("ERROR")
		}
		if resp != "" {
			fmt.Println(resp)
		}

		if strings.HasPrefix(line, "shutdown") {
			return
		}
	}
}
