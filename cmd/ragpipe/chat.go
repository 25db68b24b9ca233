// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

func chatCommand(c *cli.Context) error {
	components, err := buildComponents(c)
	if err != nil {
		return err
	}
	defer components.Close()

	p, err := components.newPipeline()
	if err != nil {
		return err
	}
	defer p.Release()

	fmt.Println("ragpipe chat. Type a question; 'new' starts a fresh topic, 'exit' quits.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			return nil
		case "new", "clear":
			p.Clear()
			fmt.Println("Conversation cleared.")
			continue
		}

		answer, err := p.Run(c.Context, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(answer)
		fmt.Println()
	}
	return scanner.Err()
}
