// Command matter-bridge-cli is an interactive shell for the matter-bridge
// REST API.
//
// Usage:
//
//	matter-bridge-cli [flags]
//
// Flags:
//
//	-url string  Bridge base URL (default "http://localhost:8080")
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

var bridgeURL = flag.String("url", "http://localhost:8080", "Bridge base URL")

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	client := NewClient(*bridgeURL)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "bridge> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create readline: %v\n", err)
		return 1
	}
	defer rl.Close()

	repl := &repl{client: client, rl: rl}
	repl.printHelp()
	repl.loop()
	return 0
}

type repl struct {
	client *Client
	rl     *readline.Instance
}

func (r *repl) loop() {
	for {
		line, err := r.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(r.rl.Stdout(), "Exiting...")
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			r.printHelp()

		case "read", "r":
			r.cmdRead(args)

		case "write", "w":
			r.cmdWrite(args)

		case "invoke", "i":
			r.cmdInvoke(args)

		case "pair":
			r.cmdPair(args)

		case "nodes", "n":
			r.printResult(r.client.Nodes())

		case "forget":
			r.cmdForget(args)

		case "devices", "d":
			r.cmdDevices(args)

		case "scan":
			r.cmdScan(args)

		case "quit", "exit", "q":
			fmt.Fprintln(r.rl.Stdout(), "Exiting...")
			return

		default:
			fmt.Fprintf(r.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (r *repl) printHelp() {
	fmt.Fprint(r.rl.Stdout(), `Commands:
  read <node> <endpoints> <clusters> <attrs>          Read attributes (ids accept 0x hex, comma lists)
  write <node> <endpoints> <clusters> <attrs> <value> Write an attribute value
  invoke <node> <endpoint> <cluster> <command> [data] Invoke a cluster command
  pair onnetwork <node> <pincode> [name]              Commission an on-network device
  pair code <node> <payload>                          Commission from a setup payload
  nodes                                               List commissioned nodes
  forget <node>                                       Remove a node from the registry
  devices [timeout]                                   Discover devices via mDNS (e.g. devices 5s)
  scan <seconds>                                      Start a BLE scan on the bridge
  help                                                Show this help
  exit                                                Quit
`)
}

// printResult renders a response map as indented JSON, or the error.
func (r *repl) printResult(resp map[string]any, err error) {
	if err != nil {
		fmt.Fprintf(r.rl.Stdout(), "Error: %v\n", err)
		if resp == nil {
			return
		}
	}
	data, merr := json.MarshalIndent(resp, "", "  ")
	if merr != nil {
		fmt.Fprintf(r.rl.Stdout(), "%v\n", resp)
		return
	}
	fmt.Fprintln(r.rl.Stdout(), string(data))
}

func (r *repl) cmdRead(args []string) {
	if len(args) != 4 {
		fmt.Fprintln(r.rl.Stdout(), "Usage: read <node> <endpoints> <clusters> <attrs>")
		return
	}
	r.printResult(r.client.ReadAttribute(args[0], args[1], args[2], args[3]))
}

func (r *repl) cmdWrite(args []string) {
	if len(args) != 5 {
		fmt.Fprintln(r.rl.Stdout(), "Usage: write <node> <endpoints> <clusters> <attrs> <value>")
		return
	}
	r.printResult(r.client.WriteAttribute(args[0], args[1], args[2], args[3], args[4]))
}

func (r *repl) cmdInvoke(args []string) {
	if len(args) < 4 || len(args) > 5 {
		fmt.Fprintln(r.rl.Stdout(), "Usage: invoke <node> <endpoint> <cluster> <command> [data]")
		return
	}
	data := ""
	if len(args) == 5 {
		data = args[4]
	}
	r.printResult(r.client.InvokeCommand(args[0], args[1], args[2], args[3], data))
}

func (r *repl) cmdPair(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(r.rl.Stdout(), "Usage: pair onnetwork <node> <pincode> [name] | pair code <node> <payload>")
		return
	}
	switch args[0] {
	case "onnetwork":
		name := ""
		if len(args) > 3 {
			name = strings.Join(args[3:], " ")
		}
		r.printResult(r.client.PairOnNetwork(args[1], args[2], name))
	case "code":
		r.printResult(r.client.PairCode(args[1], args[2]))
	default:
		fmt.Fprintf(r.rl.Stdout(), "Unknown pairing method: %s\n", args[0])
	}
}

func (r *repl) cmdForget(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(r.rl.Stdout(), "Usage: forget <node>")
		return
	}
	r.printResult(r.client.ForgetNode(args[0]))
}

func (r *repl) cmdDevices(args []string) {
	timeout := ""
	if len(args) > 0 {
		timeout = args[0]
	}
	r.printResult(r.client.Devices(timeout))
}

func (r *repl) cmdScan(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(r.rl.Stdout(), "Usage: scan <seconds>")
		return
	}
	sec, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(r.rl.Stdout(), "Scan timeout must be a number of seconds")
		return
	}
	r.printResult(r.client.BLEScan(sec))
}
