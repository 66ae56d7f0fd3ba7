// Package cli parses the remotedeck command line.
package cli

import (
	"fmt"
	"io"
	"strings"

	flag "github.com/spf13/pflag"
)

type Command string

const (
	CommandServe   Command = "serve"
	CommandSend    Command = "send"
	CommandTrack   Command = "track"
	CommandWatch   Command = "watch"
	CommandPing    Command = "ping"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandServe:   {},
	CommandSend:    {},
	CommandTrack:   {},
	CommandWatch:   {},
	CommandPing:    {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command    Command
	Token      string
	ConfigPath string
	Host       string
	ShowHelp   bool
}

func Parse(args []string) (Parsed, error) {
	flags := flag.NewFlagSet("remotedeck", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	configPath := flags.StringP("config", "c", "", "config file path")
	host := flags.String("host", "", "override the target host address")
	showHelp := flags.BoolP("help", "h", false, "show help")
	showVersion := flags.Bool("version", false, "show version")

	if err := flags.Parse(args); err != nil {
		return Parsed{}, err
	}

	parsed := Parsed{
		Command:    CommandHelp,
		ConfigPath: *configPath,
		Host:       *host,
		ShowHelp:   true,
	}

	rest := flags.Args()
	if *showHelp {
		return parsed, nil
	}
	if *showVersion {
		parsed.Command = CommandVersion
		parsed.ShowHelp = false
		return parsed, nil
	}
	if len(rest) == 0 {
		return parsed, nil
	}

	cmd := Command(rest[0])
	if _, ok := validCommands[cmd]; !ok {
		return Parsed{}, fmt.Errorf("unknown command: %s", rest[0])
	}
	parsed.Command = cmd
	parsed.ShowHelp = cmd == CommandHelp

	switch cmd {
	case CommandSend:
		if len(rest) != 2 {
			return Parsed{}, fmt.Errorf("send requires exactly one TOKEN argument")
		}
		parsed.Token = strings.TrimSpace(rest[1])
		if parsed.Token == "" {
			return Parsed{}, fmt.Errorf("send requires a non-empty TOKEN")
		}
	default:
		if len(rest) != 1 {
			return Parsed{}, fmt.Errorf("unexpected arguments after command %q", rest[0])
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--host ADDR] <command>

Commands:
  serve         Run the host-side command server
  send TOKEN    Send one action token and print the response
  track         Query current track info once and print it
  watch         Poll track info continuously and print each line
  ping          Test host reachability without sending a command
  doctor        Run configuration and environment checks
  version       Print version information
  help          Show this help

Flags:
  -c, --config PATH   Config file path (default: $XDG_CONFIG_HOME/remotedeck/config.toml)
      --host ADDR     Target host:port (default: config "host" value)
  -h, --help          Show help
      --version       Show version
`, binaryName)
}
