// Package cli contains helpers for our command-line tools: flag parsing, logging setup and a
// few flag types.
package cli

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/peterebden/go-cli-init/v5/logging"
	"github.com/thought-machine/go-flags"
)

// A Verbosity is the level of logging output to produce, e.g. "notice" or "debug".
type Verbosity = logging.Verbosity

// InitLogging initialises logging backends at the given verbosity.
func InitLogging(verbosity Verbosity) {
	logging.InitLogging(verbosity)
}

// ParseFlags parses the app's flags and returns the parser, any extra arguments, and an error (if any).
func ParseFlags(appname string, data interface{}, args []string) (*flags.Parser, []string, error) {
	parser := flags.NewNamedParser(appname, flags.HelpFlag|flags.PassDoubleDash)
	parser.AddGroup(appname+" options", "", data)
	extraArgs, err := parser.ParseArgs(args[1:])
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			writeUsage(data)
			fmt.Printf("%s\n", err)
			os.Exit(0)
		}
		return nil, nil, err
	}
	return parser, extraArgs, nil
}

// ParseFlagsOrDie parses the app's flags and dies if unsuccessful.
// Also dies if any unexpected arguments are passed.
// It returns the active command if there is one.
func ParseFlagsOrDie(appname string, data interface{}) string {
	parser, extraArgs, err := ParseFlags(appname, data, os.Args)
	if err != nil {
		writeUsage(data)
		parser := flags.NewNamedParser(appname, flags.HelpFlag)
		parser.AddGroup(appname+" options", "", data)
		parser.WriteHelp(os.Stderr)
		fmt.Fprintf(os.Stderr, "\n%s\n", err)
		os.Exit(1)
	} else if len(extraArgs) > 0 {
		writeUsage(data)
		fmt.Fprintf(os.Stderr, "Unknown option %s\n", extraArgs)
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}
	if parser.Active != nil {
		return parser.Active.Name
	}
	return ""
}

// writeUsage prints any usage specified on the flag struct.
func writeUsage(opts interface{}) {
	if s := getUsage(opts); s != "" {
		fmt.Println(s)
	}
}

// getUsage extracts any usage specified on a flag struct, from a string field named Usage.
func getUsage(opts interface{}) string {
	v := reflect.ValueOf(opts)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return ""
	}
	if f := v.FieldByName("Usage"); f.IsValid() && f.Kind() == reflect.String {
		return f.String()
	}
	return ""
}

// A Duration is used for flags and config fields that represent a time duration.
// Unlike time.Duration it accepts a bare number of seconds as well as a Go duration string.
type Duration time.Duration

// UnmarshalFlag implements the flags.Unmarshaler interface.
func (d *Duration) UnmarshalFlag(in string) error {
	return d.UnmarshalText([]byte(in))
}

// UnmarshalText implements the encoding.TextUnmarshaler interface, which is used by gcfg.
func (d *Duration) UnmarshalText(text []byte) error {
	dur, err := time.ParseDuration(string(text))
	if err != nil {
		secs, err2 := strconv.Atoi(string(text))
		if err2 != nil {
			return fmt.Errorf("invalid duration %q: %s", text, err)
		}
		dur = time.Duration(secs) * time.Second
	}
	*d = Duration(dur)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
