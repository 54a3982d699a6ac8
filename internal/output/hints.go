package output

import (
	"fmt"
	"strings"
)

// CommandHints maps command names to related commands users might want to run next
var CommandHints = map[string][]string{
	"detect":   {"groups <file>", "scan <files...>"},
	"groups":   {"detect <file>"},
	"scan":     {"detect <file>", "groups <file>"},
	"generate": {"detect <file>", "groups <file>"},
	"config":   {"detect --synthetic"},
}

// PrintHints prints "See also" hints for a command. No-op in quiet mode or if command has no hints.
func (p *Printer) PrintHints(command string) {
	if p.quiet {
		return
	}
	hints, ok := CommandHints[command]
	if !ok || len(hints) == 0 {
		return
	}

	cmds := make([]string, len(hints))
	for i, h := range hints {
		cmds[i] = "normscan " + h
	}
	fmt.Fprintf(p.out, "\nSee also: %s\n", strings.Join(cmds, ", "))
}
