package shell

import (
	"strings"

	"github.com/buildkite/shellwords"
)

// formatCommand formats a command and arguments for human reading in log
// lines, quoting anything a shell would need quoted.
func formatCommand(command string, args []string) string {
	s := make([]string, 0, len(args)+1)
	s = append(s, shellwords.Quote(command))
	for _, a := range args {
		s = append(s, shellwords.Quote(a))
	}
	return strings.Join(s, " ")
}
