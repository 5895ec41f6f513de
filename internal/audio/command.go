package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultCommand speaks Mandarin with espeak-ng.
const DefaultCommand = "espeak-ng -v cmn {text}"

// CommandSpeaker runs an external program per utterance. The {text}
// placeholder is replaced by the text; without one the text is appended as
// the last argument.
type CommandSpeaker struct {
	args []string
}

// NewCommandSpeaker parses a command template.
func NewCommandSpeaker(template string) (*CommandSpeaker, error) {
	args := strings.Fields(template)
	if len(args) == 0 {
		return nil, ErrNoCommand
	}
	return &CommandSpeaker{args: args}, nil
}

// Start launches the command; it does not wait for it to finish.
func (s *CommandSpeaker) Start(ctx context.Context, text string) (Playback, error) {
	args := commandArgs(s.args, text)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", args[0], err)
	}
	return cmd, nil
}

func commandArgs(template []string, text string) []string {
	out := make([]string, 0, len(template)+1)
	replaced := false
	for _, arg := range template {
		if strings.Contains(arg, "{text}") {
			arg = strings.ReplaceAll(arg, "{text}", text)
			replaced = true
		}
		out = append(out, arg)
	}
	if !replaced {
		out = append(out, text)
	}
	return out
}
