package domain

import (
	"fmt"
	"strings"
)

// Verb is a command understood by the server.
type Verb string

const (
	VerbStatus    Verb = "status"
	VerbStart     Verb = "start"
	VerbStop      Verb = "stop"
	VerbRestart   Verb = "restart"
	VerbUnmonitor Verb = "unmonitor"
)

// Verbs lists every supported verb.
var Verbs = []Verb{VerbStatus, VerbStart, VerbStop, VerbRestart, VerbUnmonitor}

// ParseVerb returns the Verb named s or ErrUnknownCommand.
func ParseVerb(s string) (Verb, error) {
	for _, v := range Verbs {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// Mutating reports whether the verb changes supervision state and must go
// through the work queue.
func (v Verb) Mutating() bool {
	return v != VerbStatus
}

// Command is one request line: a verb and an optional target.
type Command struct {
	Verb   Verb
	Target string
}

// ParseCommand parses "verb" or "verb:target". Surrounding whitespace,
// including the trailing newline, is ignored.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	name, target, _ := strings.Cut(line, ":")
	verb, err := ParseVerb(name)
	if err != nil {
		return Command{}, err
	}
	return Command{Verb: verb, Target: target}, nil
}

// String renders the command in wire form.
func (c Command) String() string {
	if c.Target == "" {
		return string(c.Verb)
	}
	return string(c.Verb) + ":" + c.Target
}

// WorkItem is a queued mutating command. An empty Target means broadcast.
type WorkItem struct {
	Verb   Verb
	Target string
}
