// Package ussd drives the phone menu dialog. Gateways resend the whole input
// history on every request, so the dialog position is rebuilt each time from
// the "*"-separated text and dispatched through a fixed transition table.
package ussd

import (
	"strconv"
	"strings"
)

// Branch is the top-level menu choice.
type Branch int

const (
	BranchRoot Branch = iota
	BranchSubmit
	BranchTrack
	BranchPoints
	BranchRedeem
)

func (b Branch) String() string {
	switch b {
	case BranchRoot:
		return "root"
	case BranchSubmit:
		return "submit"
	case BranchTrack:
		return "track"
	case BranchPoints:
		return "points"
	case BranchRedeem:
		return "redeem"
	default:
		return "invalid"
	}
}

// State is a position in the dialog: the branch and how many inputs were given.
type State struct {
	Branch Branch
	Depth  int
}

type branchShape struct {
	maxDepth int
	// freeTail lets the last input contain "*", as in complaint descriptions.
	freeTail bool
}

var shapes = map[Branch]branchShape{
	BranchSubmit: {maxDepth: 4, freeTail: true},
	BranchTrack:  {maxDepth: 2},
	BranchPoints: {maxDepth: 1},
	BranchRedeem: {maxDepth: 3},
}

// Parse turns the accumulated gateway text into a dialog state and its inputs.
// ok is false when the text names no known branch or goes deeper than the branch allows.
func Parse(text string) (State, []string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return State{Branch: BranchRoot}, nil, true
	}

	inputs := strings.Split(text, "*")
	choice, err := strconv.Atoi(strings.TrimSpace(inputs[0]))
	if err != nil {
		return State{}, inputs, false
	}
	branch := Branch(choice)
	shape, known := shapes[branch]
	if !known {
		return State{}, inputs, false
	}

	if len(inputs) > shape.maxDepth {
		if !shape.freeTail {
			return State{}, inputs, false
		}
		tail := strings.Join(inputs[shape.maxDepth-1:], "*")
		inputs = append(inputs[:shape.maxDepth-1:shape.maxDepth-1], tail)
	}

	return State{Branch: branch, Depth: len(inputs)}, inputs, true
}

// Response is a USSD gateway reply.
type Response struct {
	Text string
	End  bool
}

func (r Response) String() string {
	if r.End {
		return "END " + r.Text
	}
	return "CON " + r.Text
}

func con(text string) Response { return Response{Text: text} }

func end(text string) Response { return Response{Text: text, End: true} }
