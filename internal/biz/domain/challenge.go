package domain

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const (
	// MaxAnswer is the largest answer a challenge may have
	MaxAnswer = 100
	// OptionCount is the number of choices shown to the user
	OptionCount = 4
	// maxOffset bounds how far a wrong option strays from the answer
	maxOffset = 10

	payloadPrefix = "verify"
)

// Operator is an arithmetic operator used in challenges
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
	OpMul Operator = "*"
	OpDiv Operator = "/"
)

var operators = []Operator{OpAdd, OpSub, OpMul, OpDiv}

// Rand is the randomness source for challenge generation
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// DefaultRand uses the process-wide generator, safe for concurrent use
var DefaultRand Rand = globalRand{}

// between returns a uniform integer in [lo, hi]
func between(r Rand, lo, hi int) int {
	return lo + r.IntN(hi-lo+1)
}

// Problem is an arithmetic question with its answer
type Problem struct {
	Left   int
	Right  int
	Op     Operator
	Answer int
}

// Question renders the problem without the answer
func (p Problem) Question() string {
	return fmt.Sprintf("%d %s %d", p.Left, p.Op, p.Right)
}

// Eval recomputes the answer from the operands
func (p Problem) Eval() int {
	switch p.Op {
	case OpAdd:
		return p.Left + p.Right
	case OpSub:
		return p.Left - p.Right
	case OpMul:
		return p.Left * p.Right
	case OpDiv:
		if p.Right == 0 {
			return -1
		}
		return p.Left / p.Right
	}
	return -1
}

// GenerateProblem draws a problem whose answer is in [1, MaxAnswer].
// Division is built from divisor and quotient so it is always exact.
func GenerateProblem(r Rand) Problem {
	for {
		var p Problem
		p.Op = operators[r.IntN(len(operators))]

		switch p.Op {
		case OpAdd:
			p.Left = between(r, 1, 50)
			p.Right = between(r, 1, 50)
		case OpSub:
			p.Left = between(r, 1, 100)
			p.Right = between(r, 0, p.Left)
		case OpMul:
			p.Left = between(r, 1, 10)
			p.Right = between(r, 1, 10)
		case OpDiv:
			p.Right = between(r, 1, 9)
			p.Left = p.Right * between(r, 1, 10)
		}
		p.Answer = p.Eval()

		// A zero answer could not sit among positive options
		if p.Answer < 1 || p.Answer > MaxAnswer {
			continue
		}
		return p
	}
}

// GenerateOptions returns OptionCount distinct positive choices in random
// order, exactly one of which is correct.
func GenerateOptions(r Rand, correct int) []int {
	options := []int{correct}
	seen := map[int]bool{correct: true}

	for len(options) < OptionCount {
		offset := between(r, -maxOffset, maxOffset)
		wrong := correct + offset
		if offset == 0 || wrong <= 0 || seen[wrong] {
			continue
		}
		seen[wrong] = true
		options = append(options, wrong)
	}

	for i := len(options) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		options[i], options[j] = options[j], options[i]
	}
	return options
}

// Challenge is an issued problem together with its displayed options
type Challenge struct {
	UserID  string
	Problem Problem
	Options []int
}

// AnswerPayload is the callback data attached to one option
type AnswerPayload struct {
	Picked  int
	Claimed int
}

// Encode renders the payload in its wire form
func (p AnswerPayload) Encode() string {
	return fmt.Sprintf("%s_%d_%d", payloadPrefix, p.Picked, p.Claimed)
}

// ParseAnswerPayload parses verify_<picked>_<claimed>
func ParseAnswerPayload(data string) (AnswerPayload, error) {
	parts := strings.Split(data, "_")
	if len(parts) != 3 || parts[0] != payloadPrefix {
		return AnswerPayload{}, ErrInvalidPayload
	}
	picked, err := strconv.Atoi(parts[1])
	if err != nil {
		return AnswerPayload{}, ErrInvalidPayload
	}
	claimed, err := strconv.Atoi(parts[2])
	if err != nil {
		return AnswerPayload{}, ErrInvalidPayload
	}
	return AnswerPayload{Picked: picked, Claimed: claimed}, nil
}

// Payloads builds the callback data for each option in display order
func (c *Challenge) Payloads() []AnswerPayload {
	out := make([]AnswerPayload, len(c.Options))
	for i, opt := range c.Options {
		out[i] = AnswerPayload{Picked: opt, Claimed: c.Problem.Answer}
	}
	return out
}

// AnswerResult is the outcome of an answer submission
type AnswerResult int

const (
	AnswerIncorrect AnswerResult = iota
	AnswerCorrect
)

func (r AnswerResult) String() string {
	if r == AnswerCorrect {
		return "correct"
	}
	return "incorrect"
}
