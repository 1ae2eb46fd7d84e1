package proposer

import (
	"fmt"
	"strings"
)

// instructionHeader is the fixed instruction block of the guessing prompt.
const instructionHeader = `User input is last iterative guess of an unknown text string and its vector ERROR from the unknown text.
Determine a better text string having a lower vector ERROR and write only that string in English as your entire output.
The goal is to accurately guess the mystery text.
This is a game of guess-and-check.`

// responseCriteria is advisory repetition suppression. The controller never
// enforces it: a duplicate proposal is still accepted as the next guess.
const responseCriteria = `[RESPONSE CRITERIA]
- DO NOT REPEAT YOURSELF, CONSIDER ` + "`RECENT_PRIOR_GUESSES`" + ` and ` + "`BEST_GUESSES`" + ` PROVIDED IN [context] when formulating your answer.
- RESPOND WITH COMPLETE GUESS ONLY.
- DO NOT REPEAT ANY OF THE ` + "`BEST_GUESSES`" + ` AND ` + "`RECENT_PRIOR_GUESSES`" + ` PROVIDED IN [context].
[/RESPONSE CRITERIA]`

// GuessSummary renders the user message describing the last scored guess,
// e.g. `ERROR 1.2000, "Be"`.
func GuessSummary(req Request) string {
	return fmt.Sprintf("ERROR %.4f, %q", req.LastError, req.LastGuess)
}

// BuildPrompt assembles the complete prompt for one proposal call:
// instruction, optional clue, response criteria, the last guess summary and
// the history context.
func BuildPrompt(req Request) string {
	var b strings.Builder

	b.WriteString(instructionHeader)
	b.WriteString("\n\n")

	if req.Clue != "" {
		fmt.Fprintf(&b, "[clue]\n%s\n[/clue]\n\n", req.Clue)
	}

	b.WriteString(responseCriteria)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "[userinput]\n%s\n[/userinput]\n\n", GuessSummary(req))

	b.WriteString("[context]\nBEST_GUESSES:\n")
	for _, rec := range req.Feedback.Best {
		b.WriteString(rec.String())
		b.WriteString("\n")
	}
	b.WriteString("\nRECENT_PRIOR_GUESSES:\n")
	for _, rec := range req.Feedback.Recent {
		b.WriteString(rec.String())
		b.WriteString("\n")
	}
	b.WriteString("[/context]")

	return b.String()
}
