package main

import "strings"

// shellCompleter implements readline's AutoCompleter interface. Lines
// starting with '.' complete dot-command names and arguments; everything
// else goes through the tree-driven completion engine.
type shellCompleter struct {
	sh *shell
}

// Do returns completion candidates for the current line and cursor.
// newLine holds the suffix to append for each candidate; length is the
// number of runes of the prefix being replaced.
func (c *shellCompleter) Do(line []rune, pos int) (newLine [][]rune, length int) {
	input := string(line[:pos])
	if strings.HasPrefix(input, ".") {
		return c.completeDot(input)
	}

	cands := c.sh.engine.Complete(input, len(input))
	if len(cands) == 0 {
		return nil, 0
	}
	// All candidates share the same replacement start: the context node. The
	// node can end left of the cursor (lookbehind across trailing
	// whitespace), in which case the typed text is not a prefix of the
	// replacement and no suffix can express it; such candidates are dropped
	// rather than misaligning the line.
	prefix := input[cands[0].From:]
	for _, cand := range cands {
		if len(prefix) > len(cand.Text) || !strings.EqualFold(cand.Text[:len(prefix)], prefix) {
			continue
		}
		newLine = append(newLine, []rune(cand.Text[len(prefix):]))
	}
	if len(newLine) == 0 {
		return nil, 0
	}
	return newLine, len([]rune(prefix))
}

func (c *shellCompleter) completeDot(input string) (newLine [][]rune, length int) {
	if i := strings.IndexByte(input, ' '); i >= 0 {
		// Completing an argument.
		name, argPrefix := input[:i], strings.TrimLeft(input[i+1:], " ")
		for _, cmd := range c.sh.commands {
			if cmd.name != name || cmd.complete == nil {
				continue
			}
			for _, cand := range cmd.complete(argPrefix) {
				newLine = append(newLine, []rune(cand[len(argPrefix):]+" "))
			}
			return newLine, len([]rune(argPrefix))
		}
		return nil, 0
	}

	// Completing the command name itself.
	for _, cmd := range c.sh.commands {
		if strings.HasPrefix(cmd.name, input) {
			suffix := cmd.name[len(input):]
			if cmd.args != "" || cmd.complete != nil {
				suffix += " "
			}
			newLine = append(newLine, []rune(suffix))
		}
	}
	return newLine, len([]rune(input))
}
