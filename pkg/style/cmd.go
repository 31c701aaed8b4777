package style

// All cmd styling related code should be placed in this file.

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

var (
	TableStyle     = table.StyleLight
	PositiveColors = text.Colors{text.FgGreen}
	NegativeColors = text.Colors{text.FgRed}
	WarningColors  = text.Colors{text.FgYellow}
	DisabledColors = text.Colors{text.FgHiBlack}
)

const (
	TickMark  = "✔"
	CrossMark = "✖"
)

// BoolStr returns a string representation of a boolean value.
func BoolStr(b bool, s ...string) string {
	if len(s) == 2 {
		if b {
			return PositiveColors.Sprint(s[0])
		}
		return NegativeColors.Sprint(s[1])
	}
	if b {
		return PositiveColors.Sprint("yes")
	}
	return NegativeColors.Sprint("no")
}

// PassStr renders a pass/fail verdict.
func PassStr(passed bool) string {
	if passed {
		return PositiveColors.Sprint(TickMark + " pass")
	}
	return NegativeColors.Sprint(CrossMark + " fail")
}
