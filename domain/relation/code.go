// Package relation classifies two-digit draw codes and defines the
// registry of searchable relations between a day's AM and PM codes.
package relation

import "strconv"

// ClosedCode marks a session in which no draw took place.
const ClosedCode = "aa"

// Eligible reports whether code can take part in a positive match:
// exactly two ASCII digits and not the closed sentinel.
func Eligible(code string) bool {
	if len(code) != 2 || code == ClosedCode {
		return false
	}
	return isDigit(code[0]) && isDigit(code[1])
}

// BreakValue returns the sum of the code's digits modulo 10.
func BreakValue(code string) (int, bool) {
	if !Eligible(code) {
		return 0, false
	}
	return (digit(code[0]) + digit(code[1])) % 10, true
}

// DigitOne returns the first digit of the code.
func DigitOne(code string) (int, bool) {
	if !Eligible(code) {
		return 0, false
	}
	return digit(code[0]), true
}

// DigitTwo returns the second digit of the code.
func DigitTwo(code string) (int, bool) {
	if !Eligible(code) {
		return 0, false
	}
	return digit(code[1]), true
}

// Adjacent reports whether two digits differ by one modulo 10, so 9 and 0
// are adjacent.
func Adjacent(a, b int) bool {
	d := ((a-b)%10 + 10) % 10
	return d == 1 || d == 9
}

// Field selects the value a relation reads from a session code.
type Field int

// Readable fields of a session code.
const (
	FieldCode Field = iota
	FieldBreak
	FieldDigitOne
	FieldDigitTwo
)

// String returns the field name used in listings.
func (f Field) String() string {
	switch f {
	case FieldBreak:
		return "break"
	case FieldDigitOne:
		return "dg1"
	case FieldDigitTwo:
		return "dg2"
	default:
		return "code"
	}
}

// Width is the number of digits in the field's value.
func (f Field) Width() int {
	if f == FieldCode {
		return 2
	}
	return 1
}

// Value reads the field from code. Values are strings so that codes and
// single digits compare uniformly against sets and parameters.
func (f Field) Value(code string) (string, bool) {
	var (
		v  int
		ok bool
	)
	switch f {
	case FieldCode:
		if !Eligible(code) {
			return "", false
		}
		return code, true
	case FieldBreak:
		v, ok = BreakValue(code)
	case FieldDigitOne:
		v, ok = DigitOne(code)
	case FieldDigitTwo:
		v, ok = DigitTwo(code)
	}
	if !ok {
		return "", false
	}
	return strconv.Itoa(v), true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func digit(b byte) int {
	return int(b - '0')
}

// validParam reports whether s is exactly width ASCII digits.
func validParam(s string, width int) bool {
	if len(s) != width {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
