// seehuhn.de/go/pdfraster - a library for rendering PDF files
// Copyright (C) 2024  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package function

import (
	"errors"
	"fmt"
	"strconv"
)

var opNames = map[string]opCode{
	"abs": opAbs, "add": opAdd, "atan": opAtan, "ceiling": opCeiling,
	"cos": opCos, "cvi": opCvi, "cvr": opCvr, "div": opDiv,
	"exp": opExp, "floor": opFloor, "idiv": opIdiv, "ln": opLn,
	"log": opLog, "mod": opMod, "mul": opMul, "neg": opNeg,
	"round": opRound, "sin": opSin, "sqrt": opSqrt, "sub": opSub,
	"truncate": opTruncate,

	"and": opAnd, "bitshift": opBitshift, "eq": opEq, "ge": opGe,
	"gt": opGt, "le": opLe, "lt": opLt, "ne": opNe, "not": opNot,
	"or": opOr, "xor": opXor,

	"copy": opCopy, "dup": opDup, "exch": opExch, "index": opIndex,
	"pop": opPop, "roll": opRoll,
}

// instruction is one step of a compiled program.  Jump offsets are
// relative to the following instruction.
type instruction struct {
	op  opCode
	arg value
	off int
}

// compile translates the body of a calculator program into instructions.
// Conditionals are turned into jumps.
func compile(src string) ([]instruction, error) {
	c := &compiler{src: src}
	code, err := c.block(false)
	if err != nil {
		return nil, err
	}
	return code, nil
}

type compiler struct {
	src string
	pos int
}

func isPSSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', 0:
		return true
	}
	return false
}

// next returns the next token, or "" at the end of the input.
func (c *compiler) next() string {
	for c.pos < len(c.src) {
		ch := c.src[c.pos]
		if isPSSpace(ch) {
			c.pos++
		} else if ch == '%' {
			for c.pos < len(c.src) && c.src[c.pos] != '\n' && c.src[c.pos] != '\r' {
				c.pos++
			}
		} else {
			break
		}
	}
	if c.pos >= len(c.src) {
		return ""
	}
	if ch := c.src[c.pos]; ch == '{' || ch == '}' {
		c.pos++
		return string(ch)
	}
	start := c.pos
	for c.pos < len(c.src) {
		ch := c.src[c.pos]
		if isPSSpace(ch) || ch == '{' || ch == '}' || ch == '%' {
			break
		}
		c.pos++
	}
	return c.src[start:c.pos]
}

// block compiles tokens up to the end of input, or up to the matching "}"
// if nested is set.
func (c *compiler) block(nested bool) ([]instruction, error) {
	var code []instruction
	var procs [][]instruction // procedure bodies waiting for if/ifelse

	for {
		tok := c.next()
		switch tok {
		case "":
			if nested {
				return nil, errors.New("unterminated '{'")
			}
			if len(procs) > 0 {
				return nil, errors.New("unused procedure body")
			}
			return code, nil
		case "}":
			if !nested {
				return nil, errors.New("unexpected '}'")
			}
			if len(procs) > 0 {
				return nil, errors.New("unused procedure body")
			}
			return code, nil
		case "{":
			proc, err := c.block(true)
			if err != nil {
				return nil, err
			}
			procs = append(procs, proc)
			continue
		case "if":
			if len(procs) != 1 {
				return nil, errors.New("'if' needs one procedure")
			}
			body := procs[0]
			procs = procs[:0]
			code = append(code, instruction{op: opJumpIfFalse, off: len(body)})
			code = append(code, body...)
			continue
		case "ifelse":
			if len(procs) != 2 {
				return nil, errors.New("'ifelse' needs two procedures")
			}
			yes, no := procs[0], procs[1]
			procs = procs[:0]
			code = append(code, instruction{op: opJumpIfFalse, off: len(yes) + 1})
			code = append(code, yes...)
			code = append(code, instruction{op: opJump, off: len(no)})
			code = append(code, no...)
			continue
		}

		if len(procs) > 0 {
			return nil, fmt.Errorf("procedure body before %q", tok)
		}
		switch {
		case tok == "true":
			code = append(code, instruction{op: opPush, arg: boolVal(true)})
		case tok == "false":
			code = append(code, instruction{op: opPush, arg: boolVal(false)})
		default:
			if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
				code = append(code, instruction{op: opPush, arg: intVal(int(i))})
			} else if x, err := strconv.ParseFloat(tok, 64); err == nil {
				code = append(code, instruction{op: opPush, arg: realVal(x)})
			} else if op, ok := opNames[tok]; ok {
				code = append(code, instruction{op: op})
			} else {
				return nil, fmt.Errorf("unknown operator %q", tok)
			}
		}
	}
}
