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
	"math"
)

type opCode uint8

const (
	opPush opCode = iota

	opAbs
	opAdd
	opAtan
	opCeiling
	opCos
	opCvi
	opCvr
	opDiv
	opExp
	opFloor
	opIdiv
	opLn
	opLog
	opMod
	opMul
	opNeg
	opRound
	opSin
	opSqrt
	opSub
	opTruncate

	opAnd
	opBitshift
	opEq
	opGe
	opGt
	opLe
	opLt
	opNe
	opNot
	opOr
	opXor

	opCopy
	opDup
	opExch
	opIndex
	opPop
	opRoll

	opJumpIfFalse
	opJump
)

type valueKind uint8

const (
	kindInt valueKind = iota
	kindReal
	kindBool
)

// value is an element of the operand stack.  Booleans are stored in i.
type value struct {
	kind valueKind
	i    int
	f    float64
}

func intVal(n int) value      { return value{kind: kindInt, i: n} }
func realVal(x float64) value { return value{kind: kindReal, f: x} }
func boolVal(b bool) value {
	if b {
		return value{kind: kindBool, i: 1}
	}
	return value{kind: kindBool}
}

func (v value) asFloat() float64 {
	switch v.kind {
	case kindInt, kindBool:
		return float64(v.i)
	}
	return v.f
}

func (v value) isNumber() bool {
	return v.kind != kindBool
}

// maxStackDepth is the operand stack limit of the PostScript calculator.
const maxStackDepth = 100

var (
	errStackUnderflow = errors.New("stack underflow")
	errStackOverflow  = errors.New("stack overflow")
	errTypeCheck      = errors.New("type check")
	errRangeCheck     = errors.New("range check")
	errUndefined      = errors.New("undefined result")
)

type machine struct {
	stack []value
}

func (vm *machine) push(v value) {
	vm.stack = append(vm.stack, v)
}

func (vm *machine) pop() (value, error) {
	n := len(vm.stack)
	if n == 0 {
		return value{}, errStackUnderflow
	}
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v, nil
}

func (vm *machine) popNumber() (value, error) {
	v, err := vm.pop()
	if err == nil && !v.isNumber() {
		err = errTypeCheck
	}
	return v, err
}

func (vm *machine) popInt() (int, error) {
	v, err := vm.pop()
	if err == nil && v.kind != kindInt {
		err = errTypeCheck
	}
	return v.i, err
}

// pop2 removes two numbers.  The topmost value is returned second.
func (vm *machine) pop2() (value, value, error) {
	b, err := vm.popNumber()
	if err != nil {
		return value{}, value{}, err
	}
	a, err := vm.popNumber()
	return a, b, err
}

// unaryReal holds the operators which always produce a real result.
var unaryReal = map[opCode]func(float64) (float64, error){
	opSqrt: func(x float64) (float64, error) {
		if x < 0 {
			return 0, errRangeCheck
		}
		return math.Sqrt(x), nil
	},
	opLn: func(x float64) (float64, error) {
		if x <= 0 {
			return 0, errRangeCheck
		}
		return math.Log(x), nil
	},
	opLog: func(x float64) (float64, error) {
		if x <= 0 {
			return 0, errRangeCheck
		}
		return math.Log10(x), nil
	},
	opSin: func(x float64) (float64, error) { return math.Sin(x * math.Pi / 180), nil },
	opCos: func(x float64) (float64, error) { return math.Cos(x * math.Pi / 180), nil },
	opCvr: func(x float64) (float64, error) { return x, nil },
}

// rounding holds the operators which keep integers unchanged.
var rounding = map[opCode]func(float64) float64{
	opCeiling:  math.Ceil,
	opFloor:    math.Floor,
	opTruncate: math.Trunc,
	opRound:    func(x float64) float64 { return math.Floor(x + 0.5) },
}

func compare(op opCode, a, b float64) bool {
	switch op {
	case opGe:
		return a >= b
	case opGt:
		return a > b
	case opLe:
		return a <= b
	default:
		return a < b
	}
}

// arith applies +, - or * and keeps integer results where they fit.
func arith(op opCode, a, b value) value {
	x, y := a.asFloat(), b.asFloat()
	var r float64
	switch op {
	case opAdd:
		r = x + y
	case opSub:
		r = x - y
	default:
		r = x * y
	}
	if a.kind == kindInt && b.kind == kindInt && math.Abs(r) < 1<<53 {
		return intVal(int(r))
	}
	return realVal(r)
}

// run executes a compiled program.
func (vm *machine) run(code []instruction) error {
	for pc := 0; pc < len(code); pc++ {
		inst := code[pc]
		if err := vm.step(inst, &pc); err != nil {
			return err
		}
		if len(vm.stack) > maxStackDepth {
			return errStackOverflow
		}
	}
	return nil
}

func (vm *machine) step(inst instruction, pc *int) error {
	op := inst.op

	if f, ok := unaryReal[op]; ok {
		v, err := vm.popNumber()
		if err != nil {
			return err
		}
		x, err := f(v.asFloat())
		if err != nil {
			return err
		}
		vm.push(realVal(x))
		return nil
	}
	if f, ok := rounding[op]; ok {
		v, err := vm.popNumber()
		if err != nil {
			return err
		}
		if v.kind == kindReal {
			v.f = f(v.f)
		}
		vm.push(v)
		return nil
	}

	switch op {
	case opPush:
		vm.push(inst.arg)

	case opAdd, opSub, opMul:
		a, b, err := vm.pop2()
		if err != nil {
			return err
		}
		vm.push(arith(op, a, b))

	case opDiv:
		a, b, err := vm.pop2()
		if err != nil {
			return err
		}
		if b.asFloat() == 0 {
			return errUndefined
		}
		vm.push(realVal(a.asFloat() / b.asFloat()))

	case opIdiv, opMod:
		b, err := vm.popInt()
		if err != nil {
			return err
		}
		a, err := vm.popInt()
		if err != nil {
			return err
		}
		if b == 0 {
			return errUndefined
		}
		if op == opIdiv {
			vm.push(intVal(a / b))
		} else {
			vm.push(intVal(a % b))
		}

	case opAbs, opNeg:
		v, err := vm.popNumber()
		if err != nil {
			return err
		}
		switch {
		case v.kind == kindReal && op == opAbs:
			v.f = math.Abs(v.f)
		case v.kind == kindReal:
			v.f = -v.f
		case v.i == math.MinInt:
			v = realVal(-float64(v.i))
		case op == opNeg || v.i < 0:
			v.i = -v.i
		}
		vm.push(v)

	case opExp:
		a, b, err := vm.pop2()
		if err != nil {
			return err
		}
		r := math.Pow(a.asFloat(), b.asFloat())
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return errUndefined
		}
		vm.push(realVal(r))

	case opAtan:
		num, den, err := vm.pop2()
		if err != nil {
			return err
		}
		if num.asFloat() == 0 && den.asFloat() == 0 {
			return errUndefined
		}
		deg := math.Atan2(num.asFloat(), den.asFloat()) * 180 / math.Pi
		if deg < 0 {
			deg += 360
		}
		vm.push(realVal(deg))

	case opCvi:
		v, err := vm.popNumber()
		if err != nil {
			return err
		}
		t := math.Trunc(v.asFloat())
		if t >= math.MaxInt64 || t < math.MinInt64 {
			return errRangeCheck
		}
		vm.push(intVal(int(t)))

	case opEq, opNe:
		b, err := vm.pop()
		if err != nil {
			return err
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		var eq bool
		if a.isNumber() && b.isNumber() {
			eq = a.asFloat() == b.asFloat()
		} else {
			eq = a.kind == b.kind && a.i == b.i
		}
		vm.push(boolVal(eq == (op == opEq)))

	case opGe, opGt, opLe, opLt:
		a, b, err := vm.pop2()
		if err != nil {
			return err
		}
		vm.push(boolVal(compare(op, a.asFloat(), b.asFloat())))

	case opAnd, opOr, opXor:
		b, err := vm.pop()
		if err != nil {
			return err
		}
		a, err := vm.pop()
		if err != nil {
			return err
		}
		if a.kind != b.kind || a.kind == kindReal {
			return errTypeCheck
		}
		var r int
		switch op {
		case opAnd:
			r = a.i & b.i
		case opOr:
			r = a.i | b.i
		default:
			r = a.i ^ b.i
		}
		vm.push(value{kind: a.kind, i: r})

	case opNot:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		switch v.kind {
		case kindBool:
			v.i ^= 1
		case kindInt:
			v.i = ^v.i
		default:
			return errTypeCheck
		}
		vm.push(v)

	case opBitshift:
		shift, err := vm.popInt()
		if err != nil {
			return err
		}
		x, err := vm.popInt()
		if err != nil {
			return err
		}
		if shift >= 0 {
			vm.push(intVal(x << uint(shift)))
		} else {
			vm.push(intVal(x >> uint(-shift)))
		}

	case opDup:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		vm.push(v)
		vm.push(v)

	case opExch:
		n := len(vm.stack)
		if n < 2 {
			return errStackUnderflow
		}
		vm.stack[n-1], vm.stack[n-2] = vm.stack[n-2], vm.stack[n-1]

	case opPop:
		_, err := vm.pop()
		return err

	case opIndex:
		i, err := vm.popInt()
		if err != nil {
			return err
		}
		if i < 0 || i >= len(vm.stack) {
			return errRangeCheck
		}
		vm.push(vm.stack[len(vm.stack)-1-i])

	case opCopy:
		n, err := vm.popInt()
		if err != nil {
			return err
		}
		if n < 0 || n > len(vm.stack) {
			return errRangeCheck
		}
		vm.stack = append(vm.stack, vm.stack[len(vm.stack)-n:]...)

	case opRoll:
		j, err := vm.popInt()
		if err != nil {
			return err
		}
		n, err := vm.popInt()
		if err != nil {
			return err
		}
		if n < 0 || n > len(vm.stack) {
			return errRangeCheck
		}
		if n == 0 {
			return nil
		}
		j %= n
		if j < 0 {
			j += n
		}
		part := vm.stack[len(vm.stack)-n:]
		rotated := append(append([]value(nil), part[n-j:]...), part[:n-j]...)
		copy(part, rotated)

	case opJumpIfFalse:
		v, err := vm.pop()
		if err != nil {
			return err
		}
		if v.kind != kindBool {
			return errTypeCheck
		}
		if v.i == 0 {
			*pc += inst.off
		}

	case opJump:
		*pc += inst.off

	default:
		return errTypeCheck
	}
	return nil
}
