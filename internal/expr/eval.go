package expr

import (
	"fmt"
	"math"
)

// functions is the fixed call allow-list. Every function takes one argument
// except log, which accepts an optional base.
var functions = map[string]func(args []float64) (float64, error){
	"sin":  unary(math.Sin),
	"cos":  unary(math.Cos),
	"tan":  unary(math.Tan),
	"sqrt": func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%w: sqrt takes one argument", ErrEvaluation)
		}
		if args[0] < 0 {
			return 0, fmt.Errorf("%w: sqrt of negative number", ErrEvaluation)
		}
		return math.Sqrt(args[0]), nil
	},
	"log": func(args []float64) (float64, error) {
		switch len(args) {
		case 1:
			return checkDomain(math.Log(args[0]))
		case 2:
			value, err := checkDomain(math.Log(args[0]))
			if err != nil {
				return 0, err
			}
			base, err := checkDomain(math.Log(args[1]))
			if err != nil {
				return 0, err
			}
			return value / base, nil
		default:
			return 0, fmt.Errorf("%w: log takes one or two arguments", ErrEvaluation)
		}
	},
	"log10": func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%w: log10 takes one argument", ErrEvaluation)
		}
		return checkDomain(math.Log10(args[0]))
	},
	"ceil":  unary(math.Ceil),
	"floor": unary(math.Floor),
	"factorial": func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%w: factorial takes one argument", ErrEvaluation)
		}
		n := args[0]
		if n < 0 || n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: factorial requires a non-negative integer", ErrEvaluation)
		}
		if n > 170 {
			return 0, fmt.Errorf("%w: factorial argument too large", ErrEvaluation)
		}
		result := 1.0
		for i := 2.0; i <= n; i++ {
			result *= i
		}
		return result, nil
	},
	"fabs": unary(math.Abs),
}

// constants is the fixed named-constant allow-list
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

func unary(fn func(float64) float64) func(args []float64) (float64, error) {
	return func(args []float64) (float64, error) {
		if len(args) != 1 {
			return 0, fmt.Errorf("%w: function takes one argument", ErrEvaluation)
		}
		return fn(args[0]), nil
	}
}

func checkDomain(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: argument outside function domain", ErrEvaluation)
	}
	return v, nil
}

// Evaluate parses and evaluates a numeric expression. It fails with an error
// wrapping ErrEvaluation on anything outside the grammar; it never executes
// or resolves host capabilities reachable through the input text.
func Evaluate(input string) (float64, error) {
	node, err := Parse(input)
	if err != nil {
		return 0, err
	}
	return eval(node)
}

func eval(node Node) (float64, error) {
	switch n := node.(type) {
	case Number:
		return n.Value, nil

	case Constant:
		return constants[n.Name], nil

	case Unary:
		v, err := eval(n.Operand)
		if err != nil {
			return 0, err
		}
		return -v, nil

	case Binary:
		left, err := eval(n.Left)
		if err != nil {
			return 0, err
		}
		right, err := eval(n.Right)
		if err != nil {
			return 0, err
		}
		switch n.Op {
		case "+":
			return left + right, nil
		case "-":
			return left - right, nil
		case "*":
			return left * right, nil
		case "/":
			if right == 0 {
				return 0, fmt.Errorf("%w: division by zero", ErrEvaluation)
			}
			return left / right, nil
		case "//":
			if right == 0 {
				return 0, fmt.Errorf("%w: division by zero", ErrEvaluation)
			}
			return math.Floor(left / right), nil
		case "%":
			if right == 0 {
				return 0, fmt.Errorf("%w: modulo by zero", ErrEvaluation)
			}
			// Floored modulo, matching floor division: the result takes the
			// sign of the divisor so a == (a//b)*b + a%b holds.
			r := math.Mod(left, right)
			if r != 0 && (r < 0) != (right < 0) {
				r += right
			}
			return r, nil
		case "^":
			return math.Pow(left, right), nil
		default:
			return 0, fmt.Errorf("%w: unknown operator %q", ErrEvaluation, n.Op)
		}

	case Call:
		fn := functions[n.Name]
		args := make([]float64, 0, len(n.Args))
		for _, argNode := range n.Args {
			v, err := eval(argNode)
			if err != nil {
				return 0, err
			}
			args = append(args, v)
		}
		return fn(args)

	default:
		return 0, fmt.Errorf("%w: unsupported node", ErrEvaluation)
	}
}
