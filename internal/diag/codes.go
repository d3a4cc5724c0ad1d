package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedString       Code = 1002
	LexUnterminatedBlockComment Code = 1003
	LexBadNumber                Code = 1004
	LexBadEscape                Code = 1005

	SynInfo              Code = 2000
	SynUnexpectedToken   Code = 2001
	SynExpectExpression  Code = 2002
	SynExpectIdentifier  Code = 2003
	SynExpectType        Code = 2004
	SynUnclosedDelimiter Code = 2005
	SynExpectSemicolon   Code = 2006
	SynBadAnnotation     Code = 2007

	ResInfo                Code = 3000
	ResUndefined           Code = 3001
	ResSelfReference       Code = 3002
	ResInitCycle           Code = 3003
	ResBlockNotExhaustive  Code = 3004
	ResIfNotExhaustive     Code = 3005
	ResDuplicate           Code = 3006
	ResAssignImmutable     Code = 3007
	ResReturnOutsideFn     Code = 3008
	ResBreakOutsideTarget  Code = 3009
	ResCaptureLocal        Code = 3010
	ResTooManyArguments    Code = 3011
	ResUnknownAnnotation   Code = 3012
	ResPrototypeNoBuiltin  Code = 3013
	ResBuiltinHasBody      Code = 3014
	ResBuiltinNotTopLevel  Code = 3015
	ResUnknownType         Code = 3016

	TypInfo               Code = 4000
	TypMismatch           Code = 4001
	TypBinaryOperand      Code = 4002
	TypUnaryOperand       Code = 4003
	TypArgCount           Code = 4004
	TypArgMismatch        Code = 4005
	TypNotCallable        Code = 4006
	TypBranchMismatch     Code = 4007
	TypConditionNotBool   Code = 4008
	TypReturnMismatch     Code = 4009
	TypVoidVariable       Code = 4010
	TypAssignMismatch     Code = 4011
	TypAnnotationMismatch Code = 4012
	TypBreakMismatch      Code = 4013
	TypVoidOperand        Code = 4014

	EncInfo          Code = 5000
	EncJumpTooFar    Code = 5001
	EncLoopTooFar    Code = 5002
	EncIndexTooLarge Code = 5003
	EncArityTooLarge Code = 5004
	EncBodyTooLarge  Code = 5005

	IOLoadFileError Code = 6001
	IOManifestError Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode: "Unknown error",

	LexInfo:                     "Lexical information",
	LexUnknownChar:              "Unknown character",
	LexUnterminatedString:       "Unterminated string literal",
	LexUnterminatedBlockComment: "Unterminated block comment",
	LexBadNumber:                "Malformed number literal",
	LexBadEscape:                "Unknown escape sequence",

	SynInfo:              "Syntax information",
	SynUnexpectedToken:   "Unexpected token",
	SynExpectExpression:  "Expected expression",
	SynExpectIdentifier:  "Expected identifier",
	SynExpectType:        "Expected type",
	SynUnclosedDelimiter: "Unclosed delimiter",
	SynExpectSemicolon:   "Expected end of statement",
	SynBadAnnotation:     "Malformed annotation",

	ResInfo:                "Resolution information",
	ResUndefined:           "Variable does not exist",
	ResSelfReference:       "Use of variable in its own initializer",
	ResInitCycle:           "Initialization loop",
	ResBlockNotExhaustive:  "Block expression not exhaustive",
	ResIfNotExhaustive:     "If expression not exhaustive",
	ResDuplicate:           "Duplicate declaration",
	ResAssignImmutable:     "Assignment to immutable binding",
	ResReturnOutsideFn:     "Return outside of function",
	ResBreakOutsideTarget:  "Break outside of loop or value block",
	ResCaptureLocal:        "Nested function captures a local",
	ResTooManyArguments:    "Too many arguments or parameters",
	ResUnknownAnnotation:   "Unknown annotation",
	ResPrototypeNoBuiltin:  "Function prototype without @[builtin]",
	ResBuiltinHasBody:      "@[builtin] function with a body",
	ResBuiltinNotTopLevel:  "@[builtin] function outside top level",
	ResUnknownType:         "Unknown type name",

	TypInfo:               "Type information",
	TypMismatch:           "Type mismatch",
	TypBinaryOperand:      "Invalid binary operand types",
	TypUnaryOperand:       "Invalid unary operand type",
	TypArgCount:           "Wrong number of arguments",
	TypArgMismatch:        "Argument type mismatch",
	TypNotCallable:        "Value is not callable",
	TypBranchMismatch:     "Conditional branches have different types",
	TypConditionNotBool:   "Condition is not Bool",
	TypReturnMismatch:     "Return type mismatch",
	TypVoidVariable:       "Variable of type Void",
	TypAssignMismatch:     "Assignment type mismatch",
	TypAnnotationMismatch: "Initializer does not match annotation",
	TypBreakMismatch:      "Break value type mismatch",
	TypVoidOperand:        "Void value used as operand",

	EncInfo:          "Encoding information",
	EncJumpTooFar:    "Jump displacement exceeds 16 bits",
	EncLoopTooFar:    "Loop body exceeds 16-bit backward jump",
	EncIndexTooLarge: "Operand index exceeds 24 bits",
	EncArityTooLarge: "Argument count exceeds 8 bits",
	EncBodyTooLarge:  "Function body exceeds 16 bits",

	IOLoadFileError: "Unable to load file",
	IOManifestError: "Invalid project manifest",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("TYP%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("ENC%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
