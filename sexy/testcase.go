package sexy

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// InputType represents the type of input code fence in a Sexy test
type InputType string

const (
	InputTypeProgram InputType = "bf"
)

// AssertionType represents the type of assertion code fence in a Sexy test
type AssertionType string

const (
	AssertionTypeAST          AssertionType = "ast"
	AssertionTypeCFG          AssertionType = "cfg"
	AssertionTypeTape         AssertionType = "tape"
	AssertionTypeExecute      AssertionType = "execute"
	AssertionTypeSyntaxError  AssertionType = "syntax-error"
	AssertionTypeRuntimeError AssertionType = "runtime-error"

	// Not assertions: these fences configure how the test runs.
	AssertionTypeInput      AssertionType = "input"
	AssertionTypeTapeLength AssertionType = "tape-length"
)

// Assertion represents a single assertion in a Sexy test
type Assertion struct {
	Type       AssertionType // The type of assertion (ast, cfg, execute, ...)
	Content    string        // The raw content of the assertion code fence
	ParsedSexy *Node         // The parsed pattern, for ast, cfg and tape
}

// TestCase represents a complete Sexy test case extracted from Markdown
type TestCase struct {
	Name       string      // The test name from the heading (after "Test: ")
	Input      string      // The program source from the input fence
	InputType  InputType   // The type of input fence
	InputData  string      // Stdin for the program (from an input fence, if any)
	TapeLength int         // Tape size from a tape-length fence, or 0 for the default
	Assertions []Assertion // All assertions for this test case
}

// ExtractTestCases parses a Markdown document and extracts all Sexy test cases
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	md := goldmark.New()
	source := []byte(markdownContent)

	doc := md.Parser().Parse(text.NewReader(source))

	var testCases []TestCase
	var currentTestCase *TestCase

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractTextFromNode(n, source)
			if !strings.HasPrefix(headingText, "Test: ") {
				return ast.WalkContinue, nil
			}
			if currentTestCase != nil {
				if err := validateTestCase(currentTestCase); err != nil {
					return ast.WalkStop, err
				}
				testCases = append(testCases, *currentTestCase)
			}
			currentTestCase = &TestCase{
				Name:       strings.TrimPrefix(headingText, "Test: "),
				Assertions: []Assertion{},
			}

		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			content := extractCodeBlockContent(n, source)
			lineNum := getLineNumber(n, source)

			if currentTestCase == nil {
				// Plain code blocks are allowed as documentation.
				if language == "" {
					return ast.WalkContinue, nil
				}
				if isInputFence(language) || isAssertionFence(language) {
					return ast.WalkStop, fmt.Errorf("line %d: %s fence found outside of test case", lineNum, language)
				}
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' found outside of test case", lineNum, language)
			}

			if language != "" && !isInputFence(language) && !isAssertionFence(language) {
				return ast.WalkStop, fmt.Errorf("line %d: unknown fence language '%s' in test '%s'", lineNum, language, currentTestCase.Name)
			}

			if err := addFence(currentTestCase, language, content); err != nil {
				return ast.WalkStop, fmt.Errorf("line %d: %w", lineNum, err)
			}
		}

		return ast.WalkContinue, nil
	})

	if err != nil {
		return nil, fmt.Errorf("error walking markdown AST: %w", err)
	}

	if currentTestCase != nil {
		if err := validateTestCase(currentTestCase); err != nil {
			return nil, err
		}
		testCases = append(testCases, *currentTestCase)
	}

	return testCases, nil
}

// addFence records one fenced code block in tc.
func addFence(tc *TestCase, language, content string) error {
	switch {
	case language == "":
		return nil

	case isInputFence(language):
		if tc.InputType != "" {
			return fmt.Errorf("multiple program fences found in test '%s'", tc.Name)
		}
		tc.Input = strings.TrimRight(content, "\n")
		tc.InputType = InputType(language)

	case language == string(AssertionTypeInput):
		if tc.InputData != "" {
			return fmt.Errorf("multiple input fences found in test '%s'", tc.Name)
		}
		tc.InputData = content

	case language == string(AssertionTypeTapeLength):
		n, err := strconv.Atoi(strings.TrimSpace(content))
		if err != nil || n < 1 {
			return fmt.Errorf("invalid tape length %q in test '%s'", strings.TrimSpace(content), tc.Name)
		}
		tc.TapeLength = n

	default:
		assertion := Assertion{
			Type:    AssertionType(language),
			Content: strings.TrimRight(content, "\n"),
		}
		if hasPattern(assertion.Type) {
			parsed, err := Parse(assertion.Content)
			if err != nil {
				return fmt.Errorf("failed to parse Sexy assertion in test '%s': %w", tc.Name, err)
			}
			assertion.ParsedSexy = parsed
		}
		tc.Assertions = append(tc.Assertions, assertion)
	}
	return nil
}

// hasPattern reports whether the assertion content is a Sexy pattern
// rather than literal text.
func hasPattern(t AssertionType) bool {
	return t == AssertionTypeAST || t == AssertionTypeCFG || t == AssertionTypeTape
}

// extractTextFromNode extracts plain text content from a markdown node
func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer

	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if text, ok := n.(*ast.Text); ok {
				buf.Write(text.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})

	return buf.String()
}

// extractCodeBlockContent extracts the content from a fenced code block
func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer

	for i := 0; i < codeBlock.Lines().Len(); i++ {
		line := codeBlock.Lines().At(i)
		buf.Write(line.Value(source))
	}

	return buf.String()
}

func isInputFence(language string) bool {
	return language == string(InputTypeProgram)
}

func isAssertionFence(language string) bool {
	switch AssertionType(language) {
	case AssertionTypeAST, AssertionTypeCFG, AssertionTypeTape,
		AssertionTypeExecute, AssertionTypeSyntaxError, AssertionTypeRuntimeError,
		AssertionTypeInput, AssertionTypeTapeLength:
		return true
	default:
		return false
	}
}

// validateTestCase ensures a test case has a program and at least one
// assertion. An empty program is allowed: it is a valid program.
func validateTestCase(testCase *TestCase) error {
	if testCase.InputType == "" {
		return fmt.Errorf("test '%s' has no input fence", testCase.Name)
	}
	if len(testCase.Assertions) == 0 {
		return fmt.Errorf("test '%s' has no assertion fences", testCase.Name)
	}
	return nil
}

// getLineNumber calculates the line number of a given AST node
func getLineNumber(node ast.Node, source []byte) int {
	if node.Lines().Len() == 0 {
		return 1
	}
	startPos := node.Lines().At(0).Start
	lineNum := 1
	for i := 0; i < startPos && i < len(source); i++ {
		if source[i] == '\n' {
			lineNum++
		}
	}
	return lineNum
}
