package sexy

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestExtractTestCases_BasicTest(t *testing.T) {
	markdown := `# Scalars

## Test: increment
` + "```bf" + `
+
` + "```" + `
` + "```ast" + `
(program (inc))
` + "```" + `

## Test: move right
` + "```bf" + `
>
` + "```" + `
` + "```ast" + `
(program (right))
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)

	tc1 := testCases[0]
	be.Equal(t, tc1.Name, "increment")
	be.Equal(t, tc1.Input, "+")
	be.Equal(t, tc1.InputType, InputTypeProgram)
	be.Equal(t, len(tc1.Assertions), 1)
	be.Equal(t, tc1.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc1.Assertions[0].Content, `(program (inc))`)
	be.Equal(t, tc1.Assertions[0].ParsedSexy.String(), `(program (inc))`)

	tc2 := testCases[1]
	be.Equal(t, tc2.Name, "move right")
	be.Equal(t, tc2.Input, ">")
	be.Equal(t, tc2.Assertions[0].ParsedSexy.String(), `(program (right))`)
}

func TestExtractTestCases_MultipleAssertions(t *testing.T) {
	markdown := `## Test: clear cell
` + "```bf" + `
+++[-]
` + "```" + `
` + "```ast" + `
(program (inc) (inc) (inc) (loop (dec)))
` + "```" + `
` + "```tape" + `
{ptr: 0, cells: [0 ...]}
` + "```" + `
` + "```execute" + `
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, len(tc.Assertions), 3)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeAST)
	be.Equal(t, tc.Assertions[1].Type, AssertionTypeTape)
	be.Equal(t, tc.Assertions[1].ParsedSexy.Type, NodeMap)
	be.Equal(t, tc.Assertions[2].Type, AssertionTypeExecute)
	be.Equal(t, tc.Assertions[2].Content, "")
	be.True(t, tc.Assertions[2].ParsedSexy == nil)
}

func TestExtractTestCases_ErrorAssertions(t *testing.T) {
	markdown := `## Test: unopened
` + "```bf" + `
]
` + "```" + `
` + "```syntax-error" + `
Unopened loop (1:1)
` + "```" + `

## Test: off the start
` + "```bf" + `
<
` + "```" + `
` + "```runtime-error" + `
Tried to move past tape beginning (1:1)
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 2)
	be.Equal(t, testCases[0].Assertions[0].Type, AssertionTypeSyntaxError)
	be.Equal(t, testCases[0].Assertions[0].Content, "Unopened loop (1:1)")
	be.Equal(t, testCases[1].Assertions[0].Type, AssertionTypeRuntimeError)
	be.Equal(t, testCases[1].Assertions[0].Content, "Tried to move past tape beginning (1:1)")
}

func TestExtractTestCases_EmptyProgram(t *testing.T) {
	markdown := `## Test: empty
` + "```bf" + `
` + "```" + `
` + "```ast" + `
(program)
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, testCases[0].Input, "")
	be.Equal(t, testCases[0].InputType, InputTypeProgram)
}

func TestExtractTestCases_TapeLength(t *testing.T) {
	markdown := `## Test: small tape
` + "```bf" + `
>>
` + "```" + `
` + "```tape-length" + `
2
` + "```" + `
` + "```runtime-error" + `
Tried to move past end of tape (1:2)
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, testCases[0].TapeLength, 2)
	be.Equal(t, len(testCases[0].Assertions), 1)
}

func TestExtractTestCases_InvalidTapeLength(t *testing.T) {
	markdown := `## Test: bad tape
` + "```bf" + `
+
` + "```" + `
` + "```tape-length" + `
zero
` + "```" + `
` + "```execute" + `
` + "```"

	_, err := ExtractTestCases(markdown)
	be.Err(t, err, "invalid tape length")
}

func TestExtractTestCases_EmptyFile(t *testing.T) {
	testCases, err := ExtractTestCases("")
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_NoTestCases(t *testing.T) {
	markdown := `# Some document

This is just regular markdown content.

## Regular heading

No test cases here.`

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 0)
}

func TestExtractTestCases_InvalidSexyAssertion(t *testing.T) {
	markdown := `## Test: invalid sexy
` + "```bf" + `
+
` + "```" + `
` + "```ast" + `
(unclosed list
` + "```"

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "failed to parse Sexy assertion"))
	be.True(t, strings.Contains(err.Error(), "line"))
}

func TestExtractTestCases_FenceOutsideTestCase(t *testing.T) {
	tests := []struct {
		name      string
		fenceType string
	}{
		{"program fence", "bf"},
		{"ast fence", "ast"},
		{"execute fence", "execute"},
		{"input fence", "input"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			markdown := "# Title\n\n```" + test.fenceType + "\n+\n```\n"
			_, err := ExtractTestCases(markdown)
			be.True(t, err != nil)
			be.True(t, strings.Contains(err.Error(), test.fenceType+" fence found outside of test case"))
		})
	}
}

func TestExtractTestCases_UnknownFence(t *testing.T) {
	outside := "# Doc\n\n```go\nfunc main() {}\n```\n"
	_, err := ExtractTestCases(outside)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "unknown fence language 'go' found outside of test case"))

	inside := "## Test: x\n```bf\n+\n```\n```llvm-ir\n()\n```\n"
	_, err = ExtractTestCases(inside)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "unknown fence language 'llvm-ir' in test 'x'"))
}

func TestExtractTestCases_TestMissingInputFence(t *testing.T) {
	markdown := "## Test: no input\n```ast\n(program)\n```\n"
	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'no input' has no input fence"))
}

func TestExtractTestCases_TestMissingAssertionFence(t *testing.T) {
	markdown := "## Test: no assertions\n```bf\n+\n```\n"
	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "test 'no assertions' has no assertion fences"))
}

func TestExtractTestCases_MultipleInputFences(t *testing.T) {
	markdown := "## Test: twice\n```bf\n+\n```\n```bf\n-\n```\n```ast\n(program)\n```\n"
	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "multiple program fences"))
}

func TestExtractTestCases_AllowFencesWithoutLanguage(t *testing.T) {
	markdown := "# Notes\n\n```\nplain block\n```\n\n## Test: valid test\n```bf\n+\n```\n```\nalso plain\n```\n```ast\n(program (inc))\n```\n"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)
	be.Equal(t, testCases[0].Name, "valid test")
	be.Equal(t, len(testCases[0].Assertions), 1)
}

func TestExtractTestCases_LineNumberAccuracy(t *testing.T) {
	markdown := "# Title\nLine 2\nLine 3\n\n```bf\n+\n```\n"

	_, err := ExtractTestCases(markdown)
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "line 6"))
}

func TestExtractTestCases_InputFence(t *testing.T) {
	markdown := `## Test: echo
` + "```bf" + `
,[.,]
` + "```" + `
` + "```input" + `
hello world
` + "```" + `
` + "```execute" + `
hello world
` + "```"

	testCases, err := ExtractTestCases(markdown)
	be.Err(t, err, nil)
	be.Equal(t, len(testCases), 1)

	tc := testCases[0]
	be.Equal(t, tc.Input, ",[.,]")
	be.Equal(t, tc.InputData, "hello world\n")
	be.Equal(t, len(tc.Assertions), 1)
	be.Equal(t, tc.Assertions[0].Type, AssertionTypeExecute)
	be.Equal(t, tc.Assertions[0].Content, "hello world")
}
