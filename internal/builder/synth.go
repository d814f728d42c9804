package builder

import (
	"fmt"
	"strings"
)

// TestSymbolPrefix marks the exported functions the test harness discovers
// and runs.
const TestSymbolPrefix = "test_"

// Generated translation units live at fixed paths under the output root.
const (
	entryFileName   = "_teapot_main.c"
	harnessFileName = "_teapot_test.c"
)

// entryShim generates the translation unit whose only job is to hand main
// over to the package's conventional entry function. The root package must
// define int <name>_main(void); a missing definition surfaces as an
// undefined-symbol error at link time, nothing checks for it earlier.
func entryShim(name string) string {
	return fmt.Sprintf("int %[1]s_main(void);\n\nint main(void) {\n\treturn %[1]s_main();\n}\n", name)
}

// testHarness generates a runner that forward-declares every discovered
// test symbol and calls them sequentially, in discovery order. That order
// comes straight from the symbol inspector and carries no guarantee across
// toolchain versions. Zero tests produces a valid harness that just reports
// an empty run.
func testHarness(tests []string) string {
	var b strings.Builder
	b.WriteString("#include <stdio.h>\n\n")
	for _, name := range tests {
		fmt.Fprintf(&b, "void %s(void);\n", name)
	}
	if len(tests) > 0 {
		b.WriteString("\n")
	}
	b.WriteString("int main(void) {\n")
	fmt.Fprintf(&b, "\tprintf(\"running %d tests\\n\");\n", len(tests))
	for _, name := range tests {
		fmt.Fprintf(&b, "\tprintf(\"test %s ...\\n\");\n", name)
		fmt.Fprintf(&b, "\t%s();\n", name)
	}
	fmt.Fprintf(&b, "\tprintf(\"ok. %d tests\\n\");\n", len(tests))
	b.WriteString("\treturn 0;\n}\n")
	return b.String()
}
