package build

import (
	"fmt"
	"strings"

	"github.com/proverbiallemon/pyrite64/idhash"
)

// ScriptEntry names one script asset for the dispatch table generator.
type ScriptEntry struct {
	UUID idhash.AssetUUID
}

const scriptTableTemplate = `// generated by pyrite64 build — do not edit.
%s
namespace P64 {
  UpdateFn scriptTable[] = {
%s  };
}
`

// GenerateScriptTable renders the script dispatch table and its
// forward-declaration block: one entry per script asset
// in table order, matching the order GenerateScriptTable's caller
// assigned during asset table construction so that AssetIndex values
// line up with array position.
func GenerateScriptTable(scripts []ScriptEntry) string {
	var decl, entries strings.Builder
	for _, s := range scripts {
		name := fmt.Sprintf("%016X", uint64(s.UUID))
		fmt.Fprintf(&decl, "namespace %s { void update(); }\n", name)
		fmt.Fprintf(&entries, "    %s::update,\n", name)
	}
	return fmt.Sprintf(scriptTableTemplate, decl.String(), entries.String())
}

// GenerateAssetTableHeader renders the asset path→index lookup
// function body: one `if(path == "...")return N;`
// branch per asset, in table order.
func GenerateAssetTableHeader(t *AssetTable) string {
	return fmt.Sprintf(
		"// generated by pyrite64 build — do not edit.\ninline int assetIndexForPath(const char *path) {\n%s  return -1;\n}\n",
		indentLines(t.AssetFileMap(), "  "),
	)
}

func indentLines(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	var out strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		out.WriteString(prefix)
		out.WriteString(l)
		out.WriteString("\n")
	}
	return out.String()
}
