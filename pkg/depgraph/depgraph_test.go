package depgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrisk/pyrisk/pkg/extractor"
	"github.com/pyrisk/pyrisk/pkg/types"
)

func parse(t *testing.T, path, source string) *types.SourceFile {
	t.Helper()
	file, err := extractor.New().ParseBytes([]byte(source), path)
	require.NoError(t, err)
	require.True(t, file.Status.OK())
	return file
}

func TestBuild_AbsoluteImports(t *testing.T) {
	files := map[string]*types.SourceFile{
		"app.py":           parse(t, "app.py", "import helpers\nfrom models import User\nimport os\n"),
		"helpers.py":       parse(t, "helpers.py", "x = 1\n"),
		"models.py":        parse(t, "models.py", "class User:\n    pass\n"),
		"other/helpers.py": parse(t, "other/helpers.py", "y = 2\n"),
	}

	forward, reverse := Build(files)

	// "helpers" is ambiguous; the lexicographically first file wins.
	assert.Equal(t, []string{"helpers.py", "models.py"}, forward.Neighbors("app.py"))
	assert.Equal(t, []string{"app.py"}, reverse.Neighbors("helpers.py"))
	assert.Equal(t, []string{"app.py"}, reverse.Neighbors("models.py"))
	assert.Empty(t, reverse.Neighbors("other/helpers.py"))

	// External imports leave no trace.
	assert.False(t, forward.HasEdge("app.py", "os"))
}

func TestBuild_DottedModulePaths(t *testing.T) {
	files := map[string]*types.SourceFile{
		"main.py":                  parse(t, "main.py", "from sample.utils import helpers\nimport sample.utils.helpers\nimport sample.core\n"),
		"sample/__init__.py":       parse(t, "sample/__init__.py", ""),
		"sample/utils/__init__.py": parse(t, "sample/utils/__init__.py", ""),
		"sample/core.py":           parse(t, "sample/core.py", "pass\n"),
		"sample/utils/helpers.py":  parse(t, "sample/utils/helpers.py", "pass\n"),
	}

	forward, _ := Build(files)

	deps := forward.Neighbors("main.py")
	assert.Contains(t, deps, "sample/core.py")
	// A from-import of a package lands on its __init__.py; the fully dotted
	// module path lands on the module file itself.
	assert.Contains(t, deps, "sample/utils/__init__.py")
	assert.Contains(t, deps, "sample/utils/helpers.py")
}

func TestBuild_RelativeImports(t *testing.T) {
	files := map[string]*types.SourceFile{
		"pkg/__init__.py":   parse(t, "pkg/__init__.py", ""),
		"pkg/api.py":        parse(t, "pkg/api.py", "from .db import connect\nfrom . import models\n"),
		"pkg/db.py":         parse(t, "pkg/db.py", "def connect():\n    pass\n"),
		"pkg/models.py":     parse(t, "pkg/models.py", "pass\n"),
		"pkg/sub/deep.py":   parse(t, "pkg/sub/deep.py", "from ..db import connect\n"),
		"pkg/sub/above.py":  parse(t, "pkg/sub/above.py", "from ...outside import x\n"),
	}

	forward, reverse := Build(files)

	assert.Equal(t, []string{"pkg/db.py", "pkg/models.py"}, forward.Neighbors("pkg/api.py"))
	assert.Equal(t, []string{"pkg/api.py", "pkg/sub/deep.py"}, reverse.Neighbors("pkg/db.py"))
	// Imports escaping the scanned root resolve to nothing.
	assert.Empty(t, forward.Neighbors("pkg/sub/above.py"))
}

func TestBuild_PackageInitResolution(t *testing.T) {
	files := map[string]*types.SourceFile{
		"main.py":          parse(t, "main.py", "import mylib\n"),
		"mylib/__init__.py": parse(t, "mylib/__init__.py", "from . import engine\n"),
		"mylib/engine.py":  parse(t, "mylib/engine.py", "pass\n"),
	}

	forward, _ := Build(files)

	assert.Equal(t, []string{"mylib/__init__.py"}, forward.Neighbors("main.py"))
	assert.Equal(t, []string{"mylib/engine.py"}, forward.Neighbors("mylib/__init__.py"))
}

func TestBuild_NoSelfLoops(t *testing.T) {
	files := map[string]*types.SourceFile{
		"loop.py": parse(t, "loop.py", "import loop\n"),
	}

	forward, reverse := Build(files)

	assert.Empty(t, forward.Neighbors("loop.py"))
	assert.Empty(t, reverse.Neighbors("loop.py"))
	// The import itself still resolved to a project file.
	assert.True(t, files["loop.py"].Imports[0].Resolved)
}

func TestBuild_EveryFileHasEntries(t *testing.T) {
	files := map[string]*types.SourceFile{
		"a.py": parse(t, "a.py", "import b\n"),
		"b.py": parse(t, "b.py", "pass\n"),
		"c.py": parse(t, "c.py", "pass\n"),
	}

	forward, reverse := Build(files)

	for p := range files {
		_, ok := forward[p]
		assert.True(t, ok, "forward entry for %s", p)
		_, ok = reverse[p]
		assert.True(t, ok, "reverse entry for %s", p)
	}
	assert.Empty(t, forward["c.py"])
	assert.Empty(t, reverse["c.py"])
}

func TestBuild_Symmetry(t *testing.T) {
	files := map[string]*types.SourceFile{
		"a.py": parse(t, "a.py", "import b\nimport c\n"),
		"b.py": parse(t, "b.py", "import c\n"),
		"c.py": parse(t, "c.py", "import a\n"),
	}

	forward, reverse := Build(files)

	for from, tos := range forward {
		for _, to := range tos {
			assert.True(t, reverse.HasEdge(to, from), "reverse edge %s <- %s", to, from)
		}
	}
	for to, froms := range reverse {
		for _, from := range froms {
			assert.True(t, forward.HasEdge(from, to), "forward edge %s -> %s", from, to)
		}
	}
}

func TestBuild_MarksResolvedImports(t *testing.T) {
	app := parse(t, "app.py", "import helpers\nimport requests\n")
	files := map[string]*types.SourceFile{
		"app.py":     app,
		"helpers.py": parse(t, "helpers.py", "pass\n"),
	}

	Build(files)

	assert.True(t, app.Imports[0].Resolved)
	assert.False(t, app.Imports[1].Resolved)
}

func TestBuild_Deterministic(t *testing.T) {
	files := map[string]*types.SourceFile{
		"a.py": parse(t, "a.py", "import b\nimport c\n"),
		"b.py": parse(t, "b.py", "import c\n"),
		"c.py": parse(t, "c.py", "pass\n"),
	}

	firstFwd, firstRev := Build(files)
	for i := 0; i < 5; i++ {
		fwd, rev := Build(files)
		assert.Equal(t, firstFwd, fwd)
		assert.Equal(t, firstRev, rev)
	}
}
