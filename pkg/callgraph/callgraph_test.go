package callgraph

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

func TestBuild_ResolvesSameFileCalls(t *testing.T) {
	files := map[string]*types.SourceFile{
		"calc.py": parse(t, "calc.py", `def add(a, b):
    return a + b

def add_3(a, b, c):
    return add(add(a, b), c)

def mul(a, b):
    result = 0
    for _ in range(b):
        result = add(result, a)
    return result
`),
	}

	edges := Build(files)

	var resolved []types.CallEdge
	for _, e := range edges {
		if e.Resolved {
			resolved = append(resolved, e)
		}
	}
	require.Len(t, resolved, 2)

	// add_3 calls add twice; duplicates collapse into one counted edge.
	assert.Equal(t, "add_3", resolved[0].Caller.Name)
	assert.Equal(t, "add", resolved[0].CalleeName)
	assert.Equal(t, 2, resolved[0].Count)
	assert.Equal(t, "add", resolved[0].Callee.Name)

	assert.Equal(t, "mul", resolved[1].Caller.Name)
	assert.Equal(t, "add", resolved[1].CalleeName)
	assert.Equal(t, 1, resolved[1].Count)
}

func TestBuild_UnresolvedCalls(t *testing.T) {
	files := map[string]*types.SourceFile{
		"app.py": parse(t, "app.py", `def main():
    print(helper())
`),
	}

	edges := Build(files)
	require.Len(t, edges, 2)
	for _, e := range edges {
		assert.False(t, e.Resolved)
		assert.Equal(t, "main", e.Caller.Name)
	}
	assert.Equal(t, "print", edges[0].CalleeName)
	assert.Equal(t, "helper", edges[1].CalleeName)
}

func TestBuild_AmbiguousNameStaysUnresolved(t *testing.T) {
	files := map[string]*types.SourceFile{
		"dup.py": parse(t, "dup.py", `def handle():
    pass

def handle(event):
    pass

def dispatch():
    handle()
`),
	}

	edges := Build(files)
	require.Len(t, edges, 1)
	assert.False(t, edges[0].Resolved)
	assert.Equal(t, "handle", edges[0].CalleeName)
}

func TestBuild_SelfRecursion(t *testing.T) {
	files := map[string]*types.SourceFile{
		"fact.py": parse(t, "fact.py", `def fact(n):
    if n <= 1:
        return 1
    return n * fact(n - 1)
`),
	}

	edges := Build(files)
	require.Len(t, edges, 1)
	assert.True(t, edges[0].Resolved)
	assert.Equal(t, edges[0].Caller, edges[0].Callee)
	assert.Equal(t, 1, edges[0].Count)
}

func TestBuild_MethodCallsResolve(t *testing.T) {
	files := map[string]*types.SourceFile{
		"svc.py": parse(t, "svc.py", `def notify(msg):
    pass

class Service:
    def run(self):
        notify("done")
`),
	}

	edges := Build(files)
	require.Len(t, edges, 1)
	assert.True(t, edges[0].Resolved)
	assert.Equal(t, "run", edges[0].Caller.Name)
	assert.Equal(t, "notify", edges[0].Callee.Name)
}

func TestBuild_SkipsFailedFiles(t *testing.T) {
	broken, err := extractor.New().ParseBytes([]byte("def broken(:\n"), "broken.py")
	require.NoError(t, err)
	require.Equal(t, types.ParseFailed, broken.Status.State)

	files := map[string]*types.SourceFile{
		"broken.py": broken,
		"ok.py":     parse(t, "ok.py", "def f():\n    f()\n"),
	}

	edges := Build(files)
	require.Len(t, edges, 1)
	assert.Equal(t, "ok.py", edges[0].Caller.File)
}

func TestBuild_Deterministic(t *testing.T) {
	files := map[string]*types.SourceFile{
		"a.py": parse(t, "a.py", "def fa():\n    fa()\n"),
		"b.py": parse(t, "b.py", "def fb():\n    fb()\n"),
		"c.py": parse(t, "c.py", "def fc():\n    fc()\n"),
	}

	first := Build(files)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Build(files))
	}
	assert.Equal(t, "a.py", first[0].Caller.File)
	assert.Equal(t, "b.py", first[1].Caller.File)
	assert.Equal(t, "c.py", first[2].Caller.File)
}

func TestResolvedCallers(t *testing.T) {
	files := map[string]*types.SourceFile{
		"calc.py": parse(t, "calc.py", `def add(a, b):
    return a + b

def add_3(a, b, c):
    return add(add(a, b), c)

def mul(a, b):
    return add(a, b)
`),
	}

	edges := Build(files)
	callers := ResolvedCallers(edges)

	var addID types.FunctionID
	for _, fn := range files["calc.py"].Functions {
		if fn.Name == "add" {
			addID = fn.ID()
		}
	}

	require.Contains(t, callers, addID)
	require.Len(t, callers[addID], 2)
	assert.Equal(t, "add_3", callers[addID][0].Name)
	assert.Equal(t, "mul", callers[addID][1].Name)
}
