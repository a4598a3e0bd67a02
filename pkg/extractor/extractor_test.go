package extractor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pyrisk/pyrisk/pkg/types"
)

const sampleModule = `"""Payment helpers."""
import os
import json as j
from collections import OrderedDict, defaultdict
from .db import connect
from . import models

MAX_RETRIES = 3
default_timeout = 2.5

def validate(amount: float) -> bool:
    """Check that an amount is chargeable."""
    if amount <= 0:
        return False
    return True

async def charge(amount, *args, retries=3, **kwargs):
    """Charge a card."""
    if validate(amount):
        for attempt in range(retries):
            if attempt:
                log(attempt)
    return None

@staticmethod
def log(attempt):
    print(attempt)

class Gateway(BaseGateway):
    """Talks to the payment provider."""

    def submit(self, payload):
        """Send a payload."""
        return validate(payload)

    async def poll(self):
        pass
`

func TestSupported(t *testing.T) {
	assert.True(t, Supported("pkg/app.py"))
	assert.True(t, Supported("APP.PY"))
	assert.True(t, Supported("stubs/app.pyi"))
	assert.True(t, Supported("gui/app.pyw"))
	assert.False(t, Supported("app.go"))
	assert.False(t, Supported("app.pyc"))
	assert.False(t, Supported("app"))
}

func TestParseBytes_Functions(t *testing.T) {
	file, err := New().ParseBytes([]byte(sampleModule), "payments.py")
	require.NoError(t, err)
	require.True(t, file.Status.OK())

	require.Len(t, file.Functions, 3)

	validate := file.Functions[0]
	assert.Equal(t, "validate", validate.Name)
	assert.Equal(t, "payments.py", validate.File)
	assert.False(t, validate.IsAsync)
	assert.False(t, validate.IsMethod)
	assert.Equal(t, "bool", validate.ReturnType)
	assert.Equal(t, "Check that an amount is chargeable.", validate.Docstring)
	require.Len(t, validate.Params, 1)
	assert.Equal(t, "amount", validate.Params[0].Name)
	assert.Equal(t, "float", validate.Params[0].Annotation)

	charge := file.Functions[1]
	assert.Equal(t, "charge", charge.Name)
	assert.True(t, charge.IsAsync)
	require.Len(t, charge.Params, 4)
	assert.Equal(t, "amount", charge.Params[0].Name)
	assert.Equal(t, "*args", charge.Params[1].Name)
	assert.Equal(t, "retries", charge.Params[2].Name)
	assert.Equal(t, "**kwargs", charge.Params[3].Name)

	logFn := file.Functions[2]
	assert.Equal(t, "log", logFn.Name)
	assert.Equal(t, []string{"staticmethod"}, logFn.Decorators)
}

func TestParseBytes_CallSites(t *testing.T) {
	file, err := New().ParseBytes([]byte(sampleModule), "payments.py")
	require.NoError(t, err)

	charge := file.Functions[1]
	var names []string
	for _, call := range charge.Calls {
		names = append(names, call.Name)
	}
	// Bare-name calls only; range() counts, self.x() attribute calls do not.
	assert.Equal(t, []string{"validate", "range", "log"}, names)
}

func TestParseBytes_Classes(t *testing.T) {
	file, err := New().ParseBytes([]byte(sampleModule), "payments.py")
	require.NoError(t, err)

	require.Len(t, file.Classes, 1)
	gateway := file.Classes[0]
	assert.Equal(t, "Gateway", gateway.Name)
	assert.Equal(t, []string{"BaseGateway"}, gateway.Bases)
	assert.Equal(t, "Talks to the payment provider.", gateway.Docstring)

	require.Len(t, gateway.Methods, 2)
	submit := gateway.Methods[0]
	assert.Equal(t, "submit", submit.Name)
	assert.True(t, submit.IsMethod)
	assert.Equal(t, "Gateway", submit.ParentClass)
	assert.Equal(t, "Send a payload.", submit.Docstring)
	assert.True(t, gateway.Methods[1].IsAsync)
}

func TestParseBytes_Imports(t *testing.T) {
	file, err := New().ParseBytes([]byte(sampleModule), "payments.py")
	require.NoError(t, err)

	require.Len(t, file.Imports, 5)

	assert.Equal(t, types.ImportRef{Module: "os", Kind: types.ImportPlain, Line: 2}, file.Imports[0])
	assert.Equal(t, "json", file.Imports[1].Module)
	assert.Equal(t, "j", file.Imports[1].Alias)

	fromImp := file.Imports[2]
	assert.Equal(t, types.ImportFrom, fromImp.Kind)
	assert.Equal(t, "collections", fromImp.Module)
	assert.Equal(t, []string{"OrderedDict", "defaultdict"}, fromImp.Names)

	relImp := file.Imports[3]
	assert.Equal(t, "db", relImp.Module)
	assert.Equal(t, 1, relImp.RelativeDepth)
	assert.Equal(t, []string{"connect"}, relImp.Names)

	dotImp := file.Imports[4]
	assert.Equal(t, "", dotImp.Module)
	assert.Equal(t, 1, dotImp.RelativeDepth)
	assert.Equal(t, []string{"models"}, dotImp.Names)
}

func TestParseBytes_Globals(t *testing.T) {
	file, err := New().ParseBytes([]byte(sampleModule), "payments.py")
	require.NoError(t, err)

	require.Len(t, file.Globals, 2)

	maxRetries := file.Globals[0]
	assert.Equal(t, "MAX_RETRIES", maxRetries.Name)
	assert.True(t, maxRetries.IsConstant)
	assert.Equal(t, "int", maxRetries.LiteralType)
	assert.Equal(t, "3", maxRetries.Value)

	timeout := file.Globals[1]
	assert.Equal(t, "default_timeout", timeout.Name)
	assert.False(t, timeout.IsConstant)
	assert.Equal(t, "float", timeout.LiteralType)
}

func TestParseBytes_LineCounts(t *testing.T) {
	source := "# leading comment\n\nx = 1\ny = 2  # trailing\n\n# done\n"
	file, err := New().ParseBytes([]byte(source), "lines.py")
	require.NoError(t, err)

	assert.Equal(t, 6, file.TotalLines)
	assert.Equal(t, 2, file.CodeLines)
}

func TestParseBytes_NestingDepth(t *testing.T) {
	source := "def f():\n    for i in range(3):\n        if i:\n            print(i)\n"
	file, err := New().ParseBytes([]byte(source), "deep.py")
	require.NoError(t, err)
	assert.Equal(t, 3, file.MaxNestingDepth)

	flat, err := New().ParseBytes([]byte("x = 1\n"), "flat.py")
	require.NoError(t, err)
	assert.Equal(t, 0, flat.MaxNestingDepth)
}

func TestParseBytes_SyntaxError(t *testing.T) {
	source := "def broken(:\n    pass\n\nx = 1\n"
	file, err := New().ParseBytes([]byte(source), "broken.py")
	require.NoError(t, err)

	assert.Equal(t, types.ParseFailed, file.Status.State)
	assert.Contains(t, file.Status.Message, "syntax error near line")
	// Line counts survive a failed parse, symbols do not.
	assert.Equal(t, 4, file.TotalLines)
	assert.Equal(t, 3, file.CodeLines)
	assert.Empty(t, file.Functions)
	assert.Empty(t, file.Classes)
	assert.Empty(t, file.Imports)
	assert.Empty(t, file.Globals)
}

func TestParseBytes_EmptyFile(t *testing.T) {
	file, err := New().ParseBytes(nil, "empty.py")
	require.NoError(t, err)

	assert.True(t, file.Status.OK())
	assert.Equal(t, 0, file.TotalLines)
	assert.Empty(t, file.Functions)
}

func TestParseBytes_NestedDefinitions(t *testing.T) {
	source := `def outer():
    def inner():
        pass
    return inner

class Outer:
    class Inner:
        def method(self):
            pass
`
	file, err := New().ParseBytes([]byte(source), "nested.py")
	require.NoError(t, err)

	var names []string
	for _, fn := range file.Functions {
		names = append(names, fn.Name)
	}
	assert.Equal(t, []string{"outer", "inner"}, names)

	var classNames []string
	for _, cls := range file.Classes {
		classNames = append(classNames, cls.Name)
	}
	assert.Equal(t, []string{"Outer", "Inner"}, classNames)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.py")
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    pass\n"), 0644))

	file, err := New().ParseFile(path, "mod.py")
	require.NoError(t, err)
	assert.Equal(t, "mod.py", file.Path)
	require.Len(t, file.Functions, 1)
	assert.Equal(t, 1, file.Functions[0].StartLine)
	assert.Equal(t, 2, file.Functions[0].EndLine)

	_, err = New().ParseFile(filepath.Join(dir, "missing.py"), "missing.py")
	assert.Error(t, err)
}
