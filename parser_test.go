package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleCommand(t *testing.T) {
	sc, err := Parse("echo hello world\n")
	require.NoError(t, err)
	require.Len(t, sc.Pipelines, 1)
	require.Len(t, sc.Pipelines[0].Stages, 1)
	assert.Equal(t, []string{"echo", "hello", "world"}, sc.Pipelines[0].Stages[0].Argv)
}

func TestParseMultiplePipelinesSeparatedBySemicolon(t *testing.T) {
	sc, err := Parse("echo a; echo b")
	require.NoError(t, err)
	require.Len(t, sc.Pipelines, 2)
	assert.Equal(t, []string{"echo", "a"}, sc.Pipelines[0].Stages[0].Argv)
	assert.Equal(t, []string{"echo", "b"}, sc.Pipelines[1].Stages[0].Argv)
}

func TestParsePipeline(t *testing.T) {
	sc, err := Parse("echo abc | tr a-z A-Z")
	require.NoError(t, err)
	require.Len(t, sc.Pipelines, 1)
	require.Len(t, sc.Pipelines[0].Stages, 2)
	assert.Equal(t, []string{"echo", "abc"}, sc.Pipelines[0].Stages[0].Argv)
	assert.Equal(t, []string{"tr", "a-z", "A-Z"}, sc.Pipelines[0].Stages[1].Argv)
}

func TestParseOutputRedirectionTruncate(t *testing.T) {
	sc, err := Parse("echo hi > out.txt")
	require.NoError(t, err)
	stage := sc.Pipelines[0].Stages[0]
	assert.True(t, stage.HasOutRedir())
	assert.Equal(t, "out.txt", stage.OutRedir)
	assert.False(t, stage.OutAppend)
}

func TestParseOutputRedirectionAppend(t *testing.T) {
	sc, err := Parse("echo hi >> out.txt")
	require.NoError(t, err)
	stage := sc.Pipelines[0].Stages[0]
	assert.True(t, stage.HasOutRedir())
	assert.True(t, stage.OutAppend)
}

func TestParseQuotedEmptyRedirectionTargetStillCounts(t *testing.T) {
	sc, err := Parse(`echo hi > ""`)
	require.NoError(t, err)
	stage := sc.Pipelines[0].Stages[0]
	assert.True(t, stage.HasOutRedir())
	assert.Equal(t, "", stage.OutRedir)
}

func TestParseInputRedirection(t *testing.T) {
	sc, err := Parse("cat < in.txt")
	require.NoError(t, err)
	stage := sc.Pipelines[0].Stages[0]
	assert.True(t, stage.HasInRedir())
	assert.Equal(t, "in.txt", stage.InRedir)
}

func TestParseCdThenPwd(t *testing.T) {
	sc, err := Parse("cd /tmp; /bin/pwd")
	require.NoError(t, err)
	require.Len(t, sc.Pipelines, 2)
	assert.Equal(t, []string{"cd", "/tmp"}, sc.Pipelines[0].Stages[0].Argv)
	assert.Equal(t, []string{"/bin/pwd"}, sc.Pipelines[1].Stages[0].Argv)
}

func TestParseEmptyPipelineStageIsError(t *testing.T) {
	_, err := Parse("echo a | | echo b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse error")
}

func TestParseTrailingPipeIsError(t *testing.T) {
	_, err := Parse("echo a |")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline stage missing command")
}

func TestParseRedirectionWithoutCommandIsError(t *testing.T) {
	_, err := Parse("> out.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirection without command")
}

func TestParseMissingRedirectionTargetIsError(t *testing.T) {
	_, err := Parse("echo hi >")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing redirection target")
}

func TestParseUnterminatedQuoteIsError(t *testing.T) {
	_, err := Parse(`echo "hi`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated double quote")
}

func TestParseTrailingEscapeIsError(t *testing.T) {
	_, err := Parse(`echo hi\`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailing escape")
}

func TestParseBlankLinesCollapse(t *testing.T) {
	sc, err := Parse("\n\n;;\necho hi\n\n")
	require.NoError(t, err)
	require.Len(t, sc.Pipelines, 1)
	assert.Equal(t, []string{"echo", "hi"}, sc.Pipelines[0].Stages[0].Argv)
}
