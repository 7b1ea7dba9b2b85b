package holog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamTable_WriteReadRoundTrip(t *testing.T) {
	require := require.New(t)
	st := NewStreamTable()
	path := filepath.Join(t.TempDir(), "out.txt")

	h, err := st.OpenOut(path)
	require.NoError(err)
	require.NoError(st.Write(h, "hello\n"))
	require.NoError(st.Write(h, "world\n"))
	require.NoError(st.Flush(h))
	require.NoError(st.Close(h))

	in, err := st.OpenIn(path)
	require.NoError(err)
	line, ok, err := st.ReadLine(in)
	require.NoError(err)
	require.True(ok)
	require.Equal("hello", line)

	line, ok, err = st.ReadLine(in)
	require.NoError(err)
	require.True(ok)
	require.Equal("world", line)

	_, ok, err = st.ReadLine(in)
	require.NoError(err)
	require.False(ok, "end of stream")

	require.NoError(st.Close(in))
}

func TestStreamTable_WriteToUnopenedHandleErrors(t *testing.T) {
	require := require.New(t)
	st := NewStreamTable()
	err := st.Write(999, "nope")
	require.Error(err)
}

func TestStreamTable_ReadFromWriteOnlyHandleErrors(t *testing.T) {
	require := require.New(t)
	st := NewStreamTable()
	path := filepath.Join(t.TempDir(), "out.txt")
	h, err := st.OpenOut(path)
	require.NoError(err)

	_, _, err = st.ReadLine(h)
	require.Error(err)
}

func TestStreamTable_ClosingStdioIsANoOp(t *testing.T) {
	require := require.New(t)
	st := NewStreamTable()
	require.NoError(st.Close(StreamStdout))
	_, ok := st.streams[StreamStdout]
	require.False(ok)
}

func TestStreamTable_CloseUnknownHandleErrors(t *testing.T) {
	require := require.New(t)
	st := NewStreamTable()
	require.Error(st.Close(12345))
}

func TestStreamTable_OpenInMissingFileErrors(t *testing.T) {
	require := require.New(t)
	st := NewStreamTable()
	_, err := st.OpenIn(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	require.Error(err)
}
